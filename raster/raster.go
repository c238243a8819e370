// Package raster paints a scene, its grid and axis labels into an RGBA image.
package raster

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/llgcode/draw2d/draw2dimg"
	"github.com/nfnt/resize"
	"golang.org/x/image/font"
	"golang.org/x/image/math/f64"

	"dasa.cc/primeview/axis"
	"dasa.cc/primeview/camera"
	"dasa.cc/primeview/geom"
	"dasa.cc/primeview/scene"
)

// Palette colors each part of a frame.
type Palette struct {
	Background color.Color
	Grid       color.Color
	Label      color.Color
	Line       color.Color
	Point      color.Color
	Highlight  color.Color
	Hover      color.Color
}

var DefaultPalette = Palette{
	Background: color.RGBA{0x1d, 0x1f, 0x21, 0xff},
	Grid:       color.RGBA{0x37, 0x3b, 0x41, 0xff},
	Label:      color.RGBA{0xc5, 0xc8, 0xc6, 0xff},
	Line:       color.RGBA{0x81, 0xa2, 0xbe, 0xff},
	Point:      color.RGBA{0xf0, 0xc6, 0x74, 0xff},
	Highlight:  color.RGBA{0xcc, 0x66, 0x66, 0xff},
	Hover:      color.RGBA{0xb5, 0xbd, 0x68, 0xff},
}

// MarkerWidth is the stroke width of marker rings in pixels.
const MarkerWidth = 2

// Painter draws frames. The zero value uses DefaultPalette and DefaultFace.
type Painter struct {
	Palette *Palette
	Face    font.Face

	// NoGrid skips grid lines at label positions.
	NoGrid bool
}

func (p *Painter) palette() *Palette {
	if p.Palette == nil {
		return &DefaultPalette
	}
	return p.Palette
}

// Paint fills dst with the scene as seen by cam.
func (p *Painter) Paint(dst *image.RGBA, cam *camera.Camera, sc *scene.Scene, labels axis.Labels) {
	pal := p.palette()
	draw.Draw(dst, dst.Bounds(), image.NewUniform(pal.Background), image.Point{}, draw.Src)

	m := cam.Aff3()
	gc := draw2dimg.NewGraphicContext(dst)
	if !p.NoGrid {
		p.grid(gc, cam, labels)
	}

	view := geom.Rect{Max: cam.Viewport()}
	sc.Each(func(_ scene.ID, prim scene.Primitive) bool {
		if !visible(m, prim, view) {
			return true
		}
		switch prim.Kind {
		case scene.KindLine:
			a, b := apply(m, prim.A), apply(m, prim.B)
			gc.SetStrokeColor(pal.Line)
			gc.SetLineWidth(math.Max(1, prim.R*cam.Scale))
			gc.BeginPath()
			gc.MoveTo(a.X, a.Y)
			gc.LineTo(b.X, b.Y)
			gc.Stroke()
		case scene.KindPoint:
			c := apply(m, prim.A)
			gc.SetFillColor(pal.Point)
			circle(gc, c, math.Max(1, prim.R*cam.Scale))
			gc.Fill()
		case scene.KindMarker:
			c := apply(m, prim.A)
			clr := pal.Highlight
			if prim.Layer == scene.LayerHover {
				clr = pal.Hover
			}
			gc.SetStrokeColor(clr)
			gc.SetLineWidth(MarkerWidth)
			circle(gc, c, math.Max(2, prim.R*cam.Scale))
			gc.Stroke()
		}
		return true
	})

	p.labels(dst, cam, labels)
}

func (p *Painter) grid(gc *draw2dimg.GraphicContext, cam *camera.Camera, labels axis.Labels) {
	vp := cam.Viewport()
	b := cam.Bounds()
	top := vp.Y - cam.WorldToScreen(geom.Pt(0, b.YMax)).Y
	bottom := vp.Y - cam.Origin.Y
	left := cam.Origin.X
	right := cam.WorldToScreen(geom.Pt(b.XMax, 0)).X

	gc.SetStrokeColor(p.palette().Grid)
	gc.SetLineWidth(1)
	gc.BeginPath()
	for _, t := range labels.X {
		gc.MoveTo(t.Screen, top)
		gc.LineTo(t.Screen, bottom)
	}
	for _, t := range labels.Y {
		y := vp.Y - t.Screen
		gc.MoveTo(left, y)
		gc.LineTo(right, y)
	}
	gc.Stroke()
}

// labels writes x ticks along the bottom edge and y ticks along the left edge.
func (p *Painter) labels(dst *image.RGBA, cam *camera.Camera, labels axis.Labels) {
	face := p.Face
	if face == nil {
		face = DefaultFace
	}
	d := &Drawer{}
	d.SetFace(face)
	d.SetColor(p.palette().Label)

	h := dst.Bounds().Dy()
	for _, t := range labels.X {
		s := t.String()
		r := d.MeasureString(s)
		d.TranslateTo(image.Pt(int(t.Screen)-r.Dx()/2, h-r.Dy()-2))
		d.DrawString(dst, s)
	}
	for _, t := range labels.Y {
		s := t.String()
		r := d.MeasureString(s)
		d.TranslateTo(image.Pt(2, h-int(t.Screen)-r.Dy()/2))
		d.DrawString(dst, s)
	}
}

func apply(m f64.Aff3, p geom.Point) geom.Point {
	return geom.Pt(m[0]*p.X+m[1]*p.Y+m[2], m[3]*p.X+m[4]*p.Y+m[5])
}

// visible reports whether prim may touch view, both in window pixels.
func visible(m f64.Aff3, prim scene.Primitive, view geom.Rect) bool {
	b := prim.Bounds()
	a, c := apply(m, b.Min), apply(m, b.Max)
	pad := float64(MarkerWidth)
	return math.Max(a.X, c.X)+pad >= view.Min.X && math.Min(a.X, c.X)-pad <= view.Max.X &&
		math.Max(a.Y, c.Y)+pad >= view.Min.Y && math.Min(a.Y, c.Y)-pad <= view.Max.Y
}

func circle(gc *draw2dimg.GraphicContext, c geom.Point, r float64) {
	gc.BeginPath()
	gc.MoveTo(c.X+r, c.Y)
	gc.ArcTo(c.X, c.Y, r, r, 0, math.Pi*2)
	gc.Close()
}

// Frame returns a new image of cam's viewport painted by p.
func (p *Painter) Frame(cam *camera.Camera, sc *scene.Scene, labels axis.Labels) *image.RGBA {
	vp := cam.Viewport()
	dst := image.NewRGBA(image.Rect(0, 0, int(math.Ceil(vp.X)), int(math.Ceil(vp.Y))))
	p.Paint(dst, cam, sc, labels)
	return dst
}

// Thumbnail scales img to width pixels, keeping its aspect ratio.
func Thumbnail(img image.Image, width uint, interp resize.InterpolationFunction) image.Image {
	return resize.Resize(width, 0, img, interp)
}

// ParseInterp returns the interpolation named s.
func ParseInterp(s string) (resize.InterpolationFunction, error) {
	switch s {
	case "NearestNeighbor":
		return resize.NearestNeighbor, nil
	case "Bilinear":
		return resize.Bilinear, nil
	case "Bicubic":
		return resize.Bicubic, nil
	case "MitchellNetravali":
		return resize.MitchellNetravali, nil
	case "Lanczos2":
		return resize.Lanczos2, nil
	case "Lanczos3":
		return resize.Lanczos3, nil
	default:
		return 0, fmt.Errorf("raster: unknown interpolation %q", s)
	}
}

// Text writes lines top down from at, one face height apart, over a
// background band so they stay legible above the plot.
func (p *Painter) Text(dst *image.RGBA, at image.Point, lines ...string) {
	face := p.Face
	if face == nil {
		face = DefaultFace
	}
	pal := p.palette()
	d := &Drawer{}
	d.SetFace(face)
	d.SetColor(pal.Label)
	bg := image.NewUniform(pal.Background)
	h := face.Metrics().Height.Ceil()
	for i, s := range lines {
		pos := at.Add(image.Pt(0, i*h))
		r := d.MeasureString(s)
		draw.Draw(dst, image.Rect(0, 0, r.Dx()+4, h).Add(pos).Sub(image.Pt(2, 0)), bg, image.Point{}, draw.Src)
		d.TranslateTo(pos)
		d.DrawString(dst, s)
	}
}
