package raster

import (
	"image"
	"image/color"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/math/fixed"
)

var (
	monobold = mustParseTTF(gomonobold.TTF)

	// DefaultFace draws axis labels.
	DefaultFace = NewFace(monobold, Size(12), Hinting(font.HintingFull))
)

func mustParseTTF(ttf []byte) *truetype.Font {
	f, err := truetype.Parse(ttf)
	if err != nil {
		panic(err)
	}
	return f
}

func Size(x float64) func(*truetype.Options) {
	return func(a *truetype.Options) {
		a.Size = x
	}
}

func Hinting(x font.Hinting) func(*truetype.Options) {
	return func(a *truetype.Options) {
		a.Hinting = x
	}
}

// NewFace returns a face of fnt with opts applied.
func NewFace(fnt *truetype.Font, opts ...func(*truetype.Options)) font.Face {
	o := &truetype.Options{}
	for _, opt := range opts {
		opt(o)
	}
	return truetype.NewFace(fnt, o)
}

// Drawer draws strings with their top left corner at a pixel position.
type Drawer struct {
	src  image.Image
	pos  image.Point
	face font.Face
}

func (d *Drawer) TranslateTo(pt image.Point) { d.pos = pt }
func (d *Drawer) SetColor(clr color.Color)   { d.src = image.NewUniform(clr) }
func (d *Drawer) SetFace(face font.Face)     { d.face = face }

func (d *Drawer) MeasureString(s string) image.Rectangle {
	adv := font.MeasureString(d.face, s).Ceil()
	asc := d.face.Metrics().Ascent.Ceil()
	return image.Rect(0, 0, adv, asc)
}

func (d *Drawer) DrawString(dst *image.RGBA, s string) {
	dr := font.Drawer{
		Dst:  dst,
		Src:  d.src,
		Face: d.face,
		Dot: fixed.Point26_6{
			X: fixed.I(d.pos.X),
			Y: fixed.I(d.pos.Y + d.face.Metrics().Ascent.Ceil()),
		},
	}
	dr.DrawString(s)
}
