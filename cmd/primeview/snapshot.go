package main

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"dasa.cc/primeview/raster"
	"dasa.cc/primeview/viewer"
)

type snapshotOptions struct {
	out           string
	width, height int
	scale, center string
	thumb         uint
	interp        string
}

func newSnapshotCmd(a *app) *cobra.Command {
	opts := &snapshotOptions{}
	cmd := &cobra.Command{
		Use:   "snapshot [selector]",
		Short: "Render a dataset to a PNG file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var sel string
			if len(args) > 0 {
				sel = args[0]
			}
			return a.snapshot(cmd.Context(), sel, opts)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&opts.out, "output", "o", "", "output PNG file (default <selector>.png)")
	f.IntVar(&opts.width, "width", 0, "image width in pixels")
	f.IntVar(&opts.height, "height", 0, "image height in pixels")
	f.StringVar(&opts.scale, "scale", "", "pixels per grid unit")
	f.StringVar(&opts.center, "center", "", "world point at the image center, as x,y")
	f.UintVar(&opts.thumb, "thumb", 0, "also write a thumbnail this many pixels wide")
	f.StringVar(&opts.interp, "interp", "Lanczos3", "thumbnail interpolation: NearestNeighbor, Bilinear, Bicubic, MitchellNetravali, Lanczos2, Lanczos3")
	return cmd
}

func (a *app) snapshot(ctx context.Context, selector string, opts *snapshotOptions) error {
	interp, err := raster.ParseInterp(opts.interp)
	if err != nil {
		return err
	}
	sess, err := a.session(ctx, opts.width, opts.height)
	if err != nil {
		return err
	}
	if selector, err = a.firstSelector(ctx, sess, selector); err != nil {
		return err
	}
	if err := sess.Load(ctx, selector); err != nil {
		return err
	}
	view := a.cfg.View
	if opts.scale != "" {
		view.Scale = opts.scale
	}
	if opts.center != "" {
		view.Center = opts.center
	}
	sess.ApplyView(view)

	img := renderAll(sess)
	out := opts.out
	if out == "" {
		out = selector + ".png"
	}
	if err := writePNG(out, img); err != nil {
		return err
	}
	a.logger.Info("snapshot written", zap.String("file", out), zap.Stringer("size", img.Bounds().Size()))

	if opts.thumb > 0 {
		th := strings.TrimSuffix(out, ".png") + ".thumb.png"
		if err := writePNG(th, raster.Thumbnail(img, opts.thumb, interp)); err != nil {
			return err
		}
		a.logger.Info("thumbnail written", zap.String("file", th))
	}
	return nil
}

// renderAll runs sess to completion and paints the result.
func renderAll(sess *viewer.Session) *image.RGBA {
	for sess.Pending() {
		sess.Frame()
	}
	return (&raster.Painter{}).Frame(sess.Camera, sess.Scene, sess.Labels)
}

func writePNG(name string, img image.Image) error {
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", name, err)
	}
	return f.Close()
}
