package main

import (
	"context"
	"fmt"
	"image"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/exp/shiny/driver"
	"golang.org/x/exp/shiny/screen"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/mouse"
	"golang.org/x/mobile/event/paint"
	"golang.org/x/mobile/event/size"
	"golang.org/x/mobile/event/touch"

	"dasa.cc/primeview/loader"
	"dasa.cc/primeview/raster"
	"dasa.cc/primeview/viewer"
)

const title = "primeview"

// frameEvent asks the window loop to run a session frame.
type frameEvent struct{}

// reloadEvent reports a changed dataset file.
type reloadEvent struct{ selector string }

func newViewCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "view [selector]",
		Short: "Open a window showing a dataset",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var sel string
			if len(args) > 0 {
				sel = args[0]
			}
			var err error
			driver.Main(func(s screen.Screen) {
				err = a.runWindow(cmd.Context(), s, sel)
			})
			return err
		},
	}
}

func (a *app) runWindow(ctx context.Context, s screen.Screen, selector string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	w, err := s.NewWindow(&screen.NewWindowOptions{
		Width:  a.cfg.View.Width,
		Height: a.cfg.View.Height,
		Title:  title,
	})
	if err != nil {
		return err
	}
	defer w.Release()

	sess, err := a.session(ctx, 0, 0)
	if err != nil {
		return err
	}
	var notice string
	sess.Notify = func(err error) { notice = err.Error() }
	sess.Wake = func() { w.Send(frameEvent{}) }

	a.serveMetrics(ctx)
	if dir, ok := sess.Loader.Source.(*loader.DirSource); ok && a.cfg.Data.Watch {
		go func() {
			err := dir.Watch(ctx, a.logger.Named("watch"), func(sel string) { w.Send(reloadEvent{sel}) })
			if err != nil {
				a.logger.Warn("dataset watch stopped", zap.Error(err))
			}
		}()
	}

	if selector, err = a.firstSelector(ctx, sess, selector); err == nil {
		if sess.Load(ctx, selector) == nil {
			sess.ApplyView(a.cfg.View)
		}
	} else {
		notice = fmt.Sprintf("no dataset: %v", err)
	}

	var (
		buf     screen.Buffer
		painter = &raster.Painter{}
	)
	defer func() {
		if buf != nil {
			buf.Release()
		}
	}()

	// paintPending batches paints so a burst of input events or render
	// frames costs one repaint.
	paintPending := false
	requestPaint := func() {
		if !paintPending {
			paintPending = true
			w.Send(paint.Event{})
		}
	}

	for {
		switch e := w.NextEvent().(type) {
		case lifecycle.Event:
			sess.HandleEvent(ctx, e)
			if e.To == lifecycle.StageDead {
				return nil
			}
		case size.Event:
			sess.HandleEvent(ctx, e)
			requestPaint()
		case key.Event:
			if !sess.HandleEvent(ctx, e) && e.Code == key.CodeQ && e.Direction == key.DirRelease {
				return nil
			}
			notice = ""
		case mouse.Event, touch.Event:
			sess.HandleEvent(ctx, e)
		case frameEvent:
			if sess.Frame() {
				requestPaint()
			}
		case reloadEvent:
			if err := sess.Reload(ctx, e.selector); err == nil && sess.Selector() == e.selector {
				a.logger.Info("dataset reloaded", zap.String("selector", e.selector))
			}
		case paint.Event:
			vp := sess.Camera.Viewport()
			sz := image.Pt(int(vp.X), int(vp.Y))
			if sz.X <= 0 || sz.Y <= 0 {
				paintPending = false
				break
			}
			if buf == nil || buf.Size() != sz {
				if buf != nil {
					buf.Release()
				}
				if buf, err = s.NewBuffer(sz); err != nil {
					return err
				}
			}
			painter.Paint(buf.RGBA(), sess.Camera, sess.Scene, sess.Labels)
			painter.Text(buf.RGBA(), image.Pt(6, 4), statusLines(sess.Status(), notice)...)
			w.Upload(image.Point{}, buf, buf.Bounds())
			w.Publish()
			paintPending = false
		case error:
			a.logger.Error("window error", zap.Error(e))
		}
	}
}

// statusLines formats st for the overlay, followed by notice if set.
func statusLines(st viewer.Status, notice string) []string {
	var lines []string
	if st.Selector != "" {
		l := fmt.Sprintf("%s  %s  %d elements  %d lines  scale %.1f  center %.1f,%.1f",
			st.Selector, st.Kind, st.Elements, st.Lines, st.Scale, st.Center.X, st.Center.Y)
		if st.Rendering {
			l += fmt.Sprintf("  rendering %d/%d", st.Done, st.Total)
		}
		lines = append(lines, l)
	}
	if st.Selected >= 0 {
		lines = append(lines, fmt.Sprintf("selected %d  targets %v", st.Selected, st.Targets))
	}
	if notice != "" {
		lines = append(lines, notice)
	}
	return lines
}
