// Package viewer ties a camera, gesture tracker, progressive renderer,
// selection and axis labels into one session driven by a single event loop.
package viewer

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"dasa.cc/primeview/axis"
	"dasa.cc/primeview/camera"
	"dasa.cc/primeview/config"
	"dasa.cc/primeview/dataset"
	"dasa.cc/primeview/geom"
	"dasa.cc/primeview/gesture"
	"dasa.cc/primeview/highlight"
	"dasa.cc/primeview/loader"
	"dasa.cc/primeview/metrics"
	"dasa.cc/primeview/render"
	"dasa.cc/primeview/scene"
)

// Options size and tune a Session.
type Options struct {
	Width, Height    float64
	MarginX, MarginY float64
	MinVisibleUnits  float64
	BatchSize        int
	MinSpacing       float64
	HighlightFactor  float64

	// Hover enables relation previews under the mouse once a render completes.
	Hover bool

	// PanStep is the fraction of the shorter viewport side an arrow key pans.
	PanStep float64
}

const (
	DefaultPanStep  = 0.1
	DefaultZoomRate = 1.25
)

// OptionsFrom returns the Options of cfg.
func OptionsFrom(cfg *config.Config) Options {
	return Options{
		Width:           float64(cfg.View.Width),
		Height:          float64(cfg.View.Height),
		MarginX:         cfg.Camera.MarginX,
		MarginY:         cfg.Camera.MarginY,
		MinVisibleUnits: cfg.Camera.MinVisibleUnits,
		BatchSize:       cfg.Render.BatchSize,
		MinSpacing:      cfg.Axis.MinSpacing,
		HighlightFactor: cfg.Highlight.Factor,
		Hover:           cfg.Hover,
	}
}

// Session is the state of one viewer. It is not safe for concurrent use;
// other goroutines must hand work to the goroutine driving the session.
type Session struct {
	Camera    *camera.Camera
	Gesture   *gesture.Tracker
	Filter    *gesture.Filter
	Scene     *scene.Scene
	Renderer  *render.Renderer
	Selection *highlight.Highlighter
	Preview   *highlight.Highlighter

	// Labels are recomputed after every camera change.
	Labels axis.Labels

	Loader  *loader.Loader
	Logger  *zap.Logger
	Metrics *metrics.Registry

	// Notify reports load failures to the user.
	Notify func(error)

	// Wake asks the host to call Frame soon. It is called at most once
	// between calls to Frame.
	Wake func()

	opts    Options
	ds      *dataset.Dataset
	frames  []func()
	woken   bool
	dirty   bool
	hovered int
}

// New returns a session showing no dataset.
func New(l *loader.Loader, o Options, logger *zap.Logger, reg *metrics.Registry) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	if o.MinSpacing <= 0 {
		o.MinSpacing = axis.DefaultMinSpacing
	}
	if o.PanStep <= 0 {
		o.PanStep = DefaultPanStep
	}
	s := &Session{Loader: l, Logger: logger, Metrics: reg, opts: o, hovered: -1}

	s.Camera = camera.New(o.Width, o.Height)
	if o.MarginX > 0 {
		s.Camera.MarginX = o.MarginX
	}
	if o.MarginY > 0 {
		s.Camera.MarginY = o.MarginY
	}
	if o.MinVisibleUnits > 0 {
		s.Camera.MinVisibleUnits = o.MinVisibleUnits
	}
	s.Camera.SetViewport(o.Width, o.Height)
	s.Camera.Reset()
	s.Camera.OnChange = s.cameraChanged

	s.Scene = scene.New(s.Camera.Bounds().Rect())
	s.Selection = highlight.New(s.Scene, scene.LayerHighlight)
	s.Preview = highlight.New(s.Scene, scene.LayerHover)
	if o.HighlightFactor > 0 {
		s.Selection.Factor = o.HighlightFactor
		s.Preview.Factor = o.HighlightFactor
	}

	s.Gesture = &gesture.Tracker{Camera: s.Camera, Capture: s.capture}
	s.Filter = &gesture.Filter{Tracker: s.Gesture, Release: s.release, Hover: s.hover}
	s.Renderer = &render.Renderer{
		Scheduler:  s,
		Sink:       s.Scene,
		BatchSize:  o.BatchSize,
		OnTick:     s.renderTick,
		OnComplete: s.renderComplete,
		Logger:     logger.Named("render"),
		Metrics:    reg,
	}
	s.relabel()
	return s
}

// Schedule queues fn for the next Frame.
func (s *Session) Schedule(fn func()) {
	s.frames = append(s.frames, fn)
	s.wake()
}

// Frame runs the callbacks queued before it was called and reports
// whether the display changed since the last Frame.
func (s *Session) Frame() bool {
	fns := s.frames
	s.frames = nil
	// changes made by the callbacks are reported by the return value
	s.woken = true
	for _, fn := range fns {
		fn()
	}
	s.woken = false
	if len(s.frames) > 0 {
		s.wake()
	}
	dirty := s.dirty
	s.dirty = false
	return dirty
}

// Pending reports whether callbacks are queued for the next Frame.
func (s *Session) Pending() bool { return len(s.frames) > 0 }

func (s *Session) wake() {
	if s.woken {
		return
	}
	s.woken = true
	if s.Wake != nil {
		s.Wake()
	}
}

func (s *Session) invalidate() {
	s.dirty = true
	s.wake()
}

// Dataset returns the dataset shown, or nil.
func (s *Session) Dataset() *dataset.Dataset { return s.ds }

// Selector returns the selector of the dataset shown.
func (s *Session) Selector() string {
	if s.ds == nil {
		return ""
	}
	return s.ds.Selector
}

// Load replaces the dataset shown with the one for selector. On failure the
// user is notified and the current display is kept.
func (s *Session) Load(ctx context.Context, selector string) error {
	if s.Loader == nil {
		err := fmt.Errorf("%w: no dataset source", loader.ErrNotFound)
		s.fail(selector, err)
		return err
	}
	ds, err := s.Loader.Load(ctx, selector)
	if err != nil {
		s.Metrics.RecordLoad(err, 0)
		s.fail(selector, err)
		return err
	}
	if err := s.Show(ds); err != nil {
		s.Metrics.RecordLoad(err, 0)
		return err
	}
	s.Metrics.RecordLoad(nil, ds.Len())
	return nil
}

// Reload loads selector again if it is shown, keeping the view.
func (s *Session) Reload(ctx context.Context, selector string) error {
	if s.ds == nil || s.ds.Selector != selector {
		return nil
	}
	return s.Load(ctx, selector)
}

// Navigate loads the dataset d places from the current one in source order.
func (s *Session) Navigate(ctx context.Context, d int) error {
	if s.Loader == nil {
		return nil
	}
	next, err := s.Loader.Neighbor(ctx, s.Selector(), d)
	if err != nil {
		s.fail(s.Selector(), err)
		return err
	}
	if next == s.Selector() {
		return nil
	}
	return s.Load(ctx, next)
}

func (s *Session) fail(selector string, err error) {
	s.Logger.Warn("dataset load failed", zap.String("selector", selector), zap.Error(err))
	if s.Notify != nil {
		s.Notify(err)
	}
}

// Show clears the display and starts rendering ds. A new selector resets
// the view; the same selector keeps it.
func (s *Session) Show(ds *dataset.Dataset) error {
	if !ds.Kind.Renderable() {
		err := fmt.Errorf("%w: %q", render.ErrNotRenderable, ds.Kind)
		s.fail(ds.Selector, err)
		return err
	}
	same := s.ds != nil && s.ds.Selector == ds.Selector
	s.ClearDisplay()

	s.ds = ds
	b := ds.Bounds()
	s.Selection.Reset(ds)
	s.Preview.Reset(ds)
	s.Scene.Reset(b.Rect())
	s.Camera.SetBounds(b)
	if !same {
		s.Camera.Reset()
	}
	if err := s.Renderer.Start(ds); err != nil {
		return err
	}
	s.Logger.Info("dataset loaded",
		zap.String("selector", ds.Selector),
		zap.String("kind", string(ds.Kind)),
		zap.Int("elements", ds.Len()),
		zap.Int("lines", ds.LineCount()),
		zap.Float64("xmax", b.XMax),
		zap.Float64("ymax", b.YMax),
	)
	s.invalidate()
	return nil
}

// ClearDisplay cancels rendering and removes every primitive and the selection.
func (s *Session) ClearDisplay() {
	s.Renderer.Cancel()
	s.Selection.Reset(nil)
	s.Preview.Reset(nil)
	s.Scene.Reset(s.Camera.Bounds().Rect())
	s.hovered = -1
	s.ds = nil
	s.invalidate()
}

// SetScale sets the camera scale; invalid values are ignored.
func (s *Session) SetScale(v float64) { s.Camera.SetScale(v) }

// SetCenter centers the camera on world point p.
func (s *Session) SetCenter(p geom.Point) { s.Camera.SetCenter(p) }

// ApplyView positions the camera from user view parameters. Values that
// do not parse are logged and ignored.
func (s *Session) ApplyView(v config.ViewConfig) {
	if v.Scale != "" {
		if f, ok := config.ParseScale(v.Scale); ok {
			s.SetScale(f)
		} else {
			s.Logger.Warn("ignoring view scale", zap.String("scale", v.Scale))
		}
	}
	if v.Center != "" {
		if p, ok := config.ParseCenter(v.Center); ok {
			s.SetCenter(p)
		} else {
			s.Logger.Warn("ignoring view center", zap.String("center", v.Center))
		}
	}
}

// OnElementActivated selects element i.
func (s *Session) OnElementActivated(i int) {
	if s.ds == nil || i < 0 || i >= s.ds.Len() {
		return
	}
	s.Selection.Select(i)
	s.Metrics.RecordSelection()
	s.Logger.Debug("element selected",
		zap.String("selector", s.ds.Selector),
		zap.Int("element", i),
		zap.Ints("targets", s.Selection.Targets()),
	)
	s.invalidate()
}

// ClearSelection removes the selection highlight.
func (s *Session) ClearSelection() {
	s.Selection.Clear()
	s.invalidate()
}

// ElementAt returns the element under window pixel p.
func (s *Session) ElementAt(p geom.Point) (int, bool) {
	if s.ds == nil {
		return -1, false
	}
	return s.Scene.HitTest(s.Camera.ScreenToWorld(s.Camera.FromPixel(p)))
}

func (s *Session) release(p geom.Point) {
	if i, ok := s.ElementAt(p); ok {
		s.OnElementActivated(i)
	}
}

func (s *Session) hover(p geom.Point) {
	if !s.Scene.Hover() {
		return
	}
	i, ok := s.ElementAt(p)
	switch {
	case ok && i != s.hovered:
		s.Preview.Select(i)
		s.hovered = i
		s.invalidate()
	case !ok && s.hovered >= 0:
		s.Preview.Clear()
		s.hovered = -1
		s.invalidate()
	}
}

func (s *Session) capture(on bool) {
	s.Logger.Debug("pointer capture", zap.Bool("on", on))
}

func (s *Session) cameraChanged(camera.State) {
	s.relabel()
	s.invalidate()
}

func (s *Session) renderTick(points, lines int) { s.invalidate() }

func (s *Session) renderComplete(render.Result) {
	s.Scene.SetHover(s.opts.Hover)
	s.relabel()
	s.invalidate()
}

func (s *Session) relabel() {
	s.Labels = axis.ComputeWithin(s.Camera.State, s.Camera.Viewport(), s.opts.MinSpacing, s.Camera.Bounds())
}

// Resize sets the viewport size in pixels.
func (s *Session) Resize(w, h float64) {
	if w <= 0 || h <= 0 {
		return
	}
	s.Camera.SetViewport(w, h)
}

// Blur releases all pointers and clears the hover preview.
func (s *Session) Blur() {
	s.Gesture.Blur()
	if s.hovered >= 0 {
		s.Preview.Clear()
		s.hovered = -1
		s.invalidate()
	}
}

// ToggleLayer flips the visibility of l and returns the new state.
func (s *Session) ToggleLayer(l scene.Layer) bool {
	v := s.Scene.Toggle(l)
	s.Logger.Debug("layer toggled", zap.Stringer("layer", l), zap.Bool("visible", v))
	s.invalidate()
	return v
}

// ResetView shows the whole grid.
func (s *Session) ResetView() { s.Camera.Reset() }

// Status describes a session for display.
type Status struct {
	Selector  string
	Kind      dataset.Kind
	Elements  int
	Lines     int
	Scale     float64
	Center    geom.Point
	Rendering bool
	Done      int
	Total     int
	Selected  int
	Targets   []int
}

// Status returns the current state of s. Selected is -1 without a selection.
func (s *Session) Status() Status {
	st := Status{
		Scale:     s.Camera.Scale,
		Center:    s.Camera.Center(),
		Rendering: s.Renderer.Busy(),
		Selected:  -1,
	}
	st.Done, st.Total = s.Renderer.Progress()
	if s.ds != nil {
		st.Selector = s.ds.Selector
		st.Kind = s.ds.Kind
		st.Elements = s.ds.Len()
		st.Lines = s.ds.LineCount()
	}
	if i, ok := s.Selection.Selected(); ok {
		st.Selected = i
		st.Targets = s.Selection.Targets()
	}
	return st
}
