// Package render draws a dataset into a scene a bounded batch at a time,
// yielding to the host between frames.
package render

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"dasa.cc/primeview/dataset"
	"dasa.cc/primeview/metrics"
	"dasa.cc/primeview/scene"
)

// ErrNotRenderable is returned by Start for dataset kinds without a layout.
var ErrNotRenderable = errors.New("render: dataset kind is not renderable")

// DefaultBatchSize is the number of points emitted per tick.
const DefaultBatchSize = 500

// Scheduler runs fn once on a later frame, from the same goroutine that
// drives the Renderer.
type Scheduler interface {
	Schedule(fn func())
}

// SchedulerFunc adapts a function to a Scheduler.
type SchedulerFunc func(fn func())

func (f SchedulerFunc) Schedule(fn func()) { f(fn) }

// Sink receives primitives; *scene.Scene is a Sink.
type Sink interface {
	Add(scene.Primitive) scene.ID
}

// Result summarizes a finished run.
type Result struct {
	Token    uuid.UUID
	Points   int
	Lines    int
	Ticks    int
	Duration time.Duration
}

var now = time.Now

// Renderer is not safe for concurrent use; ticks run on the scheduling goroutine.
type Renderer struct {
	Scheduler Scheduler
	Sink      Sink

	// BatchSize bounds points per tick; lines are bounded by half of it.
	BatchSize int

	// OnTick is called after every tick that emitted primitives, before
	// the next tick is scheduled or the run completes.
	OnTick func(points, lines int)

	// OnComplete is called once when a run emits its last primitive.
	OnComplete func(Result)

	Logger  *zap.Logger
	Metrics *metrics.Registry

	ds    *dataset.Dataset
	token uuid.UUID
	busy  bool
	start time.Time

	// cursors
	elem    int
	sources []int
	src     int
	group   int
	target  int

	points, lines, ticks int
}

func (r *Renderer) logger() *zap.Logger {
	if r.Logger == nil {
		return zap.NewNop()
	}
	return r.Logger
}

func (r *Renderer) batch() int {
	if r.BatchSize < 2 {
		return DefaultBatchSize
	}
	return r.BatchSize
}

// Start cancels any run in progress, then schedules the first tick of a
// run over ds. Elements and relations of ds must not change until the run
// completes or is cancelled.
func (r *Renderer) Start(ds *dataset.Dataset) error {
	if !ds.Kind.Renderable() {
		return fmt.Errorf("%w: %q", ErrNotRenderable, ds.Kind)
	}
	r.Cancel()

	r.ds = ds
	r.token = uuid.New()
	r.busy = true
	r.start = now()
	r.elem, r.src, r.group, r.target = 0, 0, 0, 0
	r.sources = ds.Relations.Sources()
	r.points, r.lines, r.ticks = 0, 0, 0

	r.Metrics.RecordRunStart()
	r.logger().Debug("render started",
		zap.String("run", r.token.String()),
		zap.String("selector", ds.Selector),
		zap.Int("elements", ds.Len()),
		zap.Int("lines", ds.LineCount()),
	)
	r.schedule()
	return nil
}

func (r *Renderer) schedule() {
	token := r.token
	r.Scheduler.Schedule(func() { r.tick(token) })
}

// Cancel invalidates the run in progress; its pending tick does nothing.
func (r *Renderer) Cancel() {
	if !r.busy {
		return
	}
	r.logger().Debug("render cancelled",
		zap.String("run", r.token.String()),
		zap.Int("points", r.points),
		zap.Int("lines", r.lines),
	)
	r.Metrics.RecordRun(metrics.OutcomeCancelled, now().Sub(r.start))
	r.busy = false
	r.token = uuid.Nil
	r.ds = nil
	r.sources = nil
}

// Busy reports whether a run is in progress.
func (r *Renderer) Busy() bool { return r.busy }

// Token returns the identity of the current run, or uuid.Nil.
func (r *Renderer) Token() uuid.UUID { return r.token }

// Progress returns primitives emitted and total primitives of the current run.
func (r *Renderer) Progress() (done, total int) {
	if r.ds == nil {
		return 0, 0
	}
	return r.points + r.lines, r.ds.Len() + r.ds.LineCount()
}

func (r *Renderer) tick(token uuid.UUID) {
	if !r.busy || token != r.token {
		return
	}
	t0 := now()
	n := r.batch()
	points := r.emitPoints(n)
	lines := r.emitLines(n / 2)
	r.ticks++
	r.Metrics.RecordTick(points, lines, now().Sub(t0))
	if points+lines > 0 && r.OnTick != nil {
		r.OnTick(points, lines)
	}

	if r.elem < r.ds.Len() || r.src < len(r.sources) {
		r.schedule()
		return
	}
	r.finish()
}

func (r *Renderer) emitPoints(max int) int {
	ds := r.ds
	n := 0
	for ; n < max && r.elem < ds.Len(); n++ {
		r.Sink.Add(scene.Point(r.elem, ds.Position(r.elem), ds.Elements[r.elem].R))
		r.elem++
	}
	r.points += n
	return n
}

// emitLines walks relation groups in source order from the saved cursor.
// A group larger than what is left of the batch is resumed on the next tick.
func (r *Renderer) emitLines(max int) int {
	ds := r.ds
	n := 0
	for n < max && r.src < len(r.sources) {
		s := r.sources[r.src]
		groups := ds.Relations[s]
		if r.group >= len(groups) {
			r.src++
			r.group, r.target = 0, 0
			continue
		}
		g := groups[r.group]
		if g.Weight == 0 || r.target >= len(g.Targets) {
			r.group++
			r.target = 0
			continue
		}
		t := g.Targets[r.target]
		thickness := math.Min(ds.Elements[s].R, ds.Elements[t].R) / 4
		r.Sink.Add(scene.Line(ds.Position(s), ds.Position(t), thickness))
		r.target++
		n++
	}
	r.lines += n
	return n
}

func (r *Renderer) finish() {
	res := Result{
		Token:    r.token,
		Points:   r.points,
		Lines:    r.lines,
		Ticks:    r.ticks,
		Duration: now().Sub(r.start),
	}
	r.busy = false
	r.Metrics.RecordRun(metrics.OutcomeCompleted, res.Duration)
	r.logger().Info("render completed",
		zap.String("run", res.Token.String()),
		zap.Int("points", res.Points),
		zap.Int("lines", res.Lines),
		zap.Int("ticks", res.Ticks),
		zap.Duration("took", res.Duration),
	)
	if r.OnComplete != nil {
		r.OnComplete(res)
	}
}
