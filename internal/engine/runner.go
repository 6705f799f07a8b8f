package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/roach88/hotbar/internal/ir"
)

// DefaultFrameInterval is the frame period of a Runner, about 60 frames per
// second.
const DefaultFrameInterval = 16 * time.Millisecond

// Runner owns the frame loop of one controller.
//
// Run must be called from exactly one goroutine; it is the single writer of
// the controller. Input reaches it through Controller.Enqueue.
type Runner struct {
	ctrl     *Controller
	interval time.Duration
	logger   *slog.Logger

	// beforeTick lets the host advance its own world by the same dt.
	beforeTick func(dt time.Duration)

	// sink receives each frame's journal. A sink error stops the loop.
	sink func([]ir.Dispatch) error
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithFrameInterval sets the frame period.
func WithFrameInterval(d time.Duration) RunnerOption {
	return func(r *Runner) {
		r.interval = d
	}
}

// WithBeforeTick registers a hook called with the frame's dt before the
// controller ticks.
func WithBeforeTick(fn func(dt time.Duration)) RunnerOption {
	return func(r *Runner) {
		r.beforeTick = fn
	}
}

// WithSink registers the consumer of the per-frame journal.
func WithSink(fn func([]ir.Dispatch) error) RunnerOption {
	return func(r *Runner) {
		r.sink = fn
	}
}

// WithRunnerLogger sets the runner's logger. Default: slog.Default().
func WithRunnerLogger(l *slog.Logger) RunnerOption {
	return func(r *Runner) {
		r.logger = l
	}
}

// NewRunner creates a frame loop for ctrl.
func NewRunner(ctrl *Controller, opts ...RunnerOption) *Runner {
	r := &Runner{
		ctrl:     ctrl,
		interval: DefaultFrameInterval,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run ticks the controller every frame until ctx is cancelled or the sink
// fails.
//
// On cancellation the input still queued is applied in one last frame and
// every active command is ended, so the world is never left mid-action.
// Returns ctx.Err() on cancellation.
func (r *Runner) Run(ctx context.Context) error {
	r.logger.Info("frame loop starting", "interval", r.interval, "mode", r.ctrl.ActiveMode())

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	last := time.Now()

	for {
		select {
		case <-ctx.Done():
			r.ctrl.Close()
			r.step(0)
			r.ctrl.CancelAll()
			if err := r.flush(); err != nil {
				return err
			}
			r.logger.Info("frame loop stopping", "frames", r.ctrl.Frame())
			return ctx.Err()

		case now := <-ticker.C:
			dt := now.Sub(last)
			last = now
			r.step(dt)
			if err := r.flush(); err != nil {
				return err
			}
		}
	}
}

func (r *Runner) step(dt time.Duration) {
	if r.beforeTick != nil {
		r.beforeTick(dt)
	}
	r.ctrl.Tick(dt)
}

func (r *Runner) flush() error {
	batch := r.ctrl.Drain()
	if len(batch) == 0 || r.sink == nil {
		return nil
	}
	if err := r.sink(batch); err != nil {
		r.logger.Error("journal sink failed", "error", err, "frame", r.ctrl.Frame())
		return err
	}
	return nil
}
