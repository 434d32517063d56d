// internal/tasks/queue.go
//
// Background task queue.
//
// Context
// -------
// Two execution modes, chosen from the assembled settings:
//
//   - eager   – CELERY_TASK_ALWAYS_EAGER is set (no broker configured).
//               Enqueue runs the task inline and returns its error.
//   - memory  – CELERY_BROKER_URL is `memory://`.  Tasks go onto a
//               buffered channel drained by CELERY_TASK_WORKERS workers.
//
// Any other broker scheme is rejected at startup.  A failed task is
// logged, counted in promgen_tasks_total, and handed to Options.OnError
// (the error-reporting task integration).
//
// Notes
// -----
//   - A panicking task is recovered and reported like a failed one.
//   - Close stops accepting work and waits for queued tasks to finish.
//   - Oxford commas, two spaces after periods.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"go.uber.org/zap"

	"github.com/yanizio/promgen/internal/config"
	"github.com/yanizio/promgen/internal/metrics"
)

// Execution modes, also used as the `mode` metric label.
const (
	ModeEager  = "eager"
	ModeMemory = "memory"
)

var (
	// ErrUnsupportedBroker is returned by New for a broker scheme this
	// build cannot talk to.
	ErrUnsupportedBroker = errors.New("tasks: unsupported broker")

	// ErrQueueClosed is returned by Enqueue after Close.
	ErrQueueClosed = errors.New("tasks: queue closed")
)

// Func is one unit of background work.
type Func func(ctx context.Context) error

// Queue accepts tasks.
type Queue interface {
	Enqueue(ctx context.Context, name string, fn Func) error
	Close(ctx context.Context) error
	Mode() string
}

// Options tunes a queue.  The zero value is usable.
type Options struct {
	OnError func(name string, err error) // error-reporting hook
	Logger  *zap.SugaredLogger           // default zap.S()
	Buffer  int                          // memory broker channel size, default 64
}

// New returns the queue selected by cfg.
func New(cfg *config.Config, opts Options) (Queue, error) {
	if opts.Logger == nil {
		opts.Logger = zap.S()
	}
	if opts.Buffer <= 0 {
		opts.Buffer = 64
	}

	if cfg.CeleryTaskAlwaysEager {
		return &eager{runner: runner{mode: ModeEager, opts: opts}}, nil
	}

	u, err := url.Parse(cfg.CeleryBrokerURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedBroker, err)
	}
	switch u.Scheme {
	case "memory":
		return newMemory(cfg.CeleryTaskWorkers, opts), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedBroker, u.Scheme)
	}
}

/*──────────────────────────── shared runner ────────────────────────────────*/

type runner struct {
	mode string
	opts Options
}

// run executes fn, converting a panic into an error, and records the
// outcome.
func (r runner) run(ctx context.Context, name string, fn Func) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("task %s panicked: %v", name, p)
		}
		outcome := "success"
		if err != nil {
			outcome = "failure"
			r.opts.Logger.Errorw("task failed", "task", name, "mode", r.mode, "err", err)
			if r.opts.OnError != nil {
				r.opts.OnError(name, err)
			}
		}
		metrics.TasksTotal.WithLabelValues(r.mode, outcome).Inc()
	}()
	return fn(ctx)
}

/*──────────────────────────── eager ────────────────────────────────────────*/

type eager struct {
	runner
}

func (e *eager) Enqueue(ctx context.Context, name string, fn Func) error {
	return e.run(ctx, name, fn)
}

func (e *eager) Close(context.Context) error { return nil }

func (e *eager) Mode() string { return ModeEager }
