package tasks

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/yanizio/promgen/internal/metrics"
)

type job struct {
	ctx  context.Context
	name string
	fn   Func
}

// memory is the in-process broker.  Workers live in an errgroup so Close
// can wait on all of them at once.
//
// The jobs channel is closed only after every in-flight Enqueue has
// returned, so a send never races the close.  quit wakes senders blocked
// on a full buffer.
type memory struct {
	runner

	mu       sync.Mutex
	closed   bool
	quit     chan struct{}
	inflight sync.WaitGroup
	stopOnce sync.Once

	jobs  chan job
	group errgroup.Group
}

func newMemory(workers int, opts Options) *memory {
	if workers <= 0 {
		workers = 1
	}
	m := &memory{
		runner: runner{mode: ModeMemory, opts: opts},
		quit:   make(chan struct{}),
		jobs:   make(chan job, opts.Buffer),
	}
	for i := 0; i < workers; i++ {
		m.group.Go(m.work)
	}
	opts.Logger.Debugw("memory broker online", "workers", workers, "buffer", opts.Buffer)
	return m
}

func (m *memory) work() error {
	for j := range m.jobs {
		metrics.TasksQueued.Dec()
		_ = m.run(j.ctx, j.name, j.fn)
	}
	return nil
}

// Enqueue blocks while the buffer is full, until ctx is done or the queue
// is closed.  The task runs with a context detached from ctx's
// cancellation, so returning from an HTTP handler does not abort queued
// work.
func (m *memory) Enqueue(ctx context.Context, name string, fn Func) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrQueueClosed
	}
	m.inflight.Add(1)
	m.mu.Unlock()
	defer m.inflight.Done()

	// Counted before the send so a worker's Dec never runs first.
	metrics.TasksQueued.Inc()
	select {
	case m.jobs <- job{ctx: context.WithoutCancel(ctx), name: name, fn: fn}:
		return nil
	case <-m.quit:
		metrics.TasksQueued.Dec()
		return ErrQueueClosed
	case <-ctx.Done():
		metrics.TasksQueued.Dec()
		return ctx.Err()
	}
}

// Close stops intake and waits for the workers to drain the buffer, or
// for ctx to end.  Enqueue calls blocked on a full buffer return
// ErrQueueClosed.  Close may be called again to keep waiting.
func (m *memory) Close(ctx context.Context) error {
	m.mu.Lock()
	if !m.closed {
		m.closed = true
		close(m.quit)
	}
	m.mu.Unlock()

	done := make(chan error, 1)
	go func() {
		m.inflight.Wait()
		m.stopOnce.Do(func() { close(m.jobs) })
		done <- m.group.Wait()
	}()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *memory) Mode() string { return ModeMemory }
