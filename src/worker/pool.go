package worker

import (
	"context"
	"log/slog"
	"sync"

	"screenshot-ocr/src/session"
)

// ResultCallback is invoked on pass completion (from a worker goroutine).
// The event loop should pass a closure that posts back onto the UI goroutine.
type ResultCallback func(res session.Result, err error)

// Pool runs capture-and-extract passes off the UI goroutine. A single worker
// and a 1-slot queue mean at most one pass runs while one more may wait.
type Pool struct {
	jobs   chan job
	wg     sync.WaitGroup
	logger *slog.Logger
	once   sync.Once
}

type job struct {
	ctx  context.Context
	opts session.Options
	cb   ResultCallback
}

// New creates a pool with one worker.
func New(logger *slog.Logger) *Pool {
	p := &Pool{jobs: make(chan job, 1), logger: logger}
	p.wg.Add(1)
	go p.run()
	return p
}

func (p *Pool) run() {
	defer p.wg.Done()
	for j := range p.jobs {
		p.logger.Debug("worker: starting pass")
		res, err := session.Execute(j.ctx, j.opts)
		p.logger.Debug("worker: pass finished", "chars", len(res.Text), "err", err)
		j.cb(res, err)
	}
}

// Submit enqueues a pass if the queue slot is free. Returns false if dropped.
func (p *Pool) Submit(ctx context.Context, opts session.Options, cb ResultCallback) bool {
	select {
	case p.jobs <- job{ctx: ctx, opts: opts, cb: cb}:
		return true
	default:
		return false
	}
}

// Close stops the pool after draining queued work. Safe to call twice.
func (p *Pool) Close() {
	p.once.Do(func() { close(p.jobs) })
	p.wg.Wait()
}
