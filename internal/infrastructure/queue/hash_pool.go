package queue

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/auth-system/internal/api/metrics"
	"github.com/99minutos/auth-system/internal/core/ports"
)

// ErrPoolClosed is returned for work submitted after Close.
var ErrPoolClosed = errors.New("hash pool closed")

type job struct {
	op       string
	run      func() error
	enqueued time.Time
	finished chan struct{}
}

// HashPool runs password hashing on a fixed set of worker goroutines so that
// CPU-heavy work is bounded and never runs on request goroutines. It
// implements ports.PasswordHasher around an inner hasher.
//
// A job that a worker has picked up always runs to completion. A caller whose
// context ends first stops waiting and the result is dropped.
type HashPool struct {
	inner   ports.PasswordHasher
	workers int
	jobs    chan job
	done    chan struct{}
	once    sync.Once
	wg      sync.WaitGroup
	log     zerolog.Logger
}

// NewHashPool creates a pool with numWorkers workers.
// If numWorkers <= 0, runtime.NumCPU() is used.
func NewHashPool(inner ports.PasswordHasher, numWorkers int, log zerolog.Logger) *HashPool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	return &HashPool{
		inner:   inner,
		workers: numWorkers,
		jobs:    make(chan job),
		done:    make(chan struct{}),
		log:     log,
	}
}

// Start launches the workers. They stop when ctx is cancelled or Close is called.
func (p *HashPool) Start(ctx context.Context) {
	for i := range p.workers {
		p.wg.Add(1)
		go p.runWorker(i)
	}
	go func() {
		select {
		case <-ctx.Done():
			p.Close()
		case <-p.done:
		}
	}()
}

// Close stops accepting work and waits for running jobs to finish.
func (p *HashPool) Close() {
	p.once.Do(func() { close(p.done) })
	p.wg.Wait()
}

func (p *HashPool) Hash(ctx context.Context, plaintext string) (string, error) {
	var (
		digest  string
		hashErr error
	)
	err := p.submit(ctx, "hash", func() error {
		digest, hashErr = p.inner.Hash(context.WithoutCancel(ctx), plaintext)
		return hashErr
	})
	if err != nil {
		return "", err
	}
	return digest, hashErr
}

// Verify reports false when the work could not be scheduled.
func (p *HashPool) Verify(ctx context.Context, digest, plaintext string) bool {
	var ok bool
	err := p.submit(ctx, "verify", func() error {
		ok = p.inner.Verify(context.WithoutCancel(ctx), digest, plaintext)
		return nil
	})
	if err != nil {
		p.log.Warn().Err(err).Msg("password verify not scheduled")
		return false
	}
	return ok
}

func (p *HashPool) submit(ctx context.Context, op string, run func() error) error {
	j := job{op: op, run: run, enqueued: time.Now(), finished: make(chan struct{})}

	select {
	case <-p.done:
		return ErrPoolClosed
	default:
	}

	select {
	case p.jobs <- j:
	case <-p.done:
		return ErrPoolClosed
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-j.finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *HashPool) runWorker(id int) {
	defer p.wg.Done()
	for {
		select {
		case <-p.done:
			return
		case j := <-p.jobs:
			start := time.Now()
			metrics.HashQueueWait.Observe(start.Sub(j.enqueued).Seconds())

			err := j.run()
			metrics.HashDuration.WithLabelValues(j.op).Observe(time.Since(start).Seconds())
			close(j.finished)

			if err != nil {
				p.log.Error().Err(err).
					Str("op", j.op).
					Int("worker_id", id).
					Msg("password hashing failed")
			}
		}
	}
}
