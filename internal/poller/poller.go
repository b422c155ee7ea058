// Package poller re-runs fetch jobs on fixed intervals. Jobs are independent:
// each polls once at start, then on every tick, with no coordination between them.
package poller

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/worldland/netstats/internal/logs"
)

var logger = logs.Logger("poller")

// Job is one periodic fetch
type Job struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

type Poller struct {
	jobs         []Job
	timeout      time.Duration
	errorBackoff time.Duration
	health       *Health
}

// New creates a poller; every run is bounded by timeout and a failed run
// delays the job's next tick by errorBackoff.
func New(timeout, errorBackoff time.Duration) *Poller {
	if errorBackoff < 0 {
		errorBackoff = 0
	}
	return &Poller{
		timeout:      timeout,
		errorBackoff: errorBackoff,
		health:       NewHealth(),
	}
}

// Add registers a job; it must be called before Run
func (p *Poller) Add(job Job) {
	p.jobs = append(p.jobs, job)
	p.health.register(job.Name)
}

// Health returns the per-job status tracker
func (p *Poller) Health() *Health {
	return p.health
}

// Run blocks until ctx is done. Cancelling ctx abandons in-flight fetches.
func (p *Poller) Run(ctx context.Context) error {
	for _, job := range p.jobs {
		if job.Interval <= 0 {
			return fmt.Errorf("job %s: interval must be > 0", job.Name)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, job := range p.jobs {
		job := job
		g.Go(func() error {
			return p.loop(gctx, job)
		})
	}
	return g.Wait()
}

func (p *Poller) loop(ctx context.Context, job Job) error {
	ticker := time.NewTicker(job.Interval)
	defer ticker.Stop()

	if err := p.runOnce(ctx, job); err != nil {
		logger.Warnw("initial poll failed", "job", job.Name, "error", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := p.runOnce(ctx, job); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				logger.Errorw("poll failed", "job", job.Name, "error", err)
				p.sleepWithContext(ctx, p.errorBackoff)
			}
		}
	}
}

func (p *Poller) runOnce(ctx context.Context, job Job) error {
	runCtx := ctx
	if p.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	start := time.Now()
	err := job.Run(runCtx)
	if err != nil {
		p.health.markFailure(job.Name, err)
		return err
	}
	p.health.markSuccess(job.Name, time.Now())
	logger.Debugw("poll done", "job", job.Name, "elapsed", time.Since(start))
	return nil
}

func (p *Poller) sleepWithContext(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
