// Package reconcile periodically repairs the denormalized projections that
// multi-table writes keep in step, covering any write that failed part way.
package reconcile

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/jonathan/hiring-tracker/internal/db"
	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"
)

// DefaultSchedule is used when no schedule is configured.
const DefaultSchedule = "@every 15m"

// Repairer runs the projection repair passes. *db.DB implements it.
type Repairer interface {
	RepairApplicationProjections(ctx context.Context) (db.RepairReport, error)
	RepairPublicJobs(ctx context.Context) (db.RepairReport, error)
}

// Runner runs repair passes once or on a cron schedule.
type Runner struct {
	repairer Repairer
	timeout  time.Duration

	// running guards against overlapping scheduled runs.
	running sync.Mutex
	cron    *cron.Cron
}

// NewRunner returns a Runner over r. Each run is bounded by timeout (5 minutes when zero).
func NewRunner(r Repairer, timeout time.Duration) *Runner {
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return &Runner{repairer: r, timeout: timeout}
}

// RunOnce runs both repair passes concurrently and returns the combined report.
func (r *Runner) RunOnce(ctx context.Context) (db.RepairReport, error) {
	var apps, jobs db.RepairReport
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		apps, err = r.repairer.RepairApplicationProjections(gctx)
		if err != nil {
			return fmt.Errorf("application projections: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		jobs, err = r.repairer.RepairPublicJobs(gctx)
		if err != nil {
			return fmt.Errorf("public jobs: %w", err)
		}
		return nil
	})
	err := g.Wait()

	var total db.RepairReport
	total.Add(apps)
	total.Add(jobs)
	return total, err
}

// Start schedules RunOnce with a cron spec such as "@every 15m" or "0 * * * *".
// An empty spec disables scheduling. Runs that would overlap are skipped.
func (r *Runner) Start(spec string) error {
	if spec == "" {
		log.Printf("[reconcile] schedule disabled")
		return nil
	}
	c := cron.New()
	if _, err := c.AddFunc(spec, r.scheduledRun); err != nil {
		return fmt.Errorf("invalid reconcile schedule %q: %w", spec, err)
	}
	r.cron = c
	c.Start()
	log.Printf("[reconcile] scheduled %q", spec)
	return nil
}

// Stop halts the schedule and waits for a running pass to finish or ctx to end.
func (r *Runner) Stop(ctx context.Context) error {
	if r.cron == nil {
		return nil
	}
	done := r.cron.Stop().Done()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Runner) scheduledRun() {
	if !r.running.TryLock() {
		log.Printf("[reconcile] previous run still in progress, skipping")
		return
	}
	defer r.running.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	start := time.Now()
	report, err := r.RunOnce(ctx)
	if err != nil {
		log.Printf("[reconcile] run failed after %v: %v", time.Since(start), err)
	}
	if report.Total() > 0 {
		log.Printf("[reconcile] repaired %d rows in %v: %+v", report.Total(), time.Since(start), report)
	}
}
