// Package watcher polls a WebMO instance for jobs reaching a terminal
// status, archives their results to PostgreSQL and publishes a
// completion event per job.
package watcher

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/chemtools/webmo-go/internal/watcher/domain"
	"github.com/chemtools/webmo-go/webmo"
	"github.com/chemtools/webmo-go/webmo/result"
)

// Service is the slice of the WebMO session the watcher reads through.
// *webmo.Client implements it.
type Service interface {
	Jobs(ctx context.Context, filter webmo.JobFilter) ([]webmo.Job, error)
	JobResults(ctx context.Context, jobNumber int) (*result.Document, error)
	JobGeometry(ctx context.Context, jobNumber int) (string, error)
	JobOutput(ctx context.Context, jobNumber int) (string, error)
}

// Store persists job snapshots.
type Store interface {
	SaveArchive(ctx context.Context, archive *domain.Archive) error
	IsArchived(ctx context.Context, jobNumber int) (bool, error)
}

// EventPublisher broadcasts terminal-job events.
type EventPublisher interface {
	Publish(ctx context.Context, body []byte, contentType string) error
}

// Config holds watcher configuration
type Config struct {
	Logger       *slog.Logger
	Service      Service
	Store        Store
	Publisher    EventPublisher
	Concurrency  int
	PollInterval time.Duration
	TargetUser   string
}

// Watcher polls for terminal jobs and dispatches them to a pool of
// archiver goroutines.
type Watcher struct {
	logger       *slog.Logger
	svc          Service
	store        Store
	publisher    EventPublisher
	concurrency  int
	pollInterval time.Duration
	targetUser   string

	jobsChan chan webmo.Job
	stopChan chan struct{}
	wg       sync.WaitGroup

	mu         sync.Mutex
	dispatched map[int]bool // job numbers in flight or archived this run
}

// NewWatcher creates a new watcher instance
func NewWatcher(cfg *Config) *Watcher {
	return &Watcher{
		logger:       cfg.Logger,
		svc:          cfg.Service,
		store:        cfg.Store,
		publisher:    cfg.Publisher,
		concurrency:  cfg.Concurrency,
		pollInterval: cfg.PollInterval,
		targetUser:   cfg.TargetUser,
		jobsChan:     make(chan webmo.Job, cfg.Concurrency),
		stopChan:     make(chan struct{}),
		dispatched:   make(map[int]bool),
	}
}

// Start spawns the archiver pool and runs the polling loop until the
// context is canceled or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.logger.Info("Starting watcher",
		slog.Int("concurrency", w.concurrency),
		slog.Duration("poll_interval", w.pollInterval),
	)

	w.spawnArchiverPool(ctx)

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	// immediate first round, then on the ticker
	w.pollOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Watcher context canceled, stopping...")
			return nil
		case <-w.stopChan:
			return nil
		case <-ticker.C:
			w.pollOnce(ctx)
		}
	}
}

// Stop gracefully stops the watcher
func (w *Watcher) Stop() {
	w.logger.Info("Stopping watcher...")
	close(w.stopChan)
	w.wg.Wait()
	w.logger.Info("Watcher stopped")
}

// pollOnce lists terminal jobs and dispatches the ones not yet seen.
func (w *Watcher) pollOnce(ctx context.Context) {
	for _, status := range []string{webmo.StatusComplete, webmo.StatusFailed} {
		jobs, err := w.svc.Jobs(ctx, webmo.JobFilter{
			Status:     status,
			TargetUser: w.targetUser,
		})
		if err != nil {
			w.logger.Error("Failed to list jobs",
				slog.String("status", status),
				slog.Any("error", err),
			)
			continue
		}

		for _, job := range jobs {
			if !w.claim(job.Number) {
				continue
			}

			select {
			case w.jobsChan <- job:
				w.logger.Debug("Job dispatched to archiver pool",
					slog.Int("job_number", job.Number),
					slog.String("status", job.Status),
				)
			case <-ctx.Done():
				w.release(job.Number)
				return
			case <-w.stopChan:
				w.release(job.Number)
				return
			}
		}
	}
}

// claim marks a job number as in flight. It returns false when the job
// was already dispatched during this run.
func (w *Watcher) claim(jobNumber int) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.dispatched[jobNumber] {
		return false
	}
	w.dispatched[jobNumber] = true
	return true
}

// release makes a job number eligible for re-dispatch on the next round.
func (w *Watcher) release(jobNumber int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.dispatched, jobNumber)
}
