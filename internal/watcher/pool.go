package watcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/chemtools/webmo-go/internal/watcher/domain"
)

// spawnArchiverPool spawns N archiver goroutines based on concurrency
// configuration
func (w *Watcher) spawnArchiverPool(ctx context.Context) {
	w.logger.Info("Spawning archiver pool",
		slog.Int("concurrency", w.concurrency),
	)

	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.archiverLoop(ctx, i)
	}
}

// archiverLoop is the main processing loop for each archiver goroutine
func (w *Watcher) archiverLoop(ctx context.Context, archiverNum int) {
	defer w.wg.Done()

	archiverName := fmt.Sprintf("archiver-%d", archiverNum)
	w.logger.Info("Archiver goroutine started",
		slog.String("archiver_name", archiverName),
	)

	for {
		select {
		case <-w.stopChan:
			w.logger.Info("Archiver goroutine stopping - stopChan closed",
				slog.String("archiver_name", archiverName),
			)
			return

		case <-ctx.Done():
			w.logger.Info("Archiver goroutine stopping - context canceled",
				slog.String("archiver_name", archiverName),
			)
			return

		case job, ok := <-w.jobsChan:
			if !ok {
				return
			}

			w.logger.Info("Archiver received job",
				slog.String("archiver_name", archiverName),
				slog.Int("job_number", job.Number),
			)

			err := w.archiveJob(ctx, job)
			if err == nil {
				w.logger.Info("Job archived successfully",
					slog.String("archiver_name", archiverName),
					slog.Int("job_number", job.Number),
				)
				continue
			}

			if errors.Is(err, domain.ErrAlreadyArchived) {
				w.logger.Debug("Job already archived, skipping",
					slog.Int("job_number", job.Number),
				)
				continue
			}

			w.logger.Error("Job archiving failed",
				slog.String("archiver_name", archiverName),
				slog.Int("job_number", job.Number),
				slog.Any("error", err),
			)

			// transient failures stay eligible for the next round
			var retryable *domain.RetryableError
			if errors.As(err, &retryable) {
				w.release(job.Number)
			}
		}
	}
}
