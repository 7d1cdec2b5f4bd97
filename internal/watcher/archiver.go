package watcher

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/chemtools/webmo-go/internal/watcher/domain"
	"github.com/chemtools/webmo-go/webmo"
)

// archiveJob snapshots one terminal job: results, geometry and output are
// fetched, stored, and a completion event is published. The store's
// uniqueness constraint arbitrates between concurrent watcher instances.
func (w *Watcher) archiveJob(ctx context.Context, job webmo.Job) error {
	archived, err := w.store.IsArchived(ctx, job.Number)
	if err != nil {
		return domain.NewRetryableError(fmt.Errorf("checking archive: %w", err))
	}
	if archived {
		return domain.ErrAlreadyArchived
	}

	archive := &domain.Archive{
		JobNumber:  job.Number,
		JobName:    job.Name,
		Engine:     job.Engine,
		Status:     job.Status,
		ArchivedAt: time.Now().UTC(),
	}

	// Failed jobs usually carry no results document; a fetch failure
	// there degrades to an output-only snapshot.
	doc, err := w.svc.JobResults(ctx, job.Number)
	if err != nil {
		if job.Status != webmo.StatusFailed {
			return domain.NewRetryableError(fmt.Errorf("fetching results: %w", err))
		}
		w.logger.Debug("No results document for failed job",
			slog.Int("job_number", job.Number),
		)
	} else {
		archive.Results, err = json.Marshal(doc)
		if err != nil {
			return fmt.Errorf("encoding results: %w", err)
		}
	}

	if geometry, err := w.svc.JobGeometry(ctx, job.Number); err == nil {
		archive.Geometry = geometry
	} else if job.Status != webmo.StatusFailed {
		return domain.NewRetryableError(fmt.Errorf("fetching geometry: %w", err))
	}

	output, err := w.svc.JobOutput(ctx, job.Number)
	if err != nil {
		return domain.NewRetryableError(fmt.Errorf("fetching output: %w", err))
	}
	archive.Output = output

	if err := w.store.SaveArchive(ctx, archive); err != nil {
		if err == domain.ErrAlreadyArchived {
			return err
		}
		return domain.NewRetryableError(fmt.Errorf("saving archive: %w", err))
	}

	return w.publishEvent(ctx, job)
}

// publishEvent broadcasts the terminal-job event. A publish failure does
// not unwind the archive; the snapshot is already durable.
func (w *Watcher) publishEvent(ctx context.Context, job webmo.Job) error {
	event := domain.JobEvent{
		EventID:    uuid.NewString(),
		JobNumber:  job.Number,
		JobName:    job.Name,
		Engine:     job.Engine,
		Status:     job.Status,
		ObservedAt: time.Now().UTC(),
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encoding event: %w", err)
	}

	if err := w.publisher.Publish(ctx, body, "application/json"); err != nil {
		w.logger.Error("Failed to publish job event",
			slog.Int("job_number", job.Number),
			slog.String("event_id", event.EventID),
			slog.Any("error", err),
		)
		return nil
	}

	w.logger.Info("Job event published",
		slog.Int("job_number", job.Number),
		slog.String("status", job.Status),
		slog.String("event_id", event.EventID),
	)
	return nil
}
