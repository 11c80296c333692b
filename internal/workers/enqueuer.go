// internal/workers/enqueuer.go
package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/LucasDeWerk/vstcount/internal/core/ports"
)

// Enqueuer schedules background tasks over asynq. It implements the
// evidence archiver port used by the count service.
type Enqueuer struct {
	client *asynq.Client
	logger *slog.Logger
}

var _ ports.EvidenceArchiver = (*Enqueuer)(nil)

// NewEnqueuer creates a task enqueuer backed by the given asynq client
func NewEnqueuer(client *asynq.Client, logger *slog.Logger) *Enqueuer {
	return &Enqueuer{
		client: client,
		logger: logger.With(slog.String("component", "enqueuer")),
	}
}

// ArchiveEvidence queues the upload of one confirmed count's capture
// artifacts. Retention of the task payload is asynq's concern; callers
// treat a returned error as a lost archive, not a failed count.
func (e *Enqueuer) ArchiveEvidence(ctx context.Context, payload ports.EvidencePayload) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal evidence payload: %w", err)
	}

	task := asynq.NewTask(TypeArchiveEvidence, data)
	info, err := e.client.EnqueueContext(ctx, task,
		asynq.Queue("default"),
		asynq.MaxRetry(5),
		asynq.Timeout(2*time.Minute),
		asynq.Retention(24*time.Hour),
	)
	if err != nil {
		return fmt.Errorf("failed to enqueue evidence archive: %w", err)
	}

	e.logger.DebugContext(ctx, "evidence archive enqueued",
		slog.String("task_id", info.ID),
		slog.String("journal_id", payload.JournalID.String()))

	return nil
}
