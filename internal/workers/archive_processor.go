// internal/workers/archive_processor.go
package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/hibiken/asynq"

	"github.com/LucasDeWerk/vstcount/internal/adapters/storage"
	"github.com/LucasDeWerk/vstcount/internal/core/ports"
)

const (
	TypeArchiveEvidence  = "evidence:archive"
	TypeCleanupOldData   = "cleanup:old_data"
	TypeCleanupTempFiles = "cleanup:temp_files"
)

// ArchiveResult represents the outcome of an evidence archive task
type ArchiveResult struct {
	EvidenceKey    string `json:"evidence_key"`
	BytesUploaded  int64  `json:"bytes_uploaded"`
	ProcessingTime string `json:"processing_time"`
}

// ArchiveProcessor uploads captured count evidence to object storage and
// links it to the journal entry it belongs to.
type ArchiveProcessor struct {
	journal ports.CountJournal
	storage storage.StorageClient
	logger  *slog.Logger
}

// NewArchiveProcessor creates a new evidence archive processor
func NewArchiveProcessor(journal ports.CountJournal, st storage.StorageClient, logger *slog.Logger) *ArchiveProcessor {
	return &ArchiveProcessor{
		journal: journal,
		storage: st,
		logger:  logger.With(slog.String("processor", "archive")),
	}
}

// ProcessEvidence handles one evidence archive task. The temp files named
// in the payload are removed once the upload went through; a payload whose
// capture file no longer exists is dropped without retry since the file
// will not come back.
func (p *ArchiveProcessor) ProcessEvidence(ctx context.Context, t *asynq.Task) error {
	start := time.Now()

	var payload ports.EvidencePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %v: %w", err, asynq.SkipRetry)
	}

	p.logger.InfoContext(ctx, "archiving count evidence",
		slog.String("journal_id", payload.JournalID.String()),
		slog.String("product_id", payload.ProductID))

	key := fmt.Sprintf("evidence/%s/%s/capture.jpg", payload.SessionKey, payload.JournalID)

	uploaded, err := p.uploadFile(ctx, key, payload.ImagePath)
	if err != nil {
		if os.IsNotExist(err) {
			p.logger.WarnContext(ctx, "capture file gone, dropping archive task",
				slog.String("path", payload.ImagePath))
			return fmt.Errorf("capture file missing: %w", asynq.SkipRetry)
		}
		return fmt.Errorf("failed to upload capture: %w", err)
	}

	if payload.AnnotatedPath != "" {
		annotatedKey := fmt.Sprintf("evidence/%s/%s/annotated.jpg", payload.SessionKey, payload.JournalID)
		n, err := p.uploadFile(ctx, annotatedKey, payload.AnnotatedPath)
		if err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to upload annotated image: %w", err)
		}
		uploaded += n
	}

	if err := p.journal.SetEvidenceKey(ctx, payload.JournalID, key); err != nil {
		return fmt.Errorf("failed to link evidence to journal entry: %w", err)
	}

	p.removeTempFiles(ctx, payload)

	result := ArchiveResult{
		EvidenceKey:    key,
		BytesUploaded:  uploaded,
		ProcessingTime: time.Since(start).String(),
	}
	// ResultWriter is only set for tasks delivered by a server
	if w := t.ResultWriter(); w != nil {
		if resultJSON, err := json.Marshal(result); err == nil {
			_, _ = w.Write(resultJSON)
		}
	}

	p.logger.InfoContext(ctx, "count evidence archived",
		slog.String("journal_id", payload.JournalID.String()),
		slog.String("evidence_key", key),
		slog.Int64("bytes", uploaded))

	return nil
}

func (p *ArchiveProcessor) uploadFile(ctx context.Context, key, path string) (int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return 0, err
	}

	if _, err := p.storage.Upload(ctx, key, f, "image/jpeg"); err != nil {
		return 0, err
	}

	return info.Size(), nil
}

func (p *ArchiveProcessor) removeTempFiles(ctx context.Context, payload ports.EvidencePayload) {
	for _, path := range []string{payload.ImagePath, payload.AnnotatedPath} {
		if path == "" {
			continue
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			p.logger.WarnContext(ctx, "failed to delete temp file",
				slog.String("file", path),
				slog.String("error", err.Error()))
		}
	}
}
