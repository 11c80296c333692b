// internal/workers/cleanup_processor.go
package workers

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/hibiken/asynq"

	"github.com/LucasDeWerk/vstcount/internal/core/ports"
	"github.com/LucasDeWerk/vstcount/internal/pkg/config"
)

// CleanupProcessor handles cleanup tasks
type CleanupProcessor struct {
	journal ports.CountJournal
	config  *config.Config
	logger  *slog.Logger
}

// NewCleanupProcessor creates a new cleanup processor
func NewCleanupProcessor(journal ports.CountJournal, config *config.Config, logger *slog.Logger) *CleanupProcessor {
	return &CleanupProcessor{
		journal: journal,
		config:  config,
		logger:  logger.With(slog.String("processor", "cleanup")),
	}
}

// CleanupOldData removes journal entries past the retention window
func (p *CleanupProcessor) CleanupOldData(ctx context.Context, t *asynq.Task) error {
	cutoff := time.Now().AddDate(0, 0, -p.config.Journal.RetentionDays)

	p.logger.InfoContext(ctx, "cleaning up old journal entries",
		slog.Time("cutoff", cutoff))

	deleted, err := p.journal.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("failed to cleanup journal entries: %w", err)
	}

	p.logger.InfoContext(ctx, "old journal entries cleaned up",
		slog.Int64("rows_deleted", deleted))

	return nil
}

// CleanupTempFiles removes stale captured images that never made it through
// the archive pipeline
func (p *CleanupProcessor) CleanupTempFiles(ctx context.Context, t *asynq.Task) error {
	p.logger.InfoContext(ctx, "cleaning up temp files")

	tempDir := p.config.App.TempDir
	maxAge := 24 * time.Hour

	var deletedCount int
	err := filepath.Walk(tempDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if !info.IsDir() && time.Since(info.ModTime()) > maxAge {
			if err := os.Remove(path); err != nil {
				p.logger.WarnContext(ctx, "failed to delete temp file",
					slog.String("file", path),
					slog.String("error", err.Error()))
			} else {
				deletedCount++
			}
		}

		return nil
	})

	if err != nil {
		return fmt.Errorf("failed to walk temp directory: %w", err)
	}

	p.logger.InfoContext(ctx, "temp files cleaned up",
		slog.Int("files_deleted", deletedCount))

	return nil
}
