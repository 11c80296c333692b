// internal/core/ports/archive.go
package ports

import (
	"context"

	"github.com/google/uuid"
)

// EvidencePayload identifies the capture artifacts of one confirmed count.
// Paths point at temp files written during detection; the worker owns their
// removal after upload.
type EvidencePayload struct {
	JournalID     uuid.UUID `json:"journal_id"`
	SessionKey    string    `json:"session_key"`
	ProductID     string    `json:"product_id"`
	ImagePath     string    `json:"image_path"`
	AnnotatedPath string    `json:"annotated_path,omitempty"`
}

// EvidenceArchiver schedules the photo-evidence archive of a confirmed
// count. Archiving is best-effort and asynchronous: a failure to enqueue
// must not fail the confirmation it belongs to.
type EvidenceArchiver interface {
	ArchiveEvidence(ctx context.Context, payload EvidencePayload) error
}
