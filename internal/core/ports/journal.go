// internal/core/ports/journal.go
package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/LucasDeWerk/vstcount/internal/core/domain"
)

// CountJournal is the local persistence port for the submission audit trail.
// This interface is implemented by the database adapter.
type CountJournal interface {
	Record(ctx context.Context, entry *domain.JournalEntry) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.JournalEntry, error)
	SetEvidenceKey(ctx context.Context, id uuid.UUID, key string) error
	List(ctx context.Context, params JournalParams) (*JournalResult, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// JournalParams holds filters for listing journal entries.
type JournalParams struct {
	CompanyID   string
	BranchID    string
	InventoryID string
	ProductID   string
	Outcome     string
	Page        int
	PageSize    int
}

// JournalResult holds one page of journal entries.
type JournalResult struct {
	Entries    []*domain.JournalEntry `json:"entries"`
	Page       int                    `json:"page"`
	PageSize   int                    `json:"page_size"`
	TotalCount int64                  `json:"total_count"`
	TotalPages int                    `json:"total_pages"`
}
