// internal/core/domain/journal.go
package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SubmissionOutcome records how a count submission ended.
type SubmissionOutcome string

const (
	OutcomeConfirmed SubmissionOutcome = "confirmed"
	OutcomeFailed    SubmissionOutcome = "failed"
)

// CountSource distinguishes how the confirmed quantity was produced.
type CountSource string

const (
	SourceDetection CountSource = "detection"
	SourceManual    CountSource = "manual"
)

// JournalEntry is the local audit record of one count submission attempt.
// It exists for diagnostics only; the ERP remains the source of truth for
// counted quantities.
type JournalEntry struct {
	ID              uuid.UUID         `json:"id"`
	CompanyID       string            `json:"company_id"`
	BranchID        string            `json:"branch_id"`
	InventoryID     string            `json:"inventory_id"`
	ProductID       string            `json:"product_id"`
	WarehouseID     string            `json:"warehouse_id"`
	CountedQuantity int               `json:"counted_quantity"`
	ExpectedStock   decimal.Decimal   `json:"expected_stock"`
	Variance        decimal.Decimal   `json:"variance"`
	Source          CountSource       `json:"source"`
	Outcome         SubmissionOutcome `json:"outcome"`
	FailureKind     string            `json:"failure_kind,omitempty"`
	NewInventoryID  string            `json:"new_inventory_id,omitempty"`
	EvidenceKey     string            `json:"evidence_key,omitempty"`
	SubmittedAt     time.Time         `json:"submitted_at"`
}

// PrepareForStorage fills server-side defaults before the entry is written.
func (e *JournalEntry) PrepareForStorage() {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.SubmittedAt.IsZero() {
		e.SubmittedAt = time.Now()
	}
	e.Variance = Variance(e.CountedQuantity, e.ExpectedStock)
}
