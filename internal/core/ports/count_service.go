// internal/core/ports/count_service.go
package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/LucasDeWerk/vstcount/internal/core/domain"
)

// AttemptState is the reconciliation state machine. States are exhaustive
// and mutually exclusive; StateIdle is the implicit state of a product with
// no attempt in flight (a cancelled attempt returns there by being dropped).
type AttemptState string

const (
	StateIdle        AttemptState = "idle"
	StateCapturing   AttemptState = "capturing"
	StateDetecting   AttemptState = "detecting"
	StateReconciling AttemptState = "reconciling"
	StateConfirmed   AttemptState = "confirmed"
	StateFailed      AttemptState = "failed"
)

// AttemptView is the externally visible snapshot of one counting attempt.
type AttemptView struct {
	ID                uuid.UUID         `json:"id"`
	SessionKey        string            `json:"session_key"`
	ProductID         string            `json:"product_id"`
	ObjectType        domain.ObjectType `json:"object_type"`
	State             AttemptState      `json:"state"`
	EstimatedCount    int               `json:"estimated_count"`
	Adds              int               `json:"adds"`
	Removes           int               `json:"removes"`
	FinalCount        int               `json:"final_count"`
	AverageConfidence float64           `json:"average_confidence"`
	Variance          *decimal.Decimal  `json:"variance,omitempty"`
	FailureKind       domain.Kind       `json:"failure_kind,omitempty"`
	FailureMessage    string            `json:"failure_message,omitempty"`
}

// SessionState is the externally visible snapshot of one count session.
type SessionState struct {
	Key     string              `json:"key"`
	Session domain.CountSession `json:"session"`
	Items   []*domain.CountItem `json:"items"`
}

// CountService defines the application service port for the counting
// workflow. This interface is implemented by services.CountService.
type CountService interface {
	// OpenSession registers a session and loads its product list.
	OpenSession(ctx context.Context, session domain.CountSession) (*SessionState, error)

	// Items returns the current product list of an open session.
	Items(ctx context.Context, sessionKey string) ([]*domain.CountItem, error)

	// BeginAttempt starts a counting attempt for one product (→ Capturing).
	// At most one attempt per product may be active.
	BeginAttempt(ctx context.Context, sessionKey, productID string, objectType domain.ObjectType) (*AttemptView, error)

	// Detect runs the captured image through the detection service
	// (→ Detecting → Reconciling, or → Failed).
	Detect(ctx context.Context, attemptID uuid.UUID, image []byte, filename string) (*AttemptView, error)

	// Adjust applies one manual +1/-1 correction while reconciling.
	Adjust(ctx context.Context, attemptID uuid.UUID, kind domain.AdjustmentKind) (*AttemptView, error)

	// Cancel discards the attempt without touching the item's counted
	// quantity. Valid from any non-terminal state.
	Cancel(ctx context.Context, attemptID uuid.UUID) error

	// Confirm submits the reconciled count to the ERP (→ Confirmed, or
	// → Failed with the item rolled back).
	Confirm(ctx context.Context, attemptID uuid.UUID) (*AttemptView, error)

	// SubmitManual records an operator-entered quantity with no detection
	// involved. Same persistence contract as Confirm.
	SubmitManual(ctx context.Context, sessionKey, productID string, counted int) (*domain.CountItem, error)

	// Attempt returns the current snapshot of an attempt.
	Attempt(ctx context.Context, attemptID uuid.UUID) (*AttemptView, error)
}
