// internal/core/domain/count.go
package domain

import (
	"fmt"
	"image"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ObjectType identifies the kind of stock unit the detection model counts.
type ObjectType string

// Object type constants, mapped from the operator's format selector.
const (
	ObjectRoundTube  ObjectType = "round_tube"
	ObjectSquareTube ObjectType = "square_tube"
	ObjectBar        ObjectType = "bar"
	ObjectSheet      ObjectType = "sheet"
	ObjectCoil       ObjectType = "coil"
)

// ValidObjectType reports whether t is one of the supported detection classes.
func ValidObjectType(t ObjectType) bool {
	switch t {
	case ObjectRoundTube, ObjectSquareTube, ObjectBar, ObjectSheet, ObjectCoil:
		return true
	}
	return false
}

// CountSession identifies one inventory count in progress. InventoryID is
// server-owned: the first submit may come back with a different id, and every
// later submission in the same session must carry the new one.
type CountSession struct {
	CompanyID   string `json:"company_id"`
	BranchID    string `json:"branch_id"`
	InventoryID string `json:"inventory_id"`
}

// Validate performs domain validation on the session parameters.
func (s *CountSession) Validate() error {
	if s.CompanyID == "" {
		return fmt.Errorf("company_id is required")
	}
	if s.BranchID == "" {
		return fmt.Errorf("branch_id is required")
	}
	return nil
}

// Key returns a stable cache/lookup key for the session. The inventory id is
// deliberately excluded because the server may replace it mid-session.
func (s *CountSession) Key() string {
	return s.CompanyID + ":" + s.BranchID
}

// CountItem is one product line within a count session. CountedQuantity is nil
// until a submission for the product succeeds; it mirrors server state and is
// never removed client-side.
type CountItem struct {
	ProductID       string          `json:"product_id"`
	Description     string          `json:"description"`
	WarehouseID     string          `json:"warehouse_id"`
	ExpectedStock   decimal.Decimal `json:"expected_stock"`
	CountedQuantity *int            `json:"counted_quantity,omitempty"`
}

// Counted reports whether the item already has an authoritative count.
func (i *CountItem) Counted() bool {
	return i.CountedQuantity != nil
}

// Detection is one detected unit in a processed photograph. Confidence is
// advisory display metadata and never feeds the count arithmetic.
type Detection struct {
	Confidence float64     `json:"confidence"`
	Center     image.Point `json:"center"`
}

// DetectionResult is the outcome of one photograph analysis. It is immutable
// once received and scoped to a single capture attempt.
type DetectionResult struct {
	EstimatedCount int         `json:"estimated_count"`
	Detections     []Detection `json:"detections"`
	AnnotatedImage []byte      `json:"annotated_image,omitempty"`
	ReceivedAt     time.Time   `json:"received_at"`
}

// AverageConfidence returns the mean detection confidence, or zero when the
// result carries no detections.
func (r *DetectionResult) AverageConfidence() float64 {
	if len(r.Detections) == 0 {
		return 0
	}
	var sum float64
	for _, d := range r.Detections {
		sum += d.Confidence
	}
	return sum / float64(len(r.Detections))
}

// AdjustmentKind distinguishes manual +1 and -1 corrections.
type AdjustmentKind string

const (
	AdjustmentAdd    AdjustmentKind = "add"
	AdjustmentRemove AdjustmentKind = "remove"
)

// ValidAdjustmentKind reports whether k is a known correction kind.
func ValidAdjustmentKind(k AdjustmentKind) bool {
	return k == AdjustmentAdd || k == AdjustmentRemove
}

// Adjustment is one manual correction applied while reconciling a detection
// estimate. Only the net effect of the adjustment log is ever transmitted.
type Adjustment struct {
	ID        uuid.UUID      `json:"id"`
	Kind      AdjustmentKind `json:"kind"`
	CreatedAt time.Time      `json:"created_at"`
}

// FinalCount combines a detection estimate with the net manual corrections,
// floored at zero. Over-removal past zero is a silent no-op at the arithmetic
// level; callers that want to surface it compare against the unclamped sum.
func FinalCount(estimated, adds, removes int) int {
	n := estimated + adds - removes
	if n < 0 {
		return 0
	}
	return n
}

// Variance is the signed difference between a confirmed count and the book
// stock quantity. Negative means the shelf held less than the books say.
func Variance(finalCount int, expectedStock decimal.Decimal) decimal.Decimal {
	return decimal.NewFromInt(int64(finalCount)).Sub(expectedStock)
}
