// internal/core/ports/erp.go
package ports

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/LucasDeWerk/vstcount/internal/core/domain"
)

// CountSubmitter persists a confirmed quantity in the ERP. The returned
// inventory id is non-empty only when the server issued a new or changed
// session identifier; callers must adopt it for subsequent submissions.
// Failures leave no partial state behind and are never retried silently.
type CountSubmitter interface {
	SubmitCount(ctx context.Context, session domain.CountSession, productID, warehouseID string,
		counted int, expected decimal.Decimal) (newInventoryID string, err error)
}

// ProductLister fetches the count items of a session from the ERP, with
// expected stock and any quantity already counted server-side.
type ProductLister interface {
	FetchItems(ctx context.Context, session domain.CountSession) ([]domain.CountItem, error)
}

// TokenProvider supplies the opaque bearer credential attached to every
// outbound ERP and detection call.
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
}
