// internal/core/ports/detection.go
package ports

import (
	"context"

	"github.com/LucasDeWerk/vstcount/internal/core/domain"
)

// DetectionClient is the boundary to the remote object-detection service.
// Implementations are pure I/O adapters: they hold no session state and never
// retry on their own. Every failure is a *domain.Error with a distinct Kind.
type DetectionClient interface {
	// Ping probes the availability endpoint. A non-nil error means the heavy
	// detect call must not be attempted.
	Ping(ctx context.Context) error

	// Detect submits a captured image and returns the estimate. The image must
	// be non-empty and objectType must be a supported class; violations fail
	// with KindInvalidImage / KindInvalidParameters before any network call.
	Detect(ctx context.Context, image []byte, objectType domain.ObjectType, filename string) (*domain.DetectionResult, error)
}
