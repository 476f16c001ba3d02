package ports

import (
	"context"
	"net/http"
	"time"

	"github.com/fixora/assetdash/internal/domain"
)

// IdentityProvider resolves the staff member behind a request.
// A nil staff with a nil error means the request is anonymous.
type IdentityProvider interface {
	CurrentStaff(r *http.Request) (*domain.Staff, error)
}

// RateLimiter defines fixed-window request limiting keyed by caller
type RateLimiter interface {
	// Allow records one request for key and reports whether it is within limit
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}
