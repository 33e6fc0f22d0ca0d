package cache

import (
	"context"
	"time"

	"github.com/zenitsu0509/Employee-NLQ/pkg/models"
)

// ResponseCache stores completed query results for their TTL.
type ResponseCache interface {
	// Get returns the cached result for key, or ok=false on miss or
	// expiry.
	Get(ctx context.Context, key string) (result *models.QueryResult, ok bool, err error)

	// Set stores a result under key for the given TTL.
	Set(ctx context.Context, key string, result *models.QueryResult, ttl time.Duration) error

	// Close releases background resources.
	Close() error
}
