package ports

import (
	"context"
	"time"
)

// Cache defines a generic key-value capability with per-entry TTL.
// The signed-URL cache is the main consumer; entries past their TTL read as
// missing.
type Cache interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
