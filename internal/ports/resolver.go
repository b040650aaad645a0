package ports

import (
	"context"
	"fmt"
)

// URLResolver translates an opaque storage pointer into a fetchable URL.
// Resolution runs outside any store transaction and may fail; failures are
// reported as *ResolverError so callers can fall back to the raw image URL.
type URLResolver interface {
	Resolve(ctx context.Context, storagePointer string) (string, error)
}

// ResolverError is the typed failure of a URL resolution attempt.
type ResolverError struct {
	StoragePointer string
	Cause          error
}

func (e *ResolverError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("resolve %q failed", e.StoragePointer)
	}
	return fmt.Sprintf("resolve %q failed: %v", e.StoragePointer, e.Cause)
}

func (e *ResolverError) Unwrap() error { return e.Cause }
