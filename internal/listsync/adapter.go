package listsync

import (
	"context"
	"errors"
	"fmt"

	"vigil/internal/sanctions"
)

// Adapter downloads and parses one watchlist format into canonical entities.
// Implementations must honor the context deadline on the download.
type Adapter interface {
	Fetch(ctx context.Context, list ListConfig) ([]*sanctions.SanctionedEntity, error)
}

// ErrSyncInProgress signals that another sync already holds this list's lock.
var ErrSyncInProgress = errors.New("sync already in progress")

// FetchError wraps a download or parse failure with the list it belongs to.
type FetchError struct {
	ListID string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch list %s: %v", e.ListID, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
