// Package adapters implements per-format watchlist downloaders that turn a
// regulator's published file into canonical sanctioned entities.
package adapters

import (
	"fmt"
	"io"
	"net/http"

	"vigil/internal/listsync"
)

const maxBodyBytes = 64 << 20 // regulator exports run tens of megabytes

// download fetches the raw list content, honoring the request context.
func download(client *http.Client, req *http.Request, list listsync.ListConfig) ([]byte, error) {
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download list %s: %w", list.ID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download list %s: unexpected status %d", list.ID, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read list %s: %w", list.ID, err)
	}
	return body, nil
}
