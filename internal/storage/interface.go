package storage

import (
	"context"
	"io"
)

// EvidenceStore is the external file store that holds completion evidence
// photos. Uploads happen inside the completion transaction: an upload
// failure voids the whole completion rather than leaving it half applied.
type EvidenceStore interface {
	// Upload stores the file under key and returns its public URL
	Upload(ctx context.Context, key string, contentType string, r io.Reader) (string, error)

	// Delete removes a previously uploaded file. Deleting a missing file is
	// not an error.
	Delete(ctx context.Context, key string) error
}
