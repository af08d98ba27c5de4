package ports

import (
	"context"
	"io"

	"github.com/arshitcc/Ping-Park/internal/models"
)

// Upload is a file handle received from the transport layer, not yet
// persisted anywhere.
type Upload struct {
	Filename string
	Size     int64
	Reader   io.Reader
}

// IAssetStore is the external binary store. Upload failures abort the calling
// operation; Delete is idempotent cleanup and its failures are logged and
// swallowed by callers.
type IAssetStore interface {
	Upload(ctx context.Context, upload Upload) (*models.Asset, error)
	Delete(ctx context.Context, publicID, resourceType string) error
}
