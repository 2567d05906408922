package storage

import (
	"context"
	"io"
	"time"
)

// StorageInterface abstracts the proof screenshot storage backend. The local
// backend serves development and tests; a cloud backend can slot in behind
// the same presigned-URL flow.
type StorageInterface interface {
	// GeneratePresignedUploadURL returns a URL the client PUTs the screenshot
	// to. key is the storage path, contentType the expected MIME type.
	GeneratePresignedUploadURL(ctx context.Context, key string, contentType string, expiresIn time.Duration) (string, error)

	// PublicURL returns the stable URL for a stored proof, suitable for the
	// submission record.
	PublicURL(key string) string

	// FileExists checks whether a proof was actually uploaded and returns its
	// size.
	FileExists(ctx context.Context, key string) (exists bool, size int64, err error)

	// SaveFile persists an uploaded proof (used by the local backend's HTTP
	// upload handler).
	SaveFile(key string, reader io.Reader) error

	// ReadFile opens a stored proof for serving.
	ReadFile(key string) (io.ReadCloser, error)
}
