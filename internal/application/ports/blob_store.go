package ports

import (
	"context"
	"io"
	"time"
)

type (
	// BlobInfo carries response metadata for a fetched blob.
	BlobInfo struct {
		FileName    string
		ContentType string
		Size        int64
	}

	BlobStore interface {
		// Put stores the blob under key and returns the storage path.
		Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
		// SignedURL mints a time-limited retrieval URL for path. The ttl must
		// not outlive the metadata record the path belongs to.
		SignedURL(ctx context.Context, path string, ttl time.Duration) (string, error)
		// Fetch opens a stream through a signed URL scoped to ttl.
		Fetch(ctx context.Context, path string, ttl time.Duration) (io.ReadCloser, *BlobInfo, error)
		// Delete is idempotent: removing a missing path is not an error.
		Delete(ctx context.Context, path string) error
	}
)
