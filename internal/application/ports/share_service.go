package ports

import (
	"context"
	"io"
	"mime/multipart"
	"time"

	"github.com/google/uuid"

	"filesharing-api/internal/domain/filegroup"
)

type ShareService interface {
	CreateFileGroup(ctx context.Context, files []*multipart.FileHeader, ttl time.Duration) (*filegroup.FileGroup, error)
	// Resolve re-evaluates expiry at call time. A nil error means the group
	// is live; otherwise filegroup.ErrNotFound or filegroup.ErrExpired.
	Resolve(ctx context.Context, id uuid.UUID) (*filegroup.FileGroup, time.Duration, error)
	FetchOne(ctx context.Context, id uuid.UUID, index int) (io.ReadCloser, *BlobInfo, error)
	FetchArchive(ctx context.Context, id uuid.UUID, w io.Writer) error
	Reap(ctx context.Context, id uuid.UUID) error
	Sweep(ctx context.Context) (int, error)
}
