package filegroup

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	CreateFileGroup(ctx context.Context, req *FileGroup) (*FileGroup, error)
	// FetchFileGroup returns ErrNotFound when no row exists.
	FetchFileGroup(ctx context.Context, id uuid.UUID) (*FileGroup, error)
	// DeleteFileGroup is idempotent: deleting an absent id is not an error.
	DeleteFileGroup(ctx context.Context, id uuid.UUID) error
	// FetchExpiredBefore lists groups whose expiry instant precedes ts.
	FetchExpiredBefore(ctx context.Context, ts time.Time) (FileGroups, error)
}
