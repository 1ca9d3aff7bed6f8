package filegroup

import (
	"time"

	"github.com/google/uuid"
)

type (
	// FileGroup is a set of files shared behind a single link token.
	// OriginalNames and StoragePaths are index-aligned and never empty.
	FileGroup struct {
		ID uuid.UUID

		OriginalNames []string
		StoragePaths  []string

		ExpiresAt time.Time
		CreatedAt time.Time
	}
	FileGroups []*FileGroup
)

// Expired judges validity by wall clock only. A row may still exist in the
// store after its expiry instant; read paths must treat it as gone anyway.
func (fg *FileGroup) Expired(now time.Time) bool {
	return !now.Before(fg.ExpiresAt)
}

// Remaining returns the time left until expiry, never negative.
func (fg *FileGroup) Remaining(now time.Time) time.Duration {
	if fg.Expired(now) {
		return 0
	}
	return fg.ExpiresAt.Sub(now)
}
