package filegroup

import (
	"time"

	"github.com/google/uuid"
)

type (
	FileGroup struct {
		ID uuid.UUID

		OriginalNames []string
		StoragePaths  []string

		ExpiresAt time.Time
		CreatedAt time.Time
	}
	FileGroups []*FileGroup
)
