package filegroup

import (
	"fmt"
	"strings"
	"time"

	domain "filesharing-api/internal/domain/filegroup"
)

// ToCreateResponse renders the shareable link: the public URL shape is
// "<base>/open/<id>", the id being the only capability a holder needs.
func ToCreateResponse(fg *domain.FileGroup, publicBaseURL string) CreateResponse {
	return CreateResponse{
		Link: fmt.Sprintf("%s/open/%s", strings.TrimRight(publicBaseURL, "/"), fg.ID),
	}
}

func ToCheckResponse(fg *domain.FileGroup, remaining time.Duration) CheckResponse {
	return CheckResponse{
		Valid:            true,
		Names:            fg.OriginalNames,
		ExpiresAt:        fg.ExpiresAt,
		RemainingSeconds: int64(remaining / time.Second),
	}
}
