package filegroup

import "time"

type (
	CreateResponse struct {
		Link string `json:"link"`
	}
	CheckResponse struct {
		Valid            bool      `json:"valid"`
		Names            []string  `json:"names"`
		ExpiresAt        time.Time `json:"expires_at"`
		RemainingSeconds int64     `json:"remaining_seconds"`
	}
	SweepResponse struct {
		Reaped int `json:"reaped"`
	}
)
