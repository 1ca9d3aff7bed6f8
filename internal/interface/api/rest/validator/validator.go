package validator

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

func IsUUID(s string) (bool, uuid.UUID) {
	id, err := uuid.Parse(s)
	return err == nil, id
}

// ValidateTTL parses a ttl in seconds. Empty falls back to def; anything
// above max is clamped rather than rejected, matching the service limits.
func ValidateTTL(s string, def, max time.Duration) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return def, nil
	}

	secs, err := strconv.ParseInt(s, 10, 64)
	if err != nil || secs <= 0 {
		return 0, errors.New("ttl must be a positive number of seconds")
	}

	ttl := time.Duration(secs) * time.Second
	if ttl > max {
		ttl = max
	}

	return ttl, nil
}

// ValidateIndex parses the file index query parameter, defaulting to 0.
func ValidateIndex(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}

	idx, err := strconv.Atoi(s)
	if err != nil || idx < 0 {
		return 0, errors.New("index must be a non-negative number")
	}

	return idx, nil
}
