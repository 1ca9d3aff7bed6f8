package filegroup

import "errors"

var (
	// ErrNotFound - no group exists for the id (or it was already reaped).
	ErrNotFound = errors.New("file group not found")
	// ErrExpired - the group's expiry instant has passed; the record may
	// physically survive until the next reap but is logically dead.
	ErrExpired = errors.New("file group expired")
	// ErrValidation - bad input shape, rejected before any side effect.
	ErrValidation = errors.New("invalid file group request")
	// ErrUpload - a blob upload failed mid-create; uploaded siblings were
	// rolled back best-effort.
	ErrUpload = errors.New("blob upload failed")
	// ErrPersistence - the metadata write failed after all blobs landed;
	// blobs were rolled back best-effort.
	ErrPersistence = errors.New("file group persistence failed")
)
