package domain

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrSlugTaken          = errors.New("slug already in use")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrForbidden          = errors.New("forbidden")
	ErrRegistryLocked     = errors.New("registry is locked")

	ErrUploadNotFound     = errors.New("upload not found")
	ErrFileTooLarge       = errors.New("file exceeds size limit")
	ErrChunkOutOfSequence = errors.New("chunk index out of sequence")
	ErrChunkSizeMismatch  = errors.New("chunk size mismatch")
	ErrUploadIncomplete   = errors.New("upload incomplete")
)
