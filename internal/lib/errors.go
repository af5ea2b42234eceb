package lib

import "errors"

var (
	// ErrRateLimitExceeded is returned when the hourly remote call quota is used up.
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
	// ErrOperationFailed is returned when a remote call failed on every attempt.
	ErrOperationFailed = errors.New("operation failed")
	// ErrTerminalAuth marks credential and permission failures, which are never retried.
	ErrTerminalAuth = errors.New("permission denied or invalid credentials")

	ErrFetchFailed        = errors.New("failed to fetch image")
	ErrInvalidContentType = errors.New("invalid content type")
	ErrEmptyDownload      = errors.New("downloaded file is empty")
	ErrFileTooLarge       = errors.New("file too large")

	ErrAlbumOperationFailed = errors.New("album operation failed")

	// ErrValidation marks bad or missing request fields.
	ErrValidation = errors.New("invalid request")
)
