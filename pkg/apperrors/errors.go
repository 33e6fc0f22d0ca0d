// Package apperrors defines the sentinel errors shared across service,
// datasource and handler layers.
package apperrors

import "errors"

var (
	ErrInvalidConnectionString = errors.New("invalid connection string")
	ErrConnectionFailed        = errors.New("connection failed")
	ErrConnectionNotFound      = errors.New("connection not found")
	ErrEmptyQuery              = errors.New("query is empty")
	ErrQueryTooLong            = errors.New("query is too long")
	ErrSuspiciousInput         = errors.New("query contains suspicious input")
	ErrUnsupportedFileType     = errors.New("unsupported file type")
	ErrJobNotFound             = errors.New("job not found")
	ErrNotReadOnly             = errors.New("statement is not read-only")
)
