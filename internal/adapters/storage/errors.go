package storage

import (
	"errors"
	"fmt"
)

// Operation names carried by *Error.
const (
	OpIssueUpload   = "issue_upload_url"
	OpIssueDownload = "issue_download_url"
	OpDelete        = "delete"
	OpEnsureReady   = "ensure_ready"
	OpDownload      = "download"
	OpUpload        = "upload"
)

// Error reports a failed object store operation.
// StatusCode is the provider's HTTP status when one was received, 0 otherwise.
type Error struct {
	Op         string
	Key        string
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("storage %s %q", e.Op, e.Key)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsError reports whether err is or wraps a storage *Error.
func IsError(err error) bool {
	var se *Error
	return errors.As(err, &se)
}

// StatusCode returns the provider status carried by err, or 0.
func StatusCode(err error) int {
	var se *Error
	if errors.As(err, &se) {
		return se.StatusCode
	}
	return 0
}

// NewError builds an *Error; used by callers that talk to presigned URLs directly.
func NewError(op, key string, status int, err error) *Error {
	return newError(op, key, status, err)
}

func newError(op, key string, status int, err error) *Error {
	return &Error{Op: op, Key: key, StatusCode: status, Err: err}
}
