package registry

import (
	"fmt"

	"github.com/kshadid/thegiftspace/pkg/clients/giftspace"
)

// SessionInitError means the remote side refused to start an upload session.
// It is not retried; restart from Upload after fixing the cause.
type SessionInitError struct {
	Err error
}

func (e *SessionInitError) Error() string {
	return fmt.Sprintf("upload session init failed: %v", e.Err)
}

func (e *SessionInitError) Unwrap() error { return e.Err }

// ChunkSequenceError means a chunk send was rejected for an ordering or size
// mismatch. The session is dead; the upload must restart from initiation.
type ChunkSequenceError struct {
	Index int64
	Err   error
}

func (e *ChunkSequenceError) Error() string {
	return fmt.Sprintf("chunk %d rejected: %v", e.Index, e.Err)
}

func (e *ChunkSequenceError) Unwrap() error { return e.Err }

// IncompleteUploadError means completion was requested before the remote side
// acknowledged all declared bytes.
type IncompleteUploadError struct {
	Err error
}

func (e *IncompleteUploadError) Error() string {
	return fmt.Sprintf("upload incomplete: %v", e.Err)
}

func (e *IncompleteUploadError) Unwrap() error { return e.Err }

// syncFailureKind classifies a remote sync failure for logging. The
// reconciler converts every failure to a boolean at its boundary; the kind
// only shapes the log line and the user-facing notice.
type syncFailureKind string

const (
	syncFailureValidation  syncFailureKind = "validation"
	syncFailureUnavailable syncFailureKind = "remote_unavailable"
)

func classifySyncFailure(err error) syncFailureKind {
	if apiErr, ok := giftspace.AsAPIError(err); ok && apiErr.IsClientError() {
		return syncFailureValidation
	}
	return syncFailureUnavailable
}
