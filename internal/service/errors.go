package service

import "errors"

// Fault classes. Every operation failure wraps exactly one of these so
// the transport layer can map it to a status code and clients can tell
// a stale-mode fault (refetch a snapshot) from a plain rejection.
var (
	// ErrNotInCommittee: caller resolved to neither chair nor delegate
	ErrNotInCommittee = errors.New("caller is not in a committee")
	// ErrModeMismatch: operation targeted a mode the committee is not in
	ErrModeMismatch = errors.New("committee is not in the required mode")
	// ErrForbidden: caller's role/eligibility does not allow the operation
	ErrForbidden = errors.New("operation not allowed for caller")
	// ErrPrecondition: store-level constraint rejected the mutation
	ErrPrecondition = errors.New("precondition failed")
	// ErrValidation: malformed input rejected before reaching the store
	ErrValidation = errors.New("validation failed")
	// ErrNotFound: target record does not exist
	ErrNotFound = errors.New("not found")
	// ErrSpeechClosed: ledger entry already has its terminal length
	ErrSpeechClosed = errors.New("speech already closed")
)
