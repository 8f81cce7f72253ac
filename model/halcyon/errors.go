package halcyon

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidSignature indicates a signature that does not verify against
	// its claimed signer(s) and content.
	ErrInvalidSignature = errors.New("invalid signature")
)

// InvalidEncodingError indicates bytes that do not form a canonical encoding
// of the expected type: truncation, bad tags, non-canonical bitsets or
// trailing data. The offending message should be discarded by the caller.
type InvalidEncodingError struct {
	err error
}

func NewInvalidEncodingErrorf(msg string, args ...interface{}) error {
	return InvalidEncodingError{err: fmt.Errorf(msg, args...)}
}

func (e InvalidEncodingError) Error() string { return e.err.Error() }
func (e InvalidEncodingError) Unwrap() error { return e.err }

// IsInvalidEncodingError returns whether err is an InvalidEncodingError.
func IsInvalidEncodingError(err error) bool {
	var e InvalidEncodingError
	return errors.As(err, &e)
}

// InvalidCertificateError indicates a certificate whose fields violate the
// construction invariants (e.g. a successor QC not matching the derived
// block hash, or a timeout certificate for a round its QC exceeds). Such
// certificates are rejected, never silently accepted.
type InvalidCertificateError struct {
	err error
}

func NewInvalidCertificateErrorf(msg string, args ...interface{}) error {
	return InvalidCertificateError{err: fmt.Errorf(msg, args...)}
}

func (e InvalidCertificateError) Error() string { return e.err.Error() }
func (e InvalidCertificateError) Unwrap() error { return e.err }

// IsInvalidCertificateError returns whether err is an InvalidCertificateError.
func IsInvalidCertificateError(err error) bool {
	var e InvalidCertificateError
	return errors.As(err, &e)
}

// InvalidMessageError indicates a vote or timeout message that fails
// structural validation in its constructor.
type InvalidMessageError struct {
	err error
}

func NewInvalidMessageErrorf(msg string, args ...interface{}) error {
	return InvalidMessageError{err: fmt.Errorf(msg, args...)}
}

func (e InvalidMessageError) Error() string { return e.err.Error() }
func (e InvalidMessageError) Unwrap() error { return e.err }

// IsInvalidMessageError returns whether err is an InvalidMessageError.
func IsInvalidMessageError(err error) bool {
	var e InvalidMessageError
	return errors.As(err, &e)
}

// InvalidTransitionError indicates an attempt to move PersistentRoundStatus
// backwards, e.g. recording a vote for a round at or below one already
// signed. This is a contract violation by the caller and a potential
// equivocation bug: the owning component must treat it as fatal.
type InvalidTransitionError struct {
	err error
}

func NewInvalidTransitionErrorf(msg string, args ...interface{}) error {
	return InvalidTransitionError{err: fmt.Errorf(msg, args...)}
}

func (e InvalidTransitionError) Error() string { return e.err.Error() }
func (e InvalidTransitionError) Unwrap() error { return e.err }

// IsInvalidTransitionError returns whether err is an InvalidTransitionError.
func IsInvalidTransitionError(err error) bool {
	var e InvalidTransitionError
	return errors.As(err, &e)
}
