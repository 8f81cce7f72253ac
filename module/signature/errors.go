package signature

import "errors"

var (
	// ErrDuplicatedSigner is returned when an aggregator receives a second
	// signature for the same finalizer index.
	ErrDuplicatedSigner = errors.New("duplicated signer")

	// ErrInsufficientSignatures is returned when aggregation is requested
	// before any signature was collected.
	ErrInsufficientSignatures = errors.New("insufficient number of signatures")

	// ErrInvalidSignatureFormat is returned when signature bytes do not
	// deserialize to a valid curve point.
	ErrInvalidSignatureFormat = errors.New("invalid signature format")
)
