package seals

import "errors"

var (
	// ErrNullWitness ...
	ErrNullWitness = errors.New("witness transaction must not be null")
	// ErrNullProof ...
	ErrNullProof = errors.New("seal proof must not be null")
	// ErrWitnessNotSpending ...
	ErrWitnessNotSpending = errors.New(
		"witness transaction does not spend the seal outpoint",
	)
	// ErrWitnessMismatch ...
	ErrWitnessMismatch = errors.New(
		"witness transaction does not match the one referenced by the proof",
	)
	// ErrSealNotYetClosed ...
	ErrSealNotYetClosed = errors.New("seal outpoint has not been spent yet")
	// ErrSealInvalid ...
	ErrSealInvalid = errors.New(
		"seal outpoint was spent by a witness carrying no valid commitment",
	)
	// ErrOutpointUnknown ...
	ErrOutpointUnknown = errors.New(
		"resolver does not know about the seal outpoint",
	)
	// ErrResolverUnavailable ...
	ErrResolverUnavailable = errors.New(
		"resolver failed to answer, retry with backoff",
	)
	// ErrResolverInconsistent ...
	ErrResolverInconsistent = errors.New(
		"resolver returned a witness not spending the requested outpoint",
	)
)
