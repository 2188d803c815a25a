package dbc

import "errors"

var (
	// ErrNotKeysetMember ...
	ErrNotKeysetMember = errors.New(
		"target public key is not a member of the provided keyset",
	)
	// ErrSumInfiniteResult ...
	ErrSumInfiniteResult = errors.New(
		"sum of keyset public keys is the point at infinity",
	)
	// ErrDegenerateTweak ...
	ErrDegenerateTweak = errors.New(
		"tweaking factor is zero, out of the curve order, or produces the " +
			"point at infinity",
	)
	// ErrTxoutNotEligible ...
	ErrTxoutNotEligible = errors.New(
		"output template cannot carry a commitment",
	)
	// ErrInvalidOpReturnKey ...
	ErrInvalidOpReturnKey = errors.New(
		"OP_RETURN commitments require a public key with even parity (0x02 prefix)",
	)
	// ErrInvalidProofStructure ...
	ErrInvalidProofStructure = errors.New(
		"proof structure does not match the output template",
	)
	// ErrProtocolMismatch ...
	ErrProtocolMismatch = errors.New(
		"proof was created under a different protocol tag",
	)
	// ErrCommitmentMismatch ...
	ErrCommitmentMismatch = errors.New(
		"recomputed commitment does not match the claimed committed value",
	)

	// ErrNullPubkey ...
	ErrNullPubkey = errors.New("public key must not be null")
	// ErrNullScript ...
	ErrNullScript = errors.New("script must not be null")
	// ErrNullProof ...
	ErrNullProof = errors.New("proof must not be null")
	// ErrEmptyKeyset ...
	ErrEmptyKeyset = errors.New("keyset must not be empty")
	// ErrEmptyTapTree ...
	ErrEmptyTapTree = errors.New("taproot script tree must have at least one leaf")
)
