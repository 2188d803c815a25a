package seals

import (
	"context"
	"fmt"

	"github.com/btcsuite/btcd/wire"
)

// SpendStatus is the answer a resolver gives about a seal outpoint.
type SpendStatus int

const (
	// SpendStatusUnknown means the resolver has never seen the outpoint.
	SpendStatusUnknown SpendStatus = iota
	// SpendStatusUnspent means the outpoint exists and is still unspent.
	SpendStatusUnspent
	// SpendStatusSpent means the outpoint was spent, the witness transaction
	// is returned alongside.
	SpendStatusSpent
)

func (s SpendStatus) String() string {
	switch s {
	case SpendStatusUnspent:
		return "unspent"
	case SpendStatusSpent:
		return "spent"
	default:
		return "unknown"
	}
}

// Resolver answers spend queries about transaction outpoints. When the
// returned status is SpendStatusSpent the witness transaction is non-nil.
// Implementations are backed by an untrusted chain view, callers never treat
// a resolver failure as evidence about the seal itself.
type Resolver interface {
	Resolve(
		ctx context.Context, outpoint wire.OutPoint,
	) (*wire.MsgTx, SpendStatus, error)
}

// ResolveStatus queries the resolver for the seal outpoint and maps the
// answer to the seal lifecycle:
//
//   - unspent outpoint: StatusDefined with ErrSealNotYetClosed
//   - unknown outpoint: StatusDefined with ErrOutpointUnknown
//   - spent with a witness verifying the proof: StatusClosed
//   - spent otherwise: StatusInvalid with the verification failure
//
// A failing resolver yields StatusDefined with an error wrapping
// ErrResolverUnavailable so callers can retry, it is never reported as an
// invalid seal.
func ResolveStatus(
	ctx context.Context, resolver Resolver, def SealDefinition,
	message []byte, proof *SealProof,
) (SealStatus, error) {
	witness, spendStatus, err := resolver.Resolve(ctx, def.Outpoint)
	if err != nil {
		return StatusDefined, fmt.Errorf("%w: %v", ErrResolverUnavailable, err)
	}

	switch spendStatus {
	case SpendStatusUnspent:
		return StatusDefined, ErrSealNotYetClosed
	case SpendStatusUnknown:
		return StatusDefined, ErrOutpointUnknown
	case SpendStatusSpent:
	default:
		return StatusDefined, fmt.Errorf(
			"%w: unexpected spend status %d", ErrResolverInconsistent,
			spendStatus,
		)
	}

	if witness == nil || !spendsOutpoint(witness, def.Outpoint) {
		return StatusDefined, ErrResolverInconsistent
	}

	if err := Verify(def, witness, message, proof); err != nil {
		return StatusInvalid, err
	}
	return StatusClosed, nil
}
