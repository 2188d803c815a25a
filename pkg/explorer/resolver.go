package explorer

import (
	"context"
	"errors"

	"github.com/bitseal-network/seald/pkg/seals"
	"github.com/btcsuite/btcd/wire"
)

type resolver struct {
	svc Service
}

// NewResolver wraps an explorer service into a seals.Resolver so that seal
// statuses can be checked against the chain view the service exposes.
func NewResolver(svc Service) seals.Resolver {
	return &resolver{svc: svc}
}

func (r *resolver) Resolve(
	ctx context.Context, outpoint wire.OutPoint,
) (*wire.MsgTx, seals.SpendStatus, error) {
	outspend, err := r.svc.GetOutspend(
		ctx, outpoint.Hash.String(), outpoint.Index,
	)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, seals.SpendStatusUnknown, nil
		}
		return nil, seals.SpendStatusUnknown, err
	}

	if !outspend.Spent {
		return nil, seals.SpendStatusUnspent, nil
	}

	witness, err := r.svc.GetTransaction(ctx, outspend.SpendingTxid)
	if err != nil {
		return nil, seals.SpendStatusUnknown, err
	}
	return witness, seals.SpendStatusSpent, nil
}
