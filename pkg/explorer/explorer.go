package explorer

import (
	"context"
	"errors"

	"github.com/btcsuite/btcd/wire"
)

var (
	// ErrNotFound is returned when the explorer does not know the requested
	// transaction or outpoint.
	ErrNotFound = errors.New("not found in the chain view")
	// ErrRequestFailed wraps any transport or upstream failure.
	ErrRequestFailed = errors.New("explorer request failed")
)

// Outspend is the spend status of a single transaction output.
type Outspend struct {
	// Spent reports whether the output was consumed by some input.
	Spent bool
	// SpendingTxid is the id of the spending transaction, set when Spent.
	SpendingTxid string
	// SpendingInput is the index of the consuming input, set when Spent.
	SpendingInput uint32
	// Confirmed reports whether the spending transaction is in a block.
	Confirmed bool
}

// Service is the representation of an explorer that allows to fetch
// transactions and output spend info from the bitcoin blockchain.
type Service interface {
	// GetTransactionHex fetches the transaction in hex format given its hash.
	GetTransactionHex(ctx context.Context, txid string) (string, error)
	// GetTransaction fetches and deserializes the transaction given its hash.
	GetTransaction(ctx context.Context, txid string) (*wire.MsgTx, error)
	// IsTransactionConfirmed returns whether the tx identified by its hash
	// has been included in the blockchain.
	IsTransactionConfirmed(ctx context.Context, txid string) (bool, error)
	// GetOutspend returns the spend status of the given output.
	GetOutspend(
		ctx context.Context, txid string, vout uint32,
	) (*Outspend, error)
	// GetBlockHeight returns the current tip height of the blockchain.
	GetBlockHeight(ctx context.Context) (int, error)
}
