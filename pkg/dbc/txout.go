package dbc

import (
	"github.com/bitseal-network/seald/pkg/taggedhash"
	"github.com/btcsuite/btcd/wire"
)

// CommitToTxoutOpts is the struct given to the CommitToTxout method.
type CommitToTxoutOpts struct {
	Value int64
	CommitToSpkOpts
}

// CommitToTxout returns a transaction output carrying a commitment to the
// given message, along with the proof needed to verify it. The output value
// is preserved, only the scriptPubkey differs from an uncommitted output of
// the same template.
func CommitToTxout(
	opts CommitToTxoutOpts, message []byte,
) (*wire.TxOut, *Proof, error) {
	scriptPubkey, proof, err := CommitToScriptPubkey(
		opts.CommitToSpkOpts, message,
	)
	if err != nil {
		return nil, nil, err
	}
	return wire.NewTxOut(opts.Value, scriptPubkey), proof, nil
}

// VerifyTxout checks that the given transaction output carries a commitment
// to the message verifiable with the proof.
func VerifyTxout(
	txout *wire.TxOut, tag taggedhash.ProtocolTag,
	message []byte, proof *Proof,
) error {
	if txout == nil {
		return ErrNullScript
	}
	return VerifyScriptPubkey(txout.PkScript, tag, message, proof)
}
