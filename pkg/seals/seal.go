package seals

import (
	"fmt"

	"github.com/bitseal-network/seald/pkg/dbc"
	"github.com/bitseal-network/seald/pkg/taggedhash"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
)

// SealStatus is the lifecycle state of a single-use seal.
type SealStatus int

const (
	// StatusDefined means the seal outpoint exists and has not been spent.
	StatusDefined SealStatus = iota
	// StatusClosed means the outpoint was spent by a witness transaction
	// carrying a valid commitment to the sealed message.
	StatusClosed
	// StatusInvalid means the outpoint was spent but no output of the
	// spending transaction verifies against the expected commitment. The
	// seal can never be closed over any message anymore.
	StatusInvalid
)

func (s SealStatus) String() string {
	switch s {
	case StatusDefined:
		return "defined"
	case StatusClosed:
		return "closed"
	case StatusInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// SealDefinition pins a seal to a specific transaction outpoint, the script
// encoding the closing witness must use and the protocol tag the commitment
// must be made under. Definitions are plain values, safe to copy and compare.
type SealDefinition struct {
	Outpoint wire.OutPoint
	Method   dbc.ScriptEncodeMethod
	Tag      taggedhash.ProtocolTag
}

// NewSealDefinition returns a seal definition over the given outpoint.
func NewSealDefinition(
	outpoint wire.OutPoint, method dbc.ScriptEncodeMethod,
	tag taggedhash.ProtocolTag,
) SealDefinition {
	return SealDefinition{
		Outpoint: outpoint,
		Method:   method,
		Tag:      tag,
	}
}

func (s SealDefinition) String() string {
	return fmt.Sprintf(
		"%s/%s", s.Outpoint.String(), s.Method.String(),
	)
}

// SealProof is the evidence that a seal was closed over a message: the
// commitment proof of the carrying output, plus the position of that output
// within the witness transaction.
type SealProof struct {
	Commitment  *dbc.Proof
	WitnessTxid chainhash.Hash
	OutputIndex uint32
}

func (p *SealProof) validate() error {
	if p == nil {
		return ErrNullProof
	}
	if p.Commitment == nil {
		return dbc.ErrNullProof
	}
	return nil
}

// spendsOutpoint reports whether tx has an input spending the outpoint.
func spendsOutpoint(tx *wire.MsgTx, outpoint wire.OutPoint) bool {
	for _, in := range tx.TxIn {
		if in.PreviousOutPoint == outpoint {
			return true
		}
	}
	return false
}

// authoritativeOutput returns the index of the first output, in ascending
// index order, whose scriptPubkey verifies as a commitment to the message.
// Scanning in this fixed order makes the carrying output unambiguous even
// when the witness transaction has several outputs of the same template.
func authoritativeOutput(
	tx *wire.MsgTx, tag taggedhash.ProtocolTag,
	message []byte, commitment *dbc.Proof,
) (uint32, bool) {
	for i, out := range tx.TxOut {
		if err := dbc.VerifyTxout(out, tag, message, commitment); err == nil {
			return uint32(i), true
		}
	}
	return 0, false
}

// Close evaluates a witness transaction against a seal definition and, when
// one of its outputs carries a valid commitment to the message, returns the
// seal proof binding message, witness and output together.
//
// A witness that does not spend the seal outpoint leaves the seal defined.
// A spending witness with no valid commitment output invalidates the seal
// permanently, the returned status is StatusInvalid alongside ErrSealInvalid.
func Close(
	def SealDefinition, witness *wire.MsgTx,
	message []byte, commitment *dbc.Proof,
) (*SealProof, SealStatus, error) {
	if witness == nil {
		return nil, StatusDefined, ErrNullWitness
	}
	if commitment == nil {
		return nil, StatusDefined, dbc.ErrNullProof
	}
	if commitment.Tag != def.Tag {
		return nil, StatusDefined, dbc.ErrProtocolMismatch
	}
	if !spendsOutpoint(witness, def.Outpoint) {
		return nil, StatusDefined, ErrWitnessNotSpending
	}

	index, ok := authoritativeOutput(witness, def.Tag, message, commitment)
	if !ok {
		return nil, StatusInvalid, ErrSealInvalid
	}

	return &SealProof{
		Commitment:  commitment,
		WitnessTxid: witness.TxHash(),
		OutputIndex: index,
	}, StatusClosed, nil
}

// Verify checks that the witness transaction closes the seal over the message
// exactly as claimed by the proof: the witness spends the seal outpoint, its
// txid matches the proof, and the referenced output is the first one carrying
// a valid commitment.
func Verify(
	def SealDefinition, witness *wire.MsgTx,
	message []byte, proof *SealProof,
) error {
	if err := proof.validate(); err != nil {
		return err
	}
	if witness == nil {
		return ErrNullWitness
	}
	if proof.Commitment.Tag != def.Tag {
		return dbc.ErrProtocolMismatch
	}
	if witness.TxHash() != proof.WitnessTxid {
		return ErrWitnessMismatch
	}
	if !spendsOutpoint(witness, def.Outpoint) {
		return ErrWitnessNotSpending
	}
	if int(proof.OutputIndex) >= len(witness.TxOut) {
		return dbc.ErrInvalidProofStructure
	}

	index, ok := authoritativeOutput(
		witness, def.Tag, message, proof.Commitment,
	)
	if !ok {
		// The claimed output does not verify either, surface the underlying
		// commitment failure.
		return dbc.VerifyTxout(
			witness.TxOut[proof.OutputIndex], def.Tag, message,
			proof.Commitment,
		)
	}
	if index != proof.OutputIndex {
		// Some earlier output also carries a valid commitment, so the proof
		// does not point at the authoritative one.
		return ErrSealInvalid
	}
	return nil
}
