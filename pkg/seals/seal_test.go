package seals

import (
	"encoding/binary"
	"testing"

	"github.com/bitseal-network/seald/pkg/dbc"
	"github.com/bitseal-network/seald/pkg/taggedhash"
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPubkey(t *testing.T, index uint32) *btcec.PublicKey {
	t.Helper()
	var seed [32]byte
	binary.BigEndian.PutUint32(seed[:4], index+1)
	privkey, pubkey := btcec.PrivKeyFromBytes(seed[:])
	require.NotNil(t, privkey)
	return pubkey
}

func testOutpoint(index uint32) wire.OutPoint {
	var txid chainhash.Hash
	binary.BigEndian.PutUint32(txid[:4], index+1)
	return wire.OutPoint{Hash: txid, Index: index % 3}
}

func testSeal(t *testing.T, index uint32) SealDefinition {
	t.Helper()
	return NewSealDefinition(
		testOutpoint(index),
		dbc.MethodWPubkeyHash,
		taggedhash.NewProtocolTag("LNPBP-TEST"),
	)
}

// witnessSpending builds a transaction spending the given outpoint with the
// given outputs.
func witnessSpending(outpoint wire.OutPoint, outs ...*wire.TxOut) *wire.MsgTx {
	tx := wire.NewMsgTx(2)
	tx.AddTxIn(wire.NewTxIn(&outpoint, nil, nil))
	for _, out := range outs {
		tx.AddTxOut(out)
	}
	return tx
}

func plainOutput(t *testing.T, pubkey *btcec.PublicKey) *wire.TxOut {
	t.Helper()
	spk, err := txscript.NewScriptBuilder().
		AddOp(txscript.OP_DUP).
		AddOp(txscript.OP_HASH160).
		AddData(make([]byte, 20)).
		AddOp(txscript.OP_EQUALVERIFY).
		AddOp(txscript.OP_CHECKSIG).
		Script()
	require.NoError(t, err)
	return wire.NewTxOut(2500, spk)
}

func commitOutput(
	t *testing.T, def SealDefinition, pubkey *btcec.PublicKey, message []byte,
) (*wire.TxOut, *dbc.Proof) {
	t.Helper()
	out, proof, err := dbc.CommitToTxout(dbc.CommitToTxoutOpts{
		Value: 1000,
		CommitToSpkOpts: dbc.CommitToSpkOpts{
			Method: def.Method,
			Pubkey: pubkey,
			Tag:    def.Tag,
		},
	}, message)
	require.NoError(t, err)
	return out, proof
}

func TestCloseAndVerify(t *testing.T) {
	def := testSeal(t, 0)
	pubkey := testPubkey(t, 0)
	message := []byte("hello")

	out, commitment := commitOutput(t, def, pubkey, message)
	witness := witnessSpending(
		def.Outpoint, plainOutput(t, pubkey), out,
	)

	proof, status, err := Close(def, witness, message, commitment)
	require.NoError(t, err)
	require.NotNil(t, proof)
	assert.Equal(t, StatusClosed, status)
	assert.Equal(t, witness.TxHash(), proof.WitnessTxid)
	assert.Equal(t, uint32(1), proof.OutputIndex)

	assert.NoError(t, Verify(def, witness, message, proof))
	assert.ErrorIs(
		t,
		Verify(def, witness, []byte("goodbye"), proof),
		dbc.ErrCommitmentMismatch,
	)
}

func TestCloseWitnessNotSpending(t *testing.T) {
	def := testSeal(t, 0)
	pubkey := testPubkey(t, 0)
	message := []byte("hello")

	out, commitment := commitOutput(t, def, pubkey, message)
	witness := witnessSpending(testOutpoint(7), out)

	proof, status, err := Close(def, witness, message, commitment)
	assert.Nil(t, proof)
	assert.Equal(t, StatusDefined, status)
	assert.ErrorIs(t, err, ErrWitnessNotSpending)
}

func TestCloseNoCommitmentOutput(t *testing.T) {
	def := testSeal(t, 0)
	pubkey := testPubkey(t, 0)

	_, commitment := commitOutput(t, def, pubkey, []byte("hello"))
	witness := witnessSpending(def.Outpoint, plainOutput(t, pubkey))

	proof, status, err := Close(def, witness, []byte("hello"), commitment)
	assert.Nil(t, proof)
	assert.Equal(t, StatusInvalid, status)
	assert.ErrorIs(t, err, ErrSealInvalid)
}

func TestCloseTagMismatch(t *testing.T) {
	def := testSeal(t, 0)
	pubkey := testPubkey(t, 0)
	message := []byte("hello")

	otherDef := def
	otherDef.Tag = taggedhash.NewProtocolTag("OTHER")
	out, commitment := commitOutput(t, otherDef, pubkey, message)
	witness := witnessSpending(def.Outpoint, out)

	_, _, err := Close(def, witness, message, commitment)
	assert.ErrorIs(t, err, dbc.ErrProtocolMismatch)
}

func TestCloseAuthoritativeOutputIsFirst(t *testing.T) {
	def := testSeal(t, 0)
	pubkey := testPubkey(t, 0)
	message := []byte("hello")

	// Two byte-identical commitment outputs: the first one by index wins.
	outA, commitment := commitOutput(t, def, pubkey, message)
	outB, _ := commitOutput(t, def, pubkey, message)
	witness := witnessSpending(def.Outpoint, outA, outB)

	proof, status, err := Close(def, witness, message, commitment)
	require.NoError(t, err)
	assert.Equal(t, StatusClosed, status)
	assert.Equal(t, uint32(0), proof.OutputIndex)

	// A proof pointing at the duplicate is rejected even though that output
	// verifies in isolation.
	forged := &SealProof{
		Commitment:  commitment,
		WitnessTxid: proof.WitnessTxid,
		OutputIndex: 1,
	}
	assert.ErrorIs(t, Verify(def, witness, message, forged), ErrSealInvalid)
}

func TestVerifyWitnessMismatch(t *testing.T) {
	def := testSeal(t, 0)
	pubkey := testPubkey(t, 0)
	message := []byte("hello")

	out, commitment := commitOutput(t, def, pubkey, message)
	witness := witnessSpending(def.Outpoint, out)

	proof, _, err := Close(def, witness, message, commitment)
	require.NoError(t, err)

	other := witnessSpending(def.Outpoint, plainOutput(t, pubkey), out)
	assert.ErrorIs(t, Verify(def, other, message, proof), ErrWitnessMismatch)
}

func TestVerifyOutputIndexOutOfRange(t *testing.T) {
	def := testSeal(t, 0)
	pubkey := testPubkey(t, 0)
	message := []byte("hello")

	out, commitment := commitOutput(t, def, pubkey, message)
	witness := witnessSpending(def.Outpoint, out)

	proof := &SealProof{
		Commitment:  commitment,
		WitnessTxid: witness.TxHash(),
		OutputIndex: 5,
	}
	assert.ErrorIs(
		t, Verify(def, witness, message, proof), dbc.ErrInvalidProofStructure,
	)
}

func TestVerifyNullProof(t *testing.T) {
	def := testSeal(t, 0)
	witness := witnessSpending(def.Outpoint)

	assert.ErrorIs(t, Verify(def, witness, []byte("msg"), nil), ErrNullProof)
}
