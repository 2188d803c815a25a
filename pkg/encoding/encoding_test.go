package encoding

import (
	"encoding/binary"
	"testing"

	"github.com/bitseal-network/seald/pkg/dbc"
	"github.com/bitseal-network/seald/pkg/seals"
	"github.com/bitseal-network/seald/pkg/taggedhash"
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPubkey(t *testing.T, index uint32) *btcec.PublicKey {
	t.Helper()
	var seed [32]byte
	binary.BigEndian.PutUint32(seed[:4], index+1)
	_, pubkey := btcec.PrivKeyFromBytes(seed[:])
	return pubkey
}

func testProofs(t *testing.T) map[string]*dbc.Proof {
	t.Helper()
	tag := taggedhash.NewProtocolTag("TEST_TAG")
	pubkey := testPubkey(t, 0)

	var root [taggedhash.Size]byte
	root[0], root[31] = 0xaa, 0xbb

	return map[string]*dbc.Proof{
		"single pubkey": {
			Pubkey: pubkey,
			Source: dbc.ScriptSource{Kind: dbc.SourceSinglePubkey},
			Tag:    tag,
		},
		"lock script": {
			Pubkey: pubkey,
			Source: dbc.ScriptSource{
				Kind:       dbc.SourceLockScript,
				LockScript: []byte{0x51, 0x21},
			},
			Tag: tag,
		},
		"taproot key tweak": {
			Pubkey: pubkey,
			Source: dbc.ScriptSource{
				Kind:        dbc.SourceTaprootKeyTweak,
				TaprootRoot: root,
			},
			Tag: tag,
		},
		"tap tree": {
			Pubkey: pubkey,
			Source: dbc.ScriptSource{
				Kind:      dbc.SourceTapTree,
				TapLeaves: [][]byte{{0x51}, {0x52, 0x53}},
			},
			Tag: tag,
		},
	}
}

func TestProofRoundTrip(t *testing.T) {
	for name, proof := range testProofs(t) {
		t.Run(name, func(t *testing.T) {
			data, err := MarshalProof(proof)
			require.NoError(t, err)

			decoded, err := UnmarshalProof(data)
			require.NoError(t, err)
			assert.True(t, proof.Equal(decoded))

			// Serialization is deterministic.
			again, err := MarshalProof(decoded)
			require.NoError(t, err)
			assert.Equal(t, data, again)
		})
	}
}

func TestUnmarshalProofRejectsTrailingBytes(t *testing.T) {
	data, err := MarshalProof(testProofs(t)["single pubkey"])
	require.NoError(t, err)

	_, err = UnmarshalProof(append(data, 0x00))
	assert.ErrorIs(t, err, ErrTrailingBytes)
}

func TestUnmarshalProofRejectsUnknownVersion(t *testing.T) {
	data, err := MarshalProof(testProofs(t)["single pubkey"])
	require.NoError(t, err)

	data[0] = 0x7f
	_, err = UnmarshalProof(data)
	assert.ErrorIs(t, err, ErrUnsupportedVersion)
}

func TestUnmarshalProofRejectsTruncated(t *testing.T) {
	data, err := MarshalProof(testProofs(t)["tap tree"])
	require.NoError(t, err)

	for _, cut := range []int{1, 10, len(data) - 1} {
		_, err := UnmarshalProof(data[:cut])
		assert.Error(t, err)
	}
}

func TestSealDefinitionRoundTrip(t *testing.T) {
	var txid chainhash.Hash
	txid[0] = 0x01

	def := seals.NewSealDefinition(
		wire.OutPoint{Hash: txid, Index: 4},
		dbc.MethodTaproot,
		taggedhash.NewProtocolTag("TEST_TAG"),
	)

	data, err := MarshalSealDefinition(def)
	require.NoError(t, err)

	decoded, err := UnmarshalSealDefinition(data)
	require.NoError(t, err)
	assert.Equal(t, def, decoded)

	_, err = UnmarshalSealDefinition(append(data, 0xff))
	assert.ErrorIs(t, err, ErrTrailingBytes)
}

func TestUnmarshalSealDefinitionRejectsUnknownMethod(t *testing.T) {
	def := seals.NewSealDefinition(
		wire.OutPoint{}, dbc.MethodBare,
		taggedhash.NewProtocolTag("TEST_TAG"),
	)
	data, err := MarshalSealDefinition(def)
	require.NoError(t, err)

	// The method byte sits right after the version and the outpoint.
	data[1+32+4] = 0xee
	_, err = UnmarshalSealDefinition(data)
	assert.ErrorIs(t, err, dbc.ErrTxoutNotEligible)
}

func TestSealProofRoundTrip(t *testing.T) {
	var txid chainhash.Hash
	txid[5] = 0x42

	proof := &seals.SealProof{
		Commitment:  testProofs(t)["lock script"],
		WitnessTxid: txid,
		OutputIndex: 2,
	}

	data, err := MarshalSealProof(proof)
	require.NoError(t, err)

	decoded, err := UnmarshalSealProof(data)
	require.NoError(t, err)
	assert.Equal(t, proof.WitnessTxid, decoded.WitnessTxid)
	assert.Equal(t, proof.OutputIndex, decoded.OutputIndex)
	assert.True(t, proof.Commitment.Equal(decoded.Commitment))
}

func TestMarshalSealProofNull(t *testing.T) {
	_, err := MarshalSealProof(nil)
	assert.ErrorIs(t, err, seals.ErrNullProof)
}
