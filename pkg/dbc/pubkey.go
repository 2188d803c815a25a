package dbc

import (
	"bytes"

	"github.com/bitseal-network/seald/pkg/taggedhash"
	"github.com/btcsuite/btcd/btcec/v2"
)

// CommitToPubkey tweaks the given public key so that it commits to the given
// message under the protocol tag. The returned key remains a valid secp256k1
// public key usable in any key-accepting script position and is
// computationally indistinguishable from a random key. The proof holds the
// original key needed to recompute the tweak.
//
// A ErrDegenerateTweak failure is fatal for this message: the caller must
// vary the message (eg. with a nonce) and retry.
func CommitToPubkey(
	pubkey *btcec.PublicKey, tag taggedhash.ProtocolTag, message []byte,
) (*btcec.PublicKey, *Proof, error) {
	if pubkey == nil {
		return nil, nil, ErrNullPubkey
	}

	keyset, err := NewKeyset(pubkey)
	if err != nil {
		return nil, nil, err
	}
	committed, err := keyset.Commit(pubkey, tag, message)
	if err != nil {
		return nil, nil, err
	}

	proof := &Proof{
		Pubkey: pubkey,
		Source: ScriptSource{Kind: SourceSinglePubkey},
		Tag:    tag,
	}
	return committed, proof, nil
}

// VerifyPubkeyCommitment recomputes the tweak from the proof's original key
// and checks that it yields exactly the given committed key. Comparison is
// byte-exact on the compressed serialization so that no encoding
// malleability can slip through.
func VerifyPubkeyCommitment(
	committed *btcec.PublicKey, tag taggedhash.ProtocolTag,
	message []byte, proof *Proof,
) error {
	if committed == nil {
		return ErrNullPubkey
	}
	if err := proof.validate(); err != nil {
		return err
	}
	if proof.Tag != tag {
		return ErrProtocolMismatch
	}
	if proof.Source.Kind != SourceSinglePubkey {
		return ErrInvalidProofStructure
	}

	keyset, err := NewKeyset(proof.Pubkey)
	if err != nil {
		return err
	}
	expected, err := keyset.Commit(proof.Pubkey, tag, message)
	if err != nil {
		return err
	}
	if !bytes.Equal(
		expected.SerializeCompressed(), committed.SerializeCompressed(),
	) {
		return ErrCommitmentMismatch
	}
	return nil
}
