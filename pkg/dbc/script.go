package dbc

import (
	"bytes"

	"github.com/bitseal-network/seald/pkg/taggedhash"
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/txscript"
)

const compressedKeyLen = 33

// extractScriptKeys returns every compressed public key pushed by the given
// script, in script order.
func extractScriptKeys(script []byte) ([]*btcec.PublicKey, error) {
	keys := make([]*btcec.PublicKey, 0)
	tokenizer := txscript.MakeScriptTokenizer(0, script)
	for tokenizer.Next() {
		data := tokenizer.Data()
		if len(data) != compressedKeyLen {
			continue
		}
		key, err := btcec.ParsePubKey(data)
		if err != nil {
			continue
		}
		keys = append(keys, key)
	}
	if err := tokenizer.Err(); err != nil {
		return nil, ErrTxoutNotEligible
	}
	return keys, nil
}

// replaceScriptKey rewrites the script substituting every push of the
// original key with the committed one, leaving every other byte of the
// script untouched.
func replaceScriptKey(script, original, committed []byte) []byte {
	var out bytes.Buffer
	tokenizer := txscript.MakeScriptTokenizer(0, script)
	prev := int32(0)
	for tokenizer.Next() {
		raw := script[prev:tokenizer.ByteIndex()]
		prev = tokenizer.ByteIndex()

		if bytes.Equal(tokenizer.Data(), original) {
			out.WriteByte(txscript.OP_DATA_33)
			out.Write(committed)
			continue
		}
		out.Write(raw)
	}
	return out.Bytes()
}

// CommitToLockScript embeds a commitment to the given message into the lock
// script by tweaking the designated public key in place. The tweak commits
// to the sum of all public keys appearing in the script, so scripts with
// multiple keys (eg. multisig) stay verifiable while every key other than
// the designated one is left byte-identical.
//
// The designated key must appear in the script; scripts pushing no public
// key have no eligible insertion point and fail with ErrTxoutNotEligible.
func CommitToLockScript(
	script []byte, pubkey *btcec.PublicKey,
	tag taggedhash.ProtocolTag, message []byte,
) ([]byte, *Proof, error) {
	if len(script) == 0 {
		return nil, nil, ErrNullScript
	}
	if pubkey == nil {
		return nil, nil, ErrNullPubkey
	}

	scriptKeys, err := extractScriptKeys(script)
	if err != nil {
		return nil, nil, err
	}
	if len(scriptKeys) == 0 {
		return nil, nil, ErrTxoutNotEligible
	}

	keyset, err := NewKeyset(scriptKeys...)
	if err != nil {
		return nil, nil, err
	}
	committed, err := keyset.Commit(pubkey, tag, message)
	if err != nil {
		return nil, nil, err
	}

	committedScript := replaceScriptKey(
		script, pubkey.SerializeCompressed(), committed.SerializeCompressed(),
	)

	originalScript := make([]byte, len(script))
	copy(originalScript, script)
	proof := &Proof{
		Pubkey: pubkey,
		Source: ScriptSource{Kind: SourceLockScript, LockScript: originalScript},
		Tag:    tag,
	}
	return committedScript, proof, nil
}

// VerifyLockScriptCommitment recomputes the committed script from the
// proof's original script and designated key and compares it byte for byte
// with the given one.
func VerifyLockScriptCommitment(
	committedScript []byte, tag taggedhash.ProtocolTag,
	message []byte, proof *Proof,
) error {
	if err := proof.validate(); err != nil {
		return err
	}
	if proof.Tag != tag {
		return ErrProtocolMismatch
	}
	if proof.Source.Kind != SourceLockScript {
		return ErrInvalidProofStructure
	}

	expected, _, err := CommitToLockScript(
		proof.Source.LockScript, proof.Pubkey, tag, message,
	)
	if err != nil {
		return err
	}
	if !bytes.Equal(expected, committedScript) {
		return ErrCommitmentMismatch
	}
	return nil
}
