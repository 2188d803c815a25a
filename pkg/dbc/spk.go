package dbc

import (
	"bytes"
	"crypto/sha256"

	"github.com/bitseal-network/seald/pkg/taggedhash"
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/txscript"
)

// ScriptEncodeMethod enumerates the closed set of scriptPubkey templates
// able to carry a deterministic commitment. The set is fixed by protocol
// versioning: dispatching over it is always an exhaustive switch, never
// open-ended subclassing.
type ScriptEncodeMethod int

const (
	// MethodPublicKey is a bare pay-to-pubkey output.
	MethodPublicKey ScriptEncodeMethod = iota
	// MethodPubkeyHash is a P2PKH output.
	MethodPubkeyHash
	// MethodScriptHash is a P2SH output wrapping a lock script.
	MethodScriptHash
	// MethodWPubkeyHash is a native segwit P2WPKH output.
	MethodWPubkeyHash
	// MethodWScriptHash is a native segwit P2WSH output.
	MethodWScriptHash
	// MethodShWPubkeyHash is a P2SH-nested P2WPKH output.
	MethodShWPubkeyHash
	// MethodShWScriptHash is a P2SH-nested P2WSH output.
	MethodShWScriptHash
	// MethodTaproot is a segwit v1 taproot output.
	MethodTaproot
	// MethodOpReturn is an OP_RETURN output whose payload is a public key
	// carrying the commitment.
	MethodOpReturn
	// MethodBare is a non-standard bare lock script.
	MethodBare
)

func (m ScriptEncodeMethod) String() string {
	switch m {
	case MethodPublicKey:
		return "publickey"
	case MethodPubkeyHash:
		return "pubkeyhash"
	case MethodScriptHash:
		return "scripthash"
	case MethodWPubkeyHash:
		return "wpubkeyhash"
	case MethodWScriptHash:
		return "wscripthash"
	case MethodShWPubkeyHash:
		return "sh-wpubkeyhash"
	case MethodShWScriptHash:
		return "sh-wscripthash"
	case MethodTaproot:
		return "taproot"
	case MethodOpReturn:
		return "opreturn"
	case MethodBare:
		return "bare"
	default:
		return "unknown"
	}
}

// Validate returns whether the method is one of the defined templates.
func (m ScriptEncodeMethod) Validate() error {
	if m < MethodPublicKey || m > MethodBare {
		return ErrTxoutNotEligible
	}
	return nil
}

// ScriptEncodeMethodFromString parses the string form produced by String.
func ScriptEncodeMethodFromString(s string) (ScriptEncodeMethod, error) {
	for m := MethodPublicKey; m <= MethodBare; m++ {
		if m.String() == s {
			return m, nil
		}
	}
	return 0, ErrTxoutNotEligible
}

func (m ScriptEncodeMethod) usesPubkey() bool {
	switch m {
	case MethodPublicKey, MethodPubkeyHash, MethodWPubkeyHash,
		MethodShWPubkeyHash, MethodOpReturn:
		return true
	}
	return false
}

func (m ScriptEncodeMethod) usesLockScript() bool {
	switch m {
	case MethodBare, MethodScriptHash, MethodWScriptHash, MethodShWScriptHash:
		return true
	}
	return false
}

// CommitToSpkOpts is the struct given to the CommitToScriptPubkey method.
type CommitToSpkOpts struct {
	Method      ScriptEncodeMethod
	Pubkey      *btcec.PublicKey
	LockScript  []byte
	TaprootRoot [taggedhash.Size]byte
	TapLeaves   [][]byte
	Tag         taggedhash.ProtocolTag
}

func (o CommitToSpkOpts) validate() error {
	switch {
	case o.Method.usesPubkey():
		if o.Pubkey == nil {
			return ErrNullPubkey
		}
	case o.Method.usesLockScript():
		if len(o.LockScript) == 0 {
			return ErrNullScript
		}
		if o.Pubkey == nil {
			return ErrNullPubkey
		}
	case o.Method == MethodTaproot:
		if o.Pubkey == nil {
			return ErrNullPubkey
		}
	default:
		return ErrTxoutNotEligible
	}
	return nil
}

// CommitToScriptPubkey produces the committed scriptPubkey for the given
// output template and the proof needed to verify it. For hash-based
// templates the commitment is applied to the pre-image key or script and the
// template is re-hashed, so the result is a valid, freshly-hashed output of
// the same shape.
func CommitToScriptPubkey(
	opts CommitToSpkOpts, message []byte,
) ([]byte, *Proof, error) {
	if err := opts.validate(); err != nil {
		return nil, nil, err
	}

	switch opts.Method {
	case MethodTaproot:
		if len(opts.TapLeaves) > 0 {
			outputKey, _, proof, err := CommitToTapTree(
				opts.Pubkey, opts.TapLeaves, opts.Tag, message,
			)
			if err != nil {
				return nil, nil, err
			}
			spk, err := taprootScript(outputKey)
			if err != nil {
				return nil, nil, err
			}
			return spk, proof, nil
		}
		outputKey, proof, err := CommitToTaprootKey(
			opts.Pubkey, opts.TaprootRoot, opts.Tag, message,
		)
		if err != nil {
			return nil, nil, err
		}
		spk, err := taprootScript(outputKey)
		if err != nil {
			return nil, nil, err
		}
		return spk, proof, nil

	case MethodBare, MethodScriptHash, MethodWScriptHash, MethodShWScriptHash:
		committedScript, proof, err := CommitToLockScript(
			opts.LockScript, opts.Pubkey, opts.Tag, message,
		)
		if err != nil {
			return nil, nil, err
		}
		spk, err := spkFromLockScript(opts.Method, committedScript)
		if err != nil {
			return nil, nil, err
		}
		return spk, proof, nil

	default:
		committedKey, proof, err := CommitToPubkey(
			opts.Pubkey, opts.Tag, message,
		)
		if err != nil {
			return nil, nil, err
		}
		spk, err := spkFromPubkey(opts.Method, committedKey)
		if err != nil {
			return nil, nil, err
		}
		return spk, proof, nil
	}
}

// VerifyScriptPubkey classifies the committed scriptPubkey template and
// checks it against the commitment recomputed from the proof. Outputs whose
// template cannot carry a commitment yield ErrTxoutNotEligible; a proof
// whose structure does not fit the template yields ErrInvalidProofStructure.
func VerifyScriptPubkey(
	scriptPubkey []byte, tag taggedhash.ProtocolTag,
	message []byte, proof *Proof,
) error {
	if len(scriptPubkey) == 0 {
		return ErrNullScript
	}
	if err := proof.validate(); err != nil {
		return err
	}
	if proof.Tag != tag {
		return ErrProtocolMismatch
	}

	switch txscript.GetScriptClass(scriptPubkey) {
	case txscript.PubKeyTy:
		// A bare lock script ending in OP_CHECKSIG classifies as P2PK. The
		// proof source settles which template produced the output.
		if proof.Source.Kind == SourceLockScript {
			return verifyAgainstScriptTemplates(
				scriptPubkey, tag, message, proof, MethodBare,
			)
		}
		return verifyAgainstPubkeyTemplates(
			scriptPubkey, tag, message, proof, MethodPublicKey,
		)
	case txscript.PubKeyHashTy:
		return verifyAgainstPubkeyTemplates(
			scriptPubkey, tag, message, proof, MethodPubkeyHash,
		)
	case txscript.WitnessV0PubKeyHashTy:
		return verifyAgainstPubkeyTemplates(
			scriptPubkey, tag, message, proof, MethodWPubkeyHash,
		)
	case txscript.WitnessV0ScriptHashTy:
		return verifyAgainstScriptTemplates(
			scriptPubkey, tag, message, proof, MethodWScriptHash,
		)
	case txscript.ScriptHashTy:
		// A P2SH host is ambiguous: it may nest a P2WPKH redeem script, a
		// plain lock script or a P2WSH redeem script. The proof source
		// settles which, and the byte comparison settles the rest.
		if proof.Source.Kind == SourceSinglePubkey {
			return verifyAgainstPubkeyTemplates(
				scriptPubkey, tag, message, proof, MethodShWPubkeyHash,
			)
		}
		return verifyAgainstScriptTemplates(
			scriptPubkey, tag, message, proof,
			MethodScriptHash, MethodShWScriptHash,
		)
	case txscript.WitnessV1TaprootTy:
		if proof.Source.Kind != SourceTaprootKeyTweak &&
			proof.Source.Kind != SourceTapTree {
			return ErrInvalidProofStructure
		}
		program := scriptPubkey[2:]
		return VerifyTaprootCommitment(program, tag, message, proof)
	case txscript.NullDataTy:
		if proof.Source.Kind == SourceLockScript {
			return verifyAgainstScriptTemplates(
				scriptPubkey, tag, message, proof, MethodBare,
			)
		}
		return verifyOpReturn(scriptPubkey, tag, message, proof)
	case txscript.MultiSigTy, txscript.NonStandardTy:
		return verifyAgainstScriptTemplates(
			scriptPubkey, tag, message, proof, MethodBare,
		)
	default:
		return ErrTxoutNotEligible
	}
}

func verifyAgainstPubkeyTemplates(
	scriptPubkey []byte, tag taggedhash.ProtocolTag, message []byte,
	proof *Proof, methods ...ScriptEncodeMethod,
) error {
	if proof.Source.Kind != SourceSinglePubkey {
		return ErrInvalidProofStructure
	}

	keyset, err := NewKeyset(proof.Pubkey)
	if err != nil {
		return err
	}
	committedKey, err := keyset.Commit(proof.Pubkey, tag, message)
	if err != nil {
		return err
	}

	for _, method := range methods {
		expected, err := spkFromPubkey(method, committedKey)
		if err != nil {
			continue
		}
		if bytes.Equal(expected, scriptPubkey) {
			return nil
		}
	}
	return ErrCommitmentMismatch
}

func verifyAgainstScriptTemplates(
	scriptPubkey []byte, tag taggedhash.ProtocolTag, message []byte,
	proof *Proof, methods ...ScriptEncodeMethod,
) error {
	if proof.Source.Kind != SourceLockScript {
		return ErrInvalidProofStructure
	}

	committedScript, _, err := CommitToLockScript(
		proof.Source.LockScript, proof.Pubkey, tag, message,
	)
	if err != nil {
		return err
	}

	for _, method := range methods {
		expected, err := spkFromLockScript(method, committedScript)
		if err != nil {
			continue
		}
		if bytes.Equal(expected, scriptPubkey) {
			return nil
		}
	}
	return ErrCommitmentMismatch
}

// verifyOpReturn checks the single supported data-carrier shape: OP_RETURN
// followed by one 33-byte push holding the committed public key. Any other
// data carrier has no key slot and cannot host a commitment.
func verifyOpReturn(
	scriptPubkey []byte, tag taggedhash.ProtocolTag,
	message []byte, proof *Proof,
) error {
	if len(scriptPubkey) != 2+compressedKeyLen ||
		scriptPubkey[0] != txscript.OP_RETURN ||
		scriptPubkey[1] != txscript.OP_DATA_33 {
		return ErrTxoutNotEligible
	}
	return verifyAgainstPubkeyTemplates(
		scriptPubkey, tag, message, proof, MethodOpReturn,
	)
}

func spkFromPubkey(
	method ScriptEncodeMethod, pubkey *btcec.PublicKey,
) ([]byte, error) {
	serialized := pubkey.SerializeCompressed()
	switch method {
	case MethodPublicKey:
		return txscript.NewScriptBuilder().
			AddData(serialized).
			AddOp(txscript.OP_CHECKSIG).
			Script()
	case MethodPubkeyHash:
		return pubkeyHashScript(btcutil.Hash160(serialized))
	case MethodWPubkeyHash:
		return witnessScript(txscript.OP_0, btcutil.Hash160(serialized))
	case MethodShWPubkeyHash:
		redeem, err := witnessScript(
			txscript.OP_0, btcutil.Hash160(serialized),
		)
		if err != nil {
			return nil, err
		}
		return scriptHashScript(btcutil.Hash160(redeem))
	case MethodOpReturn:
		if serialized[0] != 0x02 {
			return nil, ErrInvalidOpReturnKey
		}
		return txscript.NewScriptBuilder().
			AddOp(txscript.OP_RETURN).
			AddData(serialized).
			Script()
	default:
		return nil, ErrInvalidProofStructure
	}
}

func spkFromLockScript(
	method ScriptEncodeMethod, lockScript []byte,
) ([]byte, error) {
	switch method {
	case MethodBare:
		out := make([]byte, len(lockScript))
		copy(out, lockScript)
		return out, nil
	case MethodScriptHash:
		return scriptHashScript(btcutil.Hash160(lockScript))
	case MethodWScriptHash:
		digest := sha256.Sum256(lockScript)
		return witnessScript(txscript.OP_0, digest[:])
	case MethodShWScriptHash:
		digest := sha256.Sum256(lockScript)
		redeem, err := witnessScript(txscript.OP_0, digest[:])
		if err != nil {
			return nil, err
		}
		return scriptHashScript(btcutil.Hash160(redeem))
	default:
		return nil, ErrInvalidProofStructure
	}
}

func pubkeyHashScript(pubkeyHash []byte) ([]byte, error) {
	return txscript.NewScriptBuilder().
		AddOp(txscript.OP_DUP).
		AddOp(txscript.OP_HASH160).
		AddData(pubkeyHash).
		AddOp(txscript.OP_EQUALVERIFY).
		AddOp(txscript.OP_CHECKSIG).
		Script()
}

func scriptHashScript(scriptHash []byte) ([]byte, error) {
	return txscript.NewScriptBuilder().
		AddOp(txscript.OP_HASH160).
		AddData(scriptHash).
		AddOp(txscript.OP_EQUAL).
		Script()
}

func witnessScript(version byte, program []byte) ([]byte, error) {
	return txscript.NewScriptBuilder().
		AddOp(version).
		AddData(program).
		Script()
}

func taprootScript(outputKey *btcec.PublicKey) ([]byte, error) {
	return witnessScript(
		txscript.OP_1, schnorr.SerializePubKey(outputKey),
	)
}
