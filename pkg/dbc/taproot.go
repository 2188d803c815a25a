package dbc

import (
	"bytes"
	"crypto/sha256"
	"sort"

	"github.com/bitseal-network/seald/pkg/taggedhash"
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/txscript"
)

// TapCommitmentLeafTag is the domain-separation label for the tagged hash
// stored in a commitment tapscript leaf.
const TapCommitmentLeafTag = "dbc/tapleaf"

// CommitToTaprootKey embeds a commitment into a taproot output by tweaking
// its internal key, preserving the tapscript merkle root so that every
// script path remains spendable. A zeroed scriptRoot means the output has no
// script paths.
func CommitToTaprootKey(
	internalKey *btcec.PublicKey, scriptRoot [taggedhash.Size]byte,
	tag taggedhash.ProtocolTag, message []byte,
) (*btcec.PublicKey, *Proof, error) {
	if internalKey == nil {
		return nil, nil, ErrNullPubkey
	}

	keyset, err := NewKeyset(internalKey)
	if err != nil {
		return nil, nil, err
	}
	committedInternal, err := keyset.Commit(internalKey, tag, message)
	if err != nil {
		return nil, nil, err
	}

	outputKey := txscript.ComputeTaprootOutputKey(
		committedInternal, taprootRootBytes(scriptRoot),
	)

	proof := &Proof{
		Pubkey: internalKey,
		Source: ScriptSource{
			Kind:        SourceTaprootKeyTweak,
			TaprootRoot: scriptRoot,
		},
		Tag: tag,
	}
	return outputKey, proof, nil
}

// CommitToTapTree embeds a commitment into a taproot script tree by
// appending a dedicated commitment leaf. Original leaves are first put in
// canonical order (lexicographic by script bytes) and stay byte-identical;
// the commitment leaf always occupies the last position of the canonical
// tree, so committer and verifier agree on its location with no
// coordination. The commitment hash binds the original tree root, the
// protocol tag and the message.
//
// It returns the new output key, the commitment leaf script and the proof
// carrying the original leaves.
func CommitToTapTree(
	internalKey *btcec.PublicKey, leafScripts [][]byte,
	tag taggedhash.ProtocolTag, message []byte,
) (*btcec.PublicKey, []byte, *Proof, error) {
	if internalKey == nil {
		return nil, nil, nil, ErrNullPubkey
	}
	if len(leafScripts) == 0 {
		return nil, nil, nil, ErrEmptyTapTree
	}
	for _, leaf := range leafScripts {
		if len(leaf) == 0 {
			return nil, nil, nil, ErrNullScript
		}
	}

	ordered := canonicalLeafOrder(leafScripts)

	commitmentLeaf, err := commitmentLeafScript(ordered, tag, message)
	if err != nil {
		return nil, nil, nil, err
	}

	outputKey, err := tapTreeOutputKey(internalKey, ordered, commitmentLeaf)
	if err != nil {
		return nil, nil, nil, err
	}

	proof := &Proof{
		Pubkey: internalKey,
		Source: ScriptSource{Kind: SourceTapTree, TapLeaves: ordered},
		Tag:    tag,
	}
	return outputKey, commitmentLeaf, proof, nil
}

// VerifyTaprootCommitment checks a 32-byte taproot witness program against
// the commitment recomputed from the proof, for both the key-tweak and the
// commitment-leaf variants.
func VerifyTaprootCommitment(
	witnessProgram []byte, tag taggedhash.ProtocolTag,
	message []byte, proof *Proof,
) error {
	if err := proof.validate(); err != nil {
		return err
	}
	if proof.Tag != tag {
		return ErrProtocolMismatch
	}

	var expected *btcec.PublicKey
	switch proof.Source.Kind {
	case SourceTaprootKeyTweak:
		outputKey, _, err := CommitToTaprootKey(
			proof.Pubkey, proof.Source.TaprootRoot, tag, message,
		)
		if err != nil {
			return err
		}
		expected = outputKey
	case SourceTapTree:
		outputKey, _, _, err := CommitToTapTree(
			proof.Pubkey, proof.Source.TapLeaves, tag, message,
		)
		if err != nil {
			return err
		}
		expected = outputKey
	default:
		return ErrInvalidProofStructure
	}

	if !bytes.Equal(schnorr.SerializePubKey(expected), witnessProgram) {
		return ErrCommitmentMismatch
	}
	return nil
}

// canonicalLeafOrder returns a copy of the leaf scripts sorted
// lexicographically by their byte content. Relying on caller-supplied or map
// iteration order here would break the committer/verifier agreement.
func canonicalLeafOrder(leafScripts [][]byte) [][]byte {
	ordered := make([][]byte, len(leafScripts))
	for i, leaf := range leafScripts {
		cp := make([]byte, len(leaf))
		copy(cp, leaf)
		ordered[i] = cp
	}
	sort.Slice(ordered, func(i, j int) bool {
		return bytes.Compare(ordered[i], ordered[j]) < 0
	})
	return ordered
}

// commitmentLeafScript builds the unspendable tapscript leaf holding the
// commitment hash: OP_RETURN <tag> <H(tag || original root || message)>.
func commitmentLeafScript(
	orderedLeaves [][]byte, tag taggedhash.ProtocolTag, message []byte,
) ([]byte, error) {
	originalRoot := assembleLeafRoot(orderedLeaves)
	msgDigest := sha256.Sum256(message)
	commitment := taggedhash.HashParts(
		TapCommitmentLeafTag, tag.Bytes(), originalRoot[:], msgDigest[:],
	)

	return txscript.NewScriptBuilder().
		AddOp(txscript.OP_RETURN).
		AddData(tag.Bytes()).
		AddData(commitment[:]).
		Script()
}

func assembleLeafRoot(leafScripts [][]byte) [taggedhash.Size]byte {
	leaves := make([]txscript.TapLeaf, len(leafScripts))
	for i, script := range leafScripts {
		leaves[i] = txscript.NewBaseTapLeaf(script)
	}
	root := txscript.AssembleTaprootScriptTree(leaves...).RootNode.TapHash()
	var out [taggedhash.Size]byte
	copy(out[:], root[:])
	return out
}

func tapTreeOutputKey(
	internalKey *btcec.PublicKey, orderedLeaves [][]byte, commitmentLeaf []byte,
) (*btcec.PublicKey, error) {
	leaves := make([]txscript.TapLeaf, 0, len(orderedLeaves)+1)
	for _, script := range orderedLeaves {
		leaves = append(leaves, txscript.NewBaseTapLeaf(script))
	}
	leaves = append(leaves, txscript.NewBaseTapLeaf(commitmentLeaf))

	root := txscript.AssembleTaprootScriptTree(leaves...).RootNode.TapHash()
	return txscript.ComputeTaprootOutputKey(internalKey, root[:]), nil
}

func taprootRootBytes(scriptRoot [taggedhash.Size]byte) []byte {
	var zero [taggedhash.Size]byte
	if scriptRoot == zero {
		return nil
	}
	return scriptRoot[:]
}
