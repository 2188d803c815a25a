package dbc

import (
	"bytes"

	"github.com/bitseal-network/seald/pkg/taggedhash"
	"github.com/btcsuite/btcd/btcec/v2"
)

// ScriptSourceKind enumerates the closed set of script source variants a
// proof can carry. The set is fixed by protocol versioning, dispatch over it
// is always an exhaustive switch.
type ScriptSourceKind uint8

const (
	// SourceSinglePubkey is used for key-only outputs: the original public
	// key in the proof is all that is needed to recompute the commitment.
	SourceSinglePubkey ScriptSourceKind = iota
	// SourceLockScript is used for outputs built from a lock script (bare
	// scripts and all the hashed templates). The full original script must be
	// kept since the output may still be unspent at verification time and the
	// script cannot be reconstructed from its hash.
	SourceLockScript
	// SourceTaprootKeyTweak is used for taproot outputs whose internal key
	// carries the commitment. Only the tapscript merkle root is needed.
	SourceTaprootKeyTweak
	// SourceTapTree is used for taproot outputs carrying the commitment in a
	// dedicated tapscript leaf. The original leaf scripts are needed to
	// recompute the extended tree.
	SourceTapTree
)

// ScriptSource describes where the original script material of a committed
// output comes from. Exactly the fields relevant to Kind are set.
type ScriptSource struct {
	Kind        ScriptSourceKind
	LockScript  []byte
	TaprootRoot [taggedhash.Size]byte
	TapLeaves   [][]byte
}

func (s ScriptSource) validate() error {
	switch s.Kind {
	case SourceSinglePubkey:
		return nil
	case SourceLockScript:
		if len(s.LockScript) == 0 {
			return ErrNullScript
		}
		return nil
	case SourceTaprootKeyTweak:
		return nil
	case SourceTapTree:
		if len(s.TapLeaves) == 0 {
			return ErrEmptyTapTree
		}
		for _, leaf := range s.TapLeaves {
			if len(leaf) == 0 {
				return ErrNullScript
			}
		}
		return nil
	default:
		return ErrInvalidProofStructure
	}
}

// Proof is the minimal client-side data needed to re-derive a deterministic
// bitcoin commitment without any private material: the original public key,
// the script source material, and the protocol tag the commitment was made
// under.
type Proof struct {
	Pubkey *btcec.PublicKey
	Source ScriptSource
	Tag    taggedhash.ProtocolTag
}

func (p *Proof) validate() error {
	if p == nil {
		return ErrNullProof
	}
	if p.Pubkey == nil {
		return ErrNullPubkey
	}
	return p.Source.validate()
}

// Equal returns whether two proofs are semantically identical.
func (p *Proof) Equal(other *Proof) bool {
	if p == nil || other == nil {
		return p == other
	}
	if !bytes.Equal(
		p.Pubkey.SerializeCompressed(), other.Pubkey.SerializeCompressed(),
	) {
		return false
	}
	if p.Tag != other.Tag {
		return false
	}
	if p.Source.Kind != other.Source.Kind {
		return false
	}
	if !bytes.Equal(p.Source.LockScript, other.Source.LockScript) {
		return false
	}
	if p.Source.TaprootRoot != other.Source.TaprootRoot {
		return false
	}
	if len(p.Source.TapLeaves) != len(other.Source.TapLeaves) {
		return false
	}
	for i, leaf := range p.Source.TapLeaves {
		if !bytes.Equal(leaf, other.Source.TapLeaves[i]) {
			return false
		}
	}
	return true
}
