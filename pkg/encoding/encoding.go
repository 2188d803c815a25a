// Package encoding implements the strict binary serialization of commitment
// and seal proofs. The format is deterministic, two semantically identical
// proofs always serialize to the same bytes, and decoding rejects any trailing
// garbage so serialized proofs are safe to hash and exchange.
package encoding

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/bitseal-network/seald/pkg/dbc"
	"github.com/bitseal-network/seald/pkg/seals"
	"github.com/bitseal-network/seald/pkg/taggedhash"
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
)

// Version is the only serialization format version currently defined.
const Version byte = 1

const (
	compressedKeyLen = 33
	// encodingPver is the protocol version passed to the wire var-length
	// primitives. The format does not vary with it.
	encodingPver = 0
	maxTapLeaves = 1024
)

var (
	// ErrUnsupportedVersion ...
	ErrUnsupportedVersion = errors.New("unsupported serialization version")
	// ErrTrailingBytes ...
	ErrTrailingBytes = errors.New("trailing bytes after serialized payload")
)

// MarshalProof serializes a commitment proof.
func MarshalProof(proof *dbc.Proof) ([]byte, error) {
	buf := &bytes.Buffer{}
	if err := writeProof(buf, proof); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalProof decodes a commitment proof, rejecting trailing bytes.
func UnmarshalProof(data []byte) (*dbc.Proof, error) {
	r := bytes.NewReader(data)
	proof, err := readProof(r)
	if err != nil {
		return nil, err
	}
	if r.Len() > 0 {
		return nil, ErrTrailingBytes
	}
	return proof, nil
}

// MarshalSealDefinition serializes a seal definition.
func MarshalSealDefinition(def seals.SealDefinition) ([]byte, error) {
	buf := &bytes.Buffer{}
	buf.WriteByte(Version)
	if err := writeOutpoint(buf, def.Outpoint); err != nil {
		return nil, err
	}
	buf.WriteByte(byte(def.Method))
	buf.Write(def.Tag.Bytes())
	return buf.Bytes(), nil
}

// UnmarshalSealDefinition decodes a seal definition, rejecting trailing
// bytes.
func UnmarshalSealDefinition(data []byte) (seals.SealDefinition, error) {
	var def seals.SealDefinition

	r := bytes.NewReader(data)
	if err := readVersion(r); err != nil {
		return def, err
	}
	outpoint, err := readOutpoint(r)
	if err != nil {
		return def, err
	}
	method, err := readByte(r)
	if err != nil {
		return def, err
	}
	tag, err := readTag(r)
	if err != nil {
		return def, err
	}
	if r.Len() > 0 {
		return def, ErrTrailingBytes
	}

	def = seals.NewSealDefinition(
		outpoint, dbc.ScriptEncodeMethod(method), tag,
	)
	if err := def.Method.Validate(); err != nil {
		return seals.SealDefinition{}, err
	}
	return def, nil
}

// MarshalSealProof serializes a seal proof, commitment proof included.
func MarshalSealProof(proof *seals.SealProof) ([]byte, error) {
	if proof == nil {
		return nil, seals.ErrNullProof
	}

	buf := &bytes.Buffer{}
	buf.WriteByte(Version)
	buf.Write(proof.WitnessTxid[:])
	if err := binary.Write(
		buf, binary.LittleEndian, proof.OutputIndex,
	); err != nil {
		return nil, err
	}
	if err := writeProof(buf, proof.Commitment); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalSealProof decodes a seal proof, rejecting trailing bytes.
func UnmarshalSealProof(data []byte) (*seals.SealProof, error) {
	r := bytes.NewReader(data)
	if err := readVersion(r); err != nil {
		return nil, err
	}

	proof := &seals.SealProof{}
	if _, err := io.ReadFull(r, proof.WitnessTxid[:]); err != nil {
		return nil, err
	}
	if err := binary.Read(
		r, binary.LittleEndian, &proof.OutputIndex,
	); err != nil {
		return nil, err
	}
	commitment, err := readProof(r)
	if err != nil {
		return nil, err
	}
	if r.Len() > 0 {
		return nil, ErrTrailingBytes
	}

	proof.Commitment = commitment
	return proof, nil
}

func writeProof(w *bytes.Buffer, proof *dbc.Proof) error {
	if proof == nil {
		return dbc.ErrNullProof
	}
	if proof.Pubkey == nil {
		return dbc.ErrNullPubkey
	}

	w.WriteByte(Version)
	w.Write(proof.Tag.Bytes())
	w.Write(proof.Pubkey.SerializeCompressed())
	w.WriteByte(byte(proof.Source.Kind))

	switch proof.Source.Kind {
	case dbc.SourceSinglePubkey:
		return nil
	case dbc.SourceLockScript:
		return wire.WriteVarBytes(w, encodingPver, proof.Source.LockScript)
	case dbc.SourceTaprootKeyTweak:
		w.Write(proof.Source.TaprootRoot[:])
		return nil
	case dbc.SourceTapTree:
		if err := wire.WriteVarInt(
			w, encodingPver, uint64(len(proof.Source.TapLeaves)),
		); err != nil {
			return err
		}
		for _, leaf := range proof.Source.TapLeaves {
			if err := wire.WriteVarBytes(w, encodingPver, leaf); err != nil {
				return err
			}
		}
		return nil
	default:
		return dbc.ErrInvalidProofStructure
	}
}

func readProof(r *bytes.Reader) (*dbc.Proof, error) {
	if err := readVersion(r); err != nil {
		return nil, err
	}

	tag, err := readTag(r)
	if err != nil {
		return nil, err
	}

	keyBytes := make([]byte, compressedKeyLen)
	if _, err := io.ReadFull(r, keyBytes); err != nil {
		return nil, err
	}
	pubkey, err := btcec.ParsePubKey(keyBytes)
	if err != nil {
		return nil, err
	}

	kind, err := readByte(r)
	if err != nil {
		return nil, err
	}

	source := dbc.ScriptSource{Kind: dbc.ScriptSourceKind(kind)}
	switch source.Kind {
	case dbc.SourceSinglePubkey:
	case dbc.SourceLockScript:
		script, err := wire.ReadVarBytes(
			r, encodingPver, txscript.MaxScriptSize, "lock script",
		)
		if err != nil {
			return nil, err
		}
		source.LockScript = script
	case dbc.SourceTaprootKeyTweak:
		if _, err := io.ReadFull(r, source.TaprootRoot[:]); err != nil {
			return nil, err
		}
	case dbc.SourceTapTree:
		count, err := wire.ReadVarInt(r, encodingPver)
		if err != nil {
			return nil, err
		}
		if count == 0 || count > maxTapLeaves {
			return nil, fmt.Errorf(
				"%w: invalid tapscript leaf count %d",
				dbc.ErrInvalidProofStructure, count,
			)
		}
		leaves := make([][]byte, 0, count)
		for i := uint64(0); i < count; i++ {
			leaf, err := wire.ReadVarBytes(
				r, encodingPver, txscript.MaxScriptSize, "tapscript leaf",
			)
			if err != nil {
				return nil, err
			}
			leaves = append(leaves, leaf)
		}
		source.TapLeaves = leaves
	default:
		return nil, dbc.ErrInvalidProofStructure
	}

	return &dbc.Proof{Pubkey: pubkey, Source: source, Tag: tag}, nil
}

func writeOutpoint(w *bytes.Buffer, outpoint wire.OutPoint) error {
	w.Write(outpoint.Hash[:])
	return binary.Write(w, binary.LittleEndian, outpoint.Index)
}

func readOutpoint(r *bytes.Reader) (wire.OutPoint, error) {
	var outpoint wire.OutPoint
	if _, err := io.ReadFull(r, outpoint.Hash[:]); err != nil {
		return outpoint, err
	}
	if err := binary.Read(
		r, binary.LittleEndian, &outpoint.Index,
	); err != nil {
		return outpoint, err
	}
	return outpoint, nil
}

func readTag(r *bytes.Reader) (taggedhash.ProtocolTag, error) {
	var raw [taggedhash.Size]byte
	if _, err := io.ReadFull(r, raw[:]); err != nil {
		return taggedhash.ProtocolTag{}, err
	}
	return taggedhash.ProtocolTagFromBytes(raw), nil
}

func readVersion(r *bytes.Reader) error {
	version, err := readByte(r)
	if err != nil {
		return err
	}
	if version != Version {
		return fmt.Errorf("%w: %d", ErrUnsupportedVersion, version)
	}
	return nil
}

func readByte(r *bytes.Reader) (byte, error) {
	b, err := r.ReadByte()
	if err != nil {
		return 0, err
	}
	return b, nil
}
