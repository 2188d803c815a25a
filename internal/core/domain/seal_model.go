package domain

import (
	"time"

	"github.com/bitseal-network/seald/pkg/dbc"
	"github.com/bitseal-network/seald/pkg/sealid"
	"github.com/bitseal-network/seald/pkg/seals"
	"github.com/bitseal-network/seald/pkg/taggedhash"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
)

// Seal is the registry entry of a single-use seal tracked by the daemon.
// Outpoint and protocol parameters are stored in their string or raw forms so
// the entry stays serializable with any store encoder.
type Seal struct {
	// ID is the bech32 form of the seal outpoint and the primary key.
	ID     string
	Txid   string
	Vout   uint32
	Method string
	Tag    []byte
	Status int

	// Message and CommitmentProof form the close intent: the sealed message
	// and the serialized commitment proof to evaluate the spending witness
	// against. Empty until the owner registers them.
	Message         []byte
	CommitmentProof []byte

	// WitnessTxid is set once the outpoint is seen spent.
	WitnessTxid string
	// SealProof is the serialized proof of a successfully closed seal.
	SealProof []byte

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewSeal returns the registry entry for a freshly defined seal.
func NewSeal(definition seals.SealDefinition) (*Seal, error) {
	id, err := sealid.Encode(definition.Outpoint)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	return &Seal{
		ID:        id,
		Txid:      definition.Outpoint.Hash.String(),
		Vout:      definition.Outpoint.Index,
		Method:    definition.Method.String(),
		Tag:       definition.Tag.Bytes(),
		Status:    int(seals.StatusDefined),
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Key returns the primary key of the seal.
func (s *Seal) Key() string {
	return s.ID
}

// Outpoint returns the outpoint the seal is defined over.
func (s *Seal) Outpoint() (wire.OutPoint, error) {
	txid, err := chainhash.NewHashFromStr(s.Txid)
	if err != nil {
		return wire.OutPoint{}, err
	}
	return wire.OutPoint{Hash: *txid, Index: s.Vout}, nil
}

// Definition rebuilds the protocol-level seal definition from the entry.
func (s *Seal) Definition() (seals.SealDefinition, error) {
	outpoint, err := s.Outpoint()
	if err != nil {
		return seals.SealDefinition{}, err
	}
	method, err := dbc.ScriptEncodeMethodFromString(s.Method)
	if err != nil {
		return seals.SealDefinition{}, err
	}

	var tag [taggedhash.Size]byte
	copy(tag[:], s.Tag)
	return seals.NewSealDefinition(
		outpoint, method, taggedhash.ProtocolTagFromBytes(tag),
	), nil
}

// SealStatus returns the lifecycle status of the seal.
func (s *Seal) SealStatus() seals.SealStatus {
	return seals.SealStatus(s.Status)
}

// IsFinalized returns whether the seal reached a final status.
func (s *Seal) IsFinalized() bool {
	return s.SealStatus() != seals.StatusDefined
}

// HasCloseIntent returns whether a sealed message and commitment proof have
// been registered for the seal.
func (s *Seal) HasCloseIntent() bool {
	return len(s.Message) > 0 && len(s.CommitmentProof) > 0
}

// RegisterCloseIntent attaches the sealed message and the serialized
// commitment proof the closing witness is expected to carry.
func (s *Seal) RegisterCloseIntent(message, commitmentProof []byte) error {
	if s.IsFinalized() {
		return ErrSealAlreadyFinalized
	}
	s.Message = message
	s.CommitmentProof = commitmentProof
	s.UpdatedAt = time.Now()
	return nil
}

// MarkClosed finalizes the seal as closed over its registered message.
func (s *Seal) MarkClosed(witnessTxid string, sealProof []byte) error {
	if s.IsFinalized() {
		return ErrSealAlreadyFinalized
	}
	s.Status = int(seals.StatusClosed)
	s.WitnessTxid = witnessTxid
	s.SealProof = sealProof
	s.UpdatedAt = time.Now()
	return nil
}

// MarkInvalid finalizes the seal as spent without a valid commitment.
func (s *Seal) MarkInvalid(witnessTxid string) error {
	if s.IsFinalized() {
		return ErrSealAlreadyFinalized
	}
	s.Status = int(seals.StatusInvalid)
	s.WitnessTxid = witnessTxid
	s.UpdatedAt = time.Now()
	return nil
}
