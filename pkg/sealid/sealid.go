// Package sealid implements a human-readable bech32 encoding of seal
// outpoints, used anywhere an outpoint crosses a UI or log boundary. The
// encoding is presentational, protocol operations always work on the raw
// outpoint.
package sealid

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcutil/bech32"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
)

// Hrp is the human-readable prefix of every encoded seal outpoint.
const Hrp = "txo"

// payload is the raw txid followed by the big-endian output index.
const payloadLen = chainhash.HashSize + 4

// ErrInvalidSealID ...
var ErrInvalidSealID = errors.New("invalid seal outpoint identifier")

// Encode returns the bech32 form of the outpoint, eg. "txo1...".
func Encode(outpoint wire.OutPoint) (string, error) {
	payload := make([]byte, payloadLen)
	copy(payload, outpoint.Hash[:])
	binary.BigEndian.PutUint32(payload[chainhash.HashSize:], outpoint.Index)

	grouped, err := bech32.ConvertBits(payload, 8, 5, true)
	if err != nil {
		return "", err
	}
	return bech32.Encode(Hrp, grouped)
}

// Decode parses a bech32 seal outpoint identifier back to the outpoint.
func Decode(id string) (wire.OutPoint, error) {
	var outpoint wire.OutPoint

	hrp, grouped, err := bech32.Decode(id)
	if err != nil {
		return outpoint, fmt.Errorf("%w: %v", ErrInvalidSealID, err)
	}
	if hrp != Hrp {
		return outpoint, fmt.Errorf(
			"%w: unexpected prefix %q", ErrInvalidSealID, hrp,
		)
	}

	payload, err := bech32.ConvertBits(grouped, 5, 8, false)
	if err != nil {
		return outpoint, fmt.Errorf("%w: %v", ErrInvalidSealID, err)
	}
	if len(payload) != payloadLen {
		return outpoint, fmt.Errorf(
			"%w: unexpected payload length %d", ErrInvalidSealID, len(payload),
		)
	}

	copy(outpoint.Hash[:], payload[:chainhash.HashSize])
	outpoint.Index = binary.BigEndian.Uint32(payload[chainhash.HashSize:])
	return outpoint, nil
}
