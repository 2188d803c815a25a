package taggedhash

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// Size is the byte length of every digest produced by this package.
const Size = sha256.Size

// lnpbp1Prefix is the single SHA256 hash of the ASCII string "LNPBP1". It
// prefixes the message in the tweaking factor computation so that commitments
// of different standards can never collide.
var lnpbp1Prefix = [Size]byte{
	245, 8, 242, 142, 252, 192, 113, 82, 108, 168, 134, 200, 224, 124, 105,
	212, 149, 78, 46, 201, 252, 82, 171, 140, 204, 209, 41, 17, 12, 0, 64, 175,
}

// ProtocolTag is the hashed form of a protocol-specific domain-separation
// string. Two protocols using different tags can never produce colliding
// commitments for the same message.
type ProtocolTag [Size]byte

// NewProtocolTag returns the tag for the given protocol name as its single
// SHA256 hash.
func NewProtocolTag(name string) ProtocolTag {
	return ProtocolTag(sha256.Sum256([]byte(name)))
}

// ProtocolTagFromBytes returns the tag wrapping the given pre-hashed bytes.
func ProtocolTagFromBytes(raw [Size]byte) ProtocolTag {
	return ProtocolTag(raw)
}

// Bytes returns the tag serialized as a byte slice.
func (t ProtocolTag) Bytes() []byte {
	buf := make([]byte, Size)
	copy(buf, t[:])
	return buf
}

// String returns the tag in hex format.
func (t ProtocolTag) String() string {
	return hex.EncodeToString(t[:])
}

// CommitmentPrefix returns the LNPBP-1 standard prefix placed before any
// protocol tag in the tweaking factor derivation.
func CommitmentPrefix() []byte {
	buf := make([]byte, Size)
	copy(buf, lnpbp1Prefix[:])
	return buf
}

// Hash returns the BIP-340 style tagged hash of the given data, ie.
// sha256(sha256(tag) || sha256(tag) || data).
func Hash(tag string, data []byte) [Size]byte {
	digest := chainhash.TaggedHash([]byte(tag), data)
	return [Size]byte(*digest)
}

// HashParts behaves like Hash but hashes the concatenation of multiple
// chunks without allocating an intermediate buffer.
func HashParts(tag string, parts ...[]byte) [Size]byte {
	digest := chainhash.TaggedHash([]byte(tag), parts...)
	return [Size]byte(*digest)
}
