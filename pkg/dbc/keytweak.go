package dbc

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"sort"

	"github.com/bitseal-network/seald/pkg/taggedhash"
	"github.com/btcsuite/btcd/btcec/v2"
)

// Keyset is a deterministically ordered set of public keys taking part in a
// key tweaking procedure. Keys are kept sorted by their compressed
// serialization and deduplicated, so that committer and verifier derive the
// same key sum without any side-channel coordination.
type Keyset struct {
	keys []*btcec.PublicKey
}

// NewKeyset returns a Keyset holding the given public keys in canonical
// order.
func NewKeyset(pubkeys ...*btcec.PublicKey) (*Keyset, error) {
	if len(pubkeys) == 0 {
		return nil, ErrEmptyKeyset
	}

	keys := make([]*btcec.PublicKey, 0, len(pubkeys))
	seen := make(map[string]struct{}, len(pubkeys))
	for _, pubkey := range pubkeys {
		if pubkey == nil {
			return nil, ErrNullPubkey
		}
		id := string(pubkey.SerializeCompressed())
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		keys = append(keys, pubkey)
	}

	sort.Slice(keys, func(i, j int) bool {
		return bytes.Compare(
			keys[i].SerializeCompressed(), keys[j].SerializeCompressed(),
		) < 0
	})

	return &Keyset{keys: keys}, nil
}

// Keys returns the member keys in canonical order.
func (ks *Keyset) Keys() []*btcec.PublicKey {
	keys := make([]*btcec.PublicKey, len(ks.keys))
	copy(keys, ks.keys)
	return keys
}

// Size returns the number of member keys.
func (ks *Keyset) Size() int {
	return len(ks.keys)
}

// Contains returns whether the given key is a member of the set.
func (ks *Keyset) Contains(pubkey *btcec.PublicKey) bool {
	target := pubkey.SerializeCompressed()
	for _, key := range ks.keys {
		if bytes.Equal(key.SerializeCompressed(), target) {
			return true
		}
	}
	return false
}

// sum returns the elliptic curve sum of all member keys.
func (ks *Keyset) sum() (*btcec.PublicKey, error) {
	var acc btcec.JacobianPoint
	ks.keys[0].AsJacobian(&acc)

	for _, key := range ks.keys[1:] {
		var point, result btcec.JacobianPoint
		key.AsJacobian(&point)
		btcec.AddNonConst(&acc, &point, &result)
		if result.Z.IsZero() {
			return nil, ErrSumInfiniteResult
		}
		acc = result
	}

	acc.ToAffine()
	return btcec.NewPublicKey(&acc.X, &acc.Y), nil
}

// TweakingFactor computes the scalar committing the given keyset to a
// message under a protocol tag:
//
//	HMAC-SHA256(
//	    key  = serialized sum of all keyset public keys,
//	    data = SHA256("LNPBP1") || tag || SHA256(message),
//	)
//
// The commitment binds the whole keyset, not only the tweaked key, so
// multisig outputs stay verifiable with any of their keys as target.
func (ks *Keyset) TweakingFactor(
	tag taggedhash.ProtocolTag, message []byte,
) (*btcec.ModNScalar, error) {
	keySum, err := ks.sum()
	if err != nil {
		return nil, err
	}

	msgDigest := sha256.Sum256(message)

	mac := hmac.New(sha256.New, keySum.SerializeCompressed())
	mac.Write(taggedhash.CommitmentPrefix())
	mac.Write(tag.Bytes())
	mac.Write(msgDigest[:])
	factor := mac.Sum(nil)

	scalar := new(btcec.ModNScalar)
	if overflow := scalar.SetByteSlice(factor); overflow {
		return nil, ErrDegenerateTweak
	}
	if scalar.IsZero() {
		return nil, ErrDegenerateTweak
	}
	return scalar, nil
}

// Commit tweaks the target key, which must be a member of the keyset, by the
// keyset's tweaking factor for the given tag and message. It returns the
// tweaked public key, ie. target + factor*G.
func (ks *Keyset) Commit(
	target *btcec.PublicKey, tag taggedhash.ProtocolTag, message []byte,
) (*btcec.PublicKey, error) {
	if target == nil {
		return nil, ErrNullPubkey
	}
	if !ks.Contains(target) {
		return nil, ErrNotKeysetMember
	}

	factor, err := ks.TweakingFactor(tag, message)
	if err != nil {
		return nil, err
	}

	return tweakAdd(target, factor)
}

// Verify checks that the tweaked key is the keyset's commitment to the given
// message with the given member key as target. Comparison is byte-exact on
// the compressed serialization.
func (ks *Keyset) Verify(
	tweaked, target *btcec.PublicKey,
	tag taggedhash.ProtocolTag, message []byte,
) bool {
	expected, err := ks.Commit(target, tag, message)
	if err != nil {
		return false
	}
	return bytes.Equal(
		expected.SerializeCompressed(), tweaked.SerializeCompressed(),
	)
}

// tweakAdd returns pubkey + factor*G, failing with ErrDegenerateTweak if the
// result is the point at infinity.
func tweakAdd(
	pubkey *btcec.PublicKey, factor *btcec.ModNScalar,
) (*btcec.PublicKey, error) {
	var factorPoint, keyPoint, result btcec.JacobianPoint
	btcec.ScalarBaseMultNonConst(factor, &factorPoint)
	pubkey.AsJacobian(&keyPoint)
	btcec.AddNonConst(&factorPoint, &keyPoint, &result)
	if result.Z.IsZero() {
		return nil, ErrDegenerateTweak
	}

	result.ToAffine()
	return btcec.NewPublicKey(&result.X, &result.Y), nil
}
