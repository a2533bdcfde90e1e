package pre

import (
	"github.com/drand/kyber"

	"github.com/drand/pre/crypto"
)

// Sign returns H(digest)^sk in G2. The signing key is conventionally the
// delegator encryption key; signing is deterministic.
func Sign(digest []byte, sk ScalarInput, sch *crypto.Scheme) (kyber.Point, error) {
	sch, err := schemeOrDefault(sch)
	if err != nil {
		return nil, err
	}
	s, err := decodeSecret(sk, sch)
	if err != nil {
		return nil, err
	}
	hm, err := sch.HashToG2(digest)
	if err != nil {
		return nil, err
	}
	return sch.G2.Point().Mul(s, hm), nil
}

// Verify reports whether sig is a signature of digest under the G1 public key
// pk, i.e. e(g, sig) == e(pk, H(digest)). A valid signature from another key or
// on another digest returns false and no error; only malformed inputs return
// an error.
func Verify(digest []byte, sig, pk PointInput, params *Params) (bool, error) {
	if err := params.Validate(); err != nil {
		return false, err
	}
	sch := params.Scheme
	sp, err := decodePoint(sig, sch.G2)
	if err != nil {
		return false, err
	}
	pkp, err := decodePoint(pk, sch.G1)
	if err != nil {
		return false, err
	}
	hm, err := sch.HashToG2(digest)
	if err != nil {
		return false, err
	}
	left := sch.Pair(params.G, sp)
	right := sch.Pair(pkp, hm)
	return left.Equal(right), nil
}
