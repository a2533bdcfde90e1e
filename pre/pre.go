package pre

import (
	"crypto/cipher"

	"github.com/drand/kyber"
	"github.com/drand/kyber/util/random"

	"github.com/drand/pre/crypto"
)

// Encrypt encrypts the plaintext under the delegator public key pk (in G1).
// Two encryptions of the same plaintext differ since a fresh ephemeral scalar
// is drawn each time.
func Encrypt(plain ScalarInput, pk PointInput, params *Params) (*Ciphertext, error) {
	return encrypt(plain, pk, params, random.New())
}

func encrypt(plain ScalarInput, pk PointInput, params *Params, stream cipher.Stream) (*Ciphertext, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	sch := params.Scheme
	m, err := decodeScalar(plain, sch)
	if err != nil {
		return nil, err
	}
	pkp, err := decodePoint(pk, sch.G1)
	if err != nil {
		return nil, err
	}

	k := sch.Scalar().Pick(stream)
	c1 := sch.G1.Point().Mul(k, pkp)
	// Z^k, with Z = e(g,h)
	zk := sch.GT.Point().Mul(k, params.z)
	mask, err := sch.HashToScalar(zk)
	if err != nil {
		return nil, err
	}
	return &Ciphertext{
		C1: c1,
		C2: sch.Scalar().Add(m, mask),
	}, nil
}

// Decrypt opens a first level ciphertext with the delegator secret key. A
// wrong key yields a wrong plaintext, not an error.
func Decrypt(ct CiphertextInput, sk ScalarInput, params *Params) (kyber.Scalar, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	sch := params.Scheme
	c, err := decodeCiphertext(ct, sch)
	if err != nil {
		return nil, err
	}
	a, err := decodeSecret(sk, sch)
	if err != nil {
		return nil, err
	}

	// e(g^(a*k), h)^(1/a) = e(g,h)^k
	eah := sch.Pair(c.C1, params.H)
	zk := sch.GT.Point().Mul(sch.Scalar().Inv(a), eah)
	return unmask(sch, c.C2, zk)
}

// ReKeyGen derives the re-encryption key pkB^(1/skA) allowing a proxy to
// transform the ciphertexts of the delegator skA into ciphertexts for the
// delegatee pkB (in G2). The key can be handed to an untrusted proxy.
func ReKeyGen(skA ScalarInput, pkB PointInput, sch *crypto.Scheme) (kyber.Point, error) {
	sch, err := schemeOrDefault(sch)
	if err != nil {
		return nil, err
	}
	a, err := decodeSecret(skA, sch)
	if err != nil {
		return nil, err
	}
	pb, err := decodePoint(pkB, sch.G2)
	if err != nil {
		return nil, err
	}
	return sch.G2.Point().Mul(sch.Scalar().Inv(a), pb), nil
}

// ReEncrypt is run by the proxy: it returns (e(C1, rk), C2). It needs no
// secret and learns nothing about the plaintext.
func ReEncrypt(ct CiphertextInput, rk PointInput, sch *crypto.Scheme) (*ReEncryptedCiphertext, error) {
	sch, err := schemeOrDefault(sch)
	if err != nil {
		return nil, err
	}
	rkp, err := decodePoint(rk, sch.G2)
	if err != nil {
		return nil, err
	}
	return reEncrypt(ct, rkp, sch)
}

func reEncrypt(ct CiphertextInput, rk kyber.Point, sch *crypto.Scheme) (*ReEncryptedCiphertext, error) {
	c, err := decodeCiphertext(ct, sch)
	if err != nil {
		return nil, err
	}
	return &ReEncryptedCiphertext{
		C1: sch.Pair(c.C1, rk),
		C2: c.C2.Clone(),
	}, nil
}

// ReDecrypt opens a re-encrypted ciphertext with the delegatee secret key.
// As with Decrypt, a wrong key yields a wrong plaintext.
func ReDecrypt(ct ReEncryptedInput, skB ScalarInput, sch *crypto.Scheme) (kyber.Scalar, error) {
	sch, err := schemeOrDefault(sch)
	if err != nil {
		return nil, err
	}
	if ct == nil {
		return nil, ErrNilInput
	}
	c, err := ct.reEncrypted(sch)
	if err != nil {
		return nil, err
	}
	b, err := decodeSecret(skB, sch)
	if err != nil {
		return nil, err
	}

	// e(g,h)^(b*k*(1/b)) = e(g,h)^k
	zk := sch.GT.Point().Mul(sch.Scalar().Inv(b), c.C1)
	return unmask(sch, c.C2, zk)
}

func unmask(sch *crypto.Scheme, c2 kyber.Scalar, zk kyber.Point) (kyber.Scalar, error) {
	mask, err := sch.HashToScalar(zk)
	if err != nil {
		return nil, err
	}
	return sch.Scalar().Sub(c2, mask), nil
}

func decodeCiphertext(ct CiphertextInput, sch *crypto.Scheme) (*Ciphertext, error) {
	if ct == nil {
		return nil, ErrNilInput
	}
	return ct.ciphertext(sch)
}
