package pre

import (
	"fmt"

	"github.com/drand/kyber"

	"github.com/drand/pre/crypto"
)

// Ciphertext is a first level ciphertext: C1 = pk^k in G1 and
// C2 = m + H(e(g,h)^k) in Fr. It can be opened by the delegator or
// transformed by a proxy.
type Ciphertext struct {
	C1 kyber.Point
	C2 kyber.Scalar
}

// ReEncryptedCiphertext is a second level ciphertext: C1 = e(C1, rk) in GT and
// the unchanged C2. Only the delegatee can open it.
type ReEncryptedCiphertext struct {
	C1 kyber.Point
	C2 kyber.Scalar
}

// EncodedCiphertext is the serialized form of a Ciphertext. Both components
// are always serialized.
type EncodedCiphertext struct {
	C1 []byte `json:"c1"`
	C2 []byte `json:"c2"`
}

// EncodedReEncryptedCiphertext is the serialized form of a
// ReEncryptedCiphertext.
type EncodedReEncryptedCiphertext struct {
	C1 []byte `json:"c1"`
	C2 []byte `json:"c2"`
}

// CiphertextInput is a first level ciphertext in any of its forms:
// *Ciphertext, *EncodedCiphertext or CiphertextParts.
type CiphertextInput interface {
	ciphertext(sch *crypto.Scheme) (*Ciphertext, error)
}

// ReEncryptedInput is a second level ciphertext in any of its forms:
// *ReEncryptedCiphertext, *EncodedReEncryptedCiphertext or ReEncryptedParts.
type ReEncryptedInput interface {
	reEncrypted(sch *crypto.Scheme) (*ReEncryptedCiphertext, error)
}

// CiphertextParts carries each component of a first level ciphertext in its
// own representation, e.g. two hex strings.
type CiphertextParts struct {
	C1 PointInput
	C2 ScalarInput
}

// ReEncryptedParts carries each component of a second level ciphertext in its
// own representation.
type ReEncryptedParts struct {
	C1 PointInput
	C2 ScalarInput
}

func (c *Ciphertext) ciphertext(sch *crypto.Scheme) (*Ciphertext, error) {
	if c == nil {
		return nil, ErrNilInput
	}
	return CiphertextParts{C1: PointValue(c.C1), C2: ScalarValue(c.C2)}.ciphertext(sch)
}

func (c *EncodedCiphertext) ciphertext(sch *crypto.Scheme) (*Ciphertext, error) {
	if c == nil {
		return nil, ErrNilInput
	}
	return CiphertextParts{C1: PointBytes(c.C1), C2: ScalarBytes(c.C2)}.ciphertext(sch)
}

func (c CiphertextParts) ciphertext(sch *crypto.Scheme) (*Ciphertext, error) {
	c1, err := decodePoint(c.C1, sch.G1)
	if err != nil {
		return nil, fmt.Errorf("ciphertext C1: %w", err)
	}
	c2, err := decodeScalar(c.C2, sch)
	if err != nil {
		return nil, fmt.Errorf("ciphertext C2: %w", err)
	}
	return &Ciphertext{C1: c1, C2: c2}, nil
}

func (c *ReEncryptedCiphertext) reEncrypted(sch *crypto.Scheme) (*ReEncryptedCiphertext, error) {
	if c == nil {
		return nil, ErrNilInput
	}
	return ReEncryptedParts{C1: PointValue(c.C1), C2: ScalarValue(c.C2)}.reEncrypted(sch)
}

func (c *EncodedReEncryptedCiphertext) reEncrypted(sch *crypto.Scheme) (*ReEncryptedCiphertext, error) {
	if c == nil {
		return nil, ErrNilInput
	}
	return ReEncryptedParts{C1: PointBytes(c.C1), C2: ScalarBytes(c.C2)}.reEncrypted(sch)
}

func (c ReEncryptedParts) reEncrypted(sch *crypto.Scheme) (*ReEncryptedCiphertext, error) {
	c1, err := decodePoint(c.C1, sch.GT)
	if err != nil {
		return nil, fmt.Errorf("re-encrypted C1: %w", err)
	}
	c2, err := decodeScalar(c.C2, sch)
	if err != nil {
		return nil, fmt.Errorf("re-encrypted C2: %w", err)
	}
	return &ReEncryptedCiphertext{C1: c1, C2: c2}, nil
}

// Encode serializes both components.
func (c *Ciphertext) Encode() (*EncodedCiphertext, error) {
	c1, c2, err := encodePair(c.C1, c.C2)
	if err != nil {
		return nil, err
	}
	return &EncodedCiphertext{C1: c1, C2: c2}, nil
}

// Encode serializes both components.
func (c *ReEncryptedCiphertext) Encode() (*EncodedReEncryptedCiphertext, error) {
	c1, c2, err := encodePair(c.C1, c.C2)
	if err != nil {
		return nil, err
	}
	return &EncodedReEncryptedCiphertext{C1: c1, C2: c2}, nil
}

func encodePair(p kyber.Point, s kyber.Scalar) ([]byte, []byte, error) {
	pb, err := p.MarshalBinary()
	if err != nil {
		return nil, nil, err
	}
	sb, err := s.MarshalBinary()
	if err != nil {
		return nil, nil, err
	}
	return pb, sb, nil
}

// Equal returns true if both ciphertexts hold the same components.
func (c *Ciphertext) Equal(c2 *Ciphertext) bool {
	return c.C1.Equal(c2.C1) && c.C2.Equal(c2.C2)
}

// Equal returns true if both ciphertexts hold the same components.
func (c *ReEncryptedCiphertext) Equal(c2 *ReEncryptedCiphertext) bool {
	return c.C1.Equal(c2.C1) && c.C2.Equal(c2.C2)
}
