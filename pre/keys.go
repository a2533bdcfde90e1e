package pre

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/drand/kyber"

	"github.com/drand/pre/common/key"
	"github.com/drand/pre/crypto"
	"github.com/drand/pre/entropy"
)

// Family tells in which group a public key lives. Delegators are keyed in G1,
// delegatees in G2.
type Family int

const (
	G1 Family = iota + 1
	G2
)

func (f Family) String() string {
	switch f {
	case G1:
		return "G1"
	case G2:
		return "G2"
	default:
		return fmt.Sprintf("Family(%d)", int(f))
	}
}

// ParseFamily parses "G1" or "G2", case insensitive.
func ParseFamily(s string) (Family, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "G1":
		return G1, nil
	case "G2":
		return G2, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownFamily, s)
	}
}

func (f Family) group(sch *crypto.Scheme) (kyber.Group, error) {
	switch f {
	case G1:
		return sch.G1, nil
	case G2:
		return sch.G2, nil
	default:
		return nil, ErrUnknownFamily
	}
}

// KeyPair is a secret scalar and the matching public key generator^Secret.
type KeyPair struct {
	Family Family
	Secret kyber.Scalar
	Public kyber.Point
}

// GenerateKeyPair draws a fresh non-zero secret and computes the public key
// from the generator of the given family. The secret is picked from
// crypto/rand, mixed with source when it is not nil.
func GenerateKeyPair(params *Params, f Family, source io.Reader) (*KeyPair, error) {
	gen, err := params.Generator(f)
	if err != nil {
		return nil, err
	}
	group, err := f.group(params.Scheme)
	if err != nil {
		return nil, err
	}
	secret := params.Scheme.Scalar().Pick(entropy.Stream(source))
	if secret.Equal(params.Scheme.Scalar().Zero()) {
		return nil, &InvalidScalarError{Reason: "randomness source returned a zero scalar"}
	}
	return &KeyPair{
		Family: f,
		Secret: secret,
		Public: group.Point().Mul(secret, gen),
	}, nil
}

// KeyGenInG1 generates a delegator key pair.
func KeyGenInG1(params *Params, source io.Reader) (*KeyPair, error) {
	return GenerateKeyPair(params, G1, source)
}

// KeyGenInG2 generates a delegatee key pair.
func KeyGenInG2(params *Params, source io.Reader) (*KeyPair, error) {
	return GenerateKeyPair(params, G2, source)
}

// DerivePublicKey computes generator^sk where the generator belongs to the
// group of the given family.
func DerivePublicKey(sk ScalarInput, generator PointInput, f Family, sch *crypto.Scheme) (kyber.Point, error) {
	sch, err := schemeOrDefault(sch)
	if err != nil {
		return nil, err
	}
	group, err := f.group(sch)
	if err != nil {
		return nil, err
	}
	s, err := decodeSecret(sk, sch)
	if err != nil {
		return nil, err
	}
	gen, err := decodePoint(generator, group)
	if err != nil {
		return nil, err
	}
	return group.Point().Mul(s, gen), nil
}

// KeyPairFromSecret rebuilds the key pair of a known secret.
func KeyPairFromSecret(params *Params, f Family, sk ScalarInput) (*KeyPair, error) {
	gen, err := params.Generator(f)
	if err != nil {
		return nil, err
	}
	s, err := decodeSecret(sk, params.Scheme)
	if err != nil {
		return nil, err
	}
	pub, err := DerivePublicKey(ScalarValue(s), PointValue(gen), f, params.Scheme)
	if err != nil {
		return nil, err
	}
	return &KeyPair{Family: f, Secret: s, Public: pub}, nil
}

// Validate checks that the public key is the generator raised to the secret.
func (kp *KeyPair) Validate(params *Params) error {
	gen, err := params.Generator(kp.Family)
	if err != nil {
		return err
	}
	pub, err := DerivePublicKey(ScalarValue(kp.Secret), PointValue(gen), kp.Family, params.Scheme)
	if err != nil {
		return err
	}
	if !pub.Equal(kp.Public) {
		return ErrInvalidKeyPair
	}
	return nil
}

// RandomScalar returns a random non-zero element of Fr, such as a plaintext
// used as a symmetric key.
func RandomScalar(sch *crypto.Scheme, source io.Reader) kyber.Scalar {
	stream := entropy.Stream(source)
	zero := sch.Scalar().Zero()
	for {
		s := sch.Scalar().Pick(stream)
		if !s.Equal(zero) {
			return s
		}
	}
}

// KeyPairTOML is the TOML-able version of a key pair
type KeyPairTOML struct {
	Family string
	Secret string
	Public string
}

// PublicTOML is the TOML-able version of a public key, the part of a key pair
// that is handed to the other parties.
type PublicTOML struct {
	Family string
	Key    string
}

// TOML returns a struct that can be marshalled using a TOML-encoding library
func (kp *KeyPair) TOML() interface{} {
	return &KeyPairTOML{
		Family: kp.Family.String(),
		Secret: key.ScalarToString(kp.Secret),
		Public: key.PointToString(kp.Public),
	}
}

// PublicTOML returns the TOML-able version of the public key only
func (kp *KeyPair) PublicTOML() *PublicTOML {
	return &PublicTOML{
		Family: kp.Family.String(),
		Key:    key.PointToString(kp.Public),
	}
}

// TOMLValue returns an empty TOML-compatible interface value
func (kp *KeyPair) TOMLValue() interface{} {
	return &KeyPairTOML{}
}

// FromTOML constructs the key pair from an unmarshalled structure from TOML
func (kp *KeyPair) FromTOML(sch *crypto.Scheme, i interface{}) error {
	ktoml, ok := i.(*KeyPairTOML)
	if !ok {
		return errors.New("key pair can't decode toml from non KeyPairTOML struct")
	}
	f, err := ParseFamily(ktoml.Family)
	if err != nil {
		return err
	}
	group, err := f.group(sch)
	if err != nil {
		return err
	}
	secret, err := decodeSecret(ScalarHex(ktoml.Secret), sch)
	if err != nil {
		return err
	}
	public, err := decodePoint(PointHex(ktoml.Public), group)
	if err != nil {
		return err
	}
	kp.Family = f
	kp.Secret = secret
	kp.Public = public
	return nil
}

// PublicFromTOML decodes a public key and its family
func PublicFromTOML(sch *crypto.Scheme, ptoml *PublicTOML) (Family, kyber.Point, error) {
	f, err := ParseFamily(ptoml.Family)
	if err != nil {
		return 0, nil, err
	}
	group, err := f.group(sch)
	if err != nil {
		return 0, nil, err
	}
	p, err := decodePoint(PointHex(ptoml.Key), group)
	if err != nil {
		return 0, nil, err
	}
	return f, p, nil
}
