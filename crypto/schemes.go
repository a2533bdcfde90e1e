package crypto

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"hash"
	"os"

	"github.com/drand/kyber"
	bls "github.com/drand/kyber-bls12381"
	"github.com/drand/kyber/pairing"
	"github.com/drand/kyber/xof/blake2xb"
	bls12381 "github.com/kilic/bls12-381"
)

// Hash to curve tags of the RFC 9380 ciphersuites for BLS12-381.
var (
	G1Domain = []byte("BLS_SIG_BLS12381G1_XMD:SHA-256_SSWU_RO_NUL_")
	G2Domain = []byte("BLS_SIG_BLS12381G2_XMD:SHA-256_SSWU_RO_NUL_")
)

// Scheme represents the pairing setting the proxy re-encryption scheme runs on.
// The delegator keys and the first level ciphertexts live in G1, the delegatee
// keys, re-encryption keys and signatures live in G2 and re-encrypted
// ciphertexts live in GT.
//
// Note: Scheme is not meant to be marshaled directly. Instead use the SchemeFromName
type Scheme struct {
	// The name of the scheme
	Name string
	// Pairing is the bilinear map e: G1 x G2 -> GT
	Pairing pairing.Suite
	// G1 is the group holding the delegator keys
	G1 kyber.Group
	// G2 is the group holding the delegatee keys and the signatures
	G2 kyber.Group
	// GT is the target group of the pairing
	GT kyber.Group
	// G1Domain and G2Domain are the hash to curve tags of each group, they
	// must differ
	G1Domain []byte `toml:"-"`
	G2Domain []byte `toml:"-"`
	// MaskDomain separates the hash of GT elements into Fr from any other use
	// of the XOF
	MaskDomain []byte `toml:"-"`
	// DigestFunc is the hash function used to produce the message digests
	// that get signed
	DigestFunc func() hash.Hash `toml:"-"`
}

// DefaultSchemeID is the default scheme ID.
const DefaultSchemeID = "bls12-381"

// NewBLS12381Scheme instantiates the scheme of type "bls12-381". G1 points are
// 48 bytes, G2 points 96 bytes, GT elements 576 bytes and scalars 32 bytes.
func NewBLS12381Scheme() *Scheme {
	var Pairing = bls.NewBLS12381Suite()
	return &Scheme{
		Name:       DefaultSchemeID,
		Pairing:    Pairing,
		G1:         Pairing.G1(),
		G2:         Pairing.G2(),
		GT:         Pairing.GT(),
		G1Domain:   G1Domain,
		G2Domain:   G2Domain,
		MaskDomain: []byte("PRE_BLS12381_GT_TO_FR_"),
		DigestFunc: sha256.New,
	}
}

func (s *Scheme) String() string {
	if s != nil {
		return s.Name
	}
	return ""
}

// Scalar returns a new zero scalar of Fr.
func (s *Scheme) Scalar() kyber.Scalar {
	return s.G1.Scalar()
}

// Pair computes e(p1, p2) with p1 in G1 and p2 in G2.
func (s *Scheme) Pair(p1, p2 kyber.Point) kyber.Point {
	return s.Pairing.Pair(p1, p2)
}

// HashToG1 maps msg onto a point of G1 under the G1Domain tag.
func (s *Scheme) HashToG1(msg []byte) (kyber.Point, error) {
	g1 := bls12381.NewG1()
	p, err := g1.HashToCurve(msg, s.G1Domain)
	if err != nil {
		return nil, fmt.Errorf("hash to G1: %w", err)
	}
	return unmarshalPoint(s.G1, g1.ToCompressed(p))
}

// HashToG2 maps msg onto a point of G2 under the G2Domain tag.
func (s *Scheme) HashToG2(msg []byte) (kyber.Point, error) {
	g2 := bls12381.NewG2()
	p, err := g2.HashToCurve(msg, s.G2Domain)
	if err != nil {
		return nil, fmt.Errorf("hash to G2: %w", err)
	}
	return unmarshalPoint(s.G2, g2.ToCompressed(p))
}

func unmarshalPoint(g kyber.Group, buff []byte) (kyber.Point, error) {
	p := g.Point()
	if err := p.UnmarshalBinary(buff); err != nil {
		return nil, fmt.Errorf("decoding hashed %s point: %w", g, err)
	}
	return p, nil
}

// HashToScalar maps an element of GT to a uniformly distributed scalar of Fr.
// The canonical encoding of the element, prefixed with the MaskDomain, seeds a
// blake2xb XOF from which the scalar is sampled.
func (s *Scheme) HashToScalar(gt kyber.Point) (kyber.Scalar, error) {
	buff, err := gt.MarshalBinary()
	if err != nil {
		return nil, err
	}
	if len(buff) == 0 {
		return nil, errors.New("empty GT encoding")
	}
	seed := make([]byte, 0, len(s.MaskDomain)+len(buff))
	seed = append(seed, s.MaskDomain...)
	seed = append(seed, buff...)
	return s.Scalar().Pick(blake2xb.New(seed)), nil
}

// Digest returns the digest of msg as it is conventionally signed.
func (s *Scheme) Digest(msg []byte) []byte {
	h := s.DigestFunc()
	_, _ = h.Write(msg)
	return h.Sum(nil)
}

func SchemeFromName(schemeName string) (*Scheme, error) {
	switch schemeName {
	case DefaultSchemeID:
		return NewBLS12381Scheme(), nil
	default:
		return nil, fmt.Errorf("invalid scheme name '%s'", schemeName)
	}
}

var schemeIDs = []string{DefaultSchemeID}

// ListSchemes will return a slice of valid scheme ids
func ListSchemes() []string {
	return schemeIDs
}

// GetSchemeByIDWithDefault allows the user to retrieve the scheme configuration looking by its ID. If the received
// ID is an empty string, it will return the default defined scheme
func GetSchemeByIDWithDefault(id string) (*Scheme, error) {
	if id == "" {
		id = DefaultSchemeID
	}

	return SchemeFromName(id)
}

// SchemeEnvVar is the environment variable read by GetSchemeFromEnv.
const SchemeEnvVar = "PRE_SCHEME_ID"

// GetSchemeFromEnv allows the user to retrieve the scheme configuration looking by the ID set on an
// environmental variable.
func GetSchemeFromEnv() (*Scheme, error) {
	id := os.Getenv(SchemeEnvVar)

	return GetSchemeByIDWithDefault(id)
}
