package key

import (
	"encoding/hex"

	"github.com/drand/kyber"
)

// PointToString returns a hex-encoded string representation of the given point.
func PointToString(p kyber.Point) string {
	buff, _ := p.MarshalBinary()
	return hex.EncodeToString(buff)
}

// ScalarToString returns a hex-encoded string representation of the given scalar.
func ScalarToString(s kyber.Scalar) string {
	buff, _ := s.MarshalBinary()
	return hex.EncodeToString(buff)
}

// StringToPoint unmarshals a point in the given group from the given string.
func StringToPoint(g kyber.Group, s string) (kyber.Point, error) {
	buff, err := hex.DecodeString(s)
	if err != nil {
		return nil, err
	}
	return BytesToPoint(g, buff)
}

// StringToScalar unmarshals a scalar in the given group from the given string.
func StringToScalar(g kyber.Group, s string) (kyber.Scalar, error) {
	buff, err := hex.DecodeString(s)
	if err != nil {
		return nil, err
	}
	return BytesToScalar(g, buff)
}

// BytesToPoint unmarshals a point in the given group. The buffer must be the
// exact canonical encoding of the point.
func BytesToPoint(g kyber.Group, buff []byte) (kyber.Point, error) {
	p := g.Point()
	if len(buff) != p.MarshalSize() {
		return nil, ErrInvalidLength
	}
	if err := p.UnmarshalBinary(buff); err != nil {
		return nil, err
	}
	return p, nil
}

// BytesToScalar unmarshals a scalar in the given group. The buffer must be the
// exact canonical encoding of the scalar.
func BytesToScalar(g kyber.Group, buff []byte) (kyber.Scalar, error) {
	s := g.Scalar()
	if len(buff) != s.MarshalSize() {
		return nil, ErrInvalidLength
	}
	if err := s.UnmarshalBinary(buff); err != nil {
		return nil, err
	}
	return s, nil
}
