package pre

import (
	"reflect"

	"github.com/drand/kyber"

	"github.com/drand/pre/common/key"
	"github.com/drand/pre/crypto"
)

// ScalarInput is an element of Fr given either in its canonical serialized
// form (ScalarHex, ScalarBytes) or as a native value (ScalarValue). Every
// operation resolves its inputs once, before doing any group operation.
type ScalarInput interface {
	scalar(sch *crypto.Scheme) (kyber.Scalar, error)
}

// ScalarHex is the hex encoding of a scalar, as produced by key.ScalarToString.
type ScalarHex string

func (s ScalarHex) scalar(sch *crypto.Scheme) (kyber.Scalar, error) {
	v, err := key.StringToScalar(sch.G1, string(s))
	if err != nil {
		return nil, &DeserializationError{Kind: "scalar", Err: err}
	}
	return v, nil
}

// ScalarBytes is the binary encoding of a scalar.
type ScalarBytes []byte

func (s ScalarBytes) scalar(sch *crypto.Scheme) (kyber.Scalar, error) {
	v, err := key.BytesToScalar(sch.G1, s)
	if err != nil {
		return nil, &DeserializationError{Kind: "scalar", Err: err}
	}
	return v, nil
}

type scalarValue struct {
	v kyber.Scalar
}

// ScalarValue wraps an already decoded scalar.
func ScalarValue(s kyber.Scalar) ScalarInput {
	return scalarValue{s}
}

func (s scalarValue) scalar(*crypto.Scheme) (kyber.Scalar, error) {
	if s.v == nil {
		return nil, ErrNilInput
	}
	return s.v, nil
}

// PointInput is a group element given either in its canonical serialized form
// (PointHex, PointBytes) or as a native value (PointValue). The group it must
// belong to is decided by the operation consuming it.
type PointInput interface {
	point(g kyber.Group) (kyber.Point, error)
}

// PointHex is the hex encoding of a point, as produced by key.PointToString.
type PointHex string

func (p PointHex) point(g kyber.Group) (kyber.Point, error) {
	v, err := key.StringToPoint(g, string(p))
	if err != nil {
		return nil, &DeserializationError{Kind: g.String() + " point", Err: err}
	}
	return v, nil
}

// PointBytes is the binary encoding of a point.
type PointBytes []byte

func (p PointBytes) point(g kyber.Group) (kyber.Point, error) {
	v, err := key.BytesToPoint(g, p)
	if err != nil {
		return nil, &DeserializationError{Kind: g.String() + " point", Err: err}
	}
	return v, nil
}

type pointValue struct {
	v kyber.Point
}

// PointValue wraps an already decoded point.
func PointValue(p kyber.Point) PointInput {
	return pointValue{p}
}

func (p pointValue) point(g kyber.Group) (kyber.Point, error) {
	if p.v == nil {
		return nil, ErrNilInput
	}
	if reflect.TypeOf(p.v) != reflect.TypeOf(g.Point()) {
		return nil, ErrFamilyMismatch
	}
	return p.v, nil
}

func decodeScalar(in ScalarInput, sch *crypto.Scheme) (kyber.Scalar, error) {
	if in == nil {
		return nil, ErrNilInput
	}
	return in.scalar(sch)
}

// decodeSecret resolves a secret key and rejects the zero scalar, which has no
// inverse and would expose the plaintext or the other party's key.
func decodeSecret(in ScalarInput, sch *crypto.Scheme) (kyber.Scalar, error) {
	s, err := decodeScalar(in, sch)
	if err != nil {
		return nil, &InvalidScalarError{Reason: "cannot decode", Err: err}
	}
	if s.Equal(sch.Scalar().Zero()) {
		return nil, &InvalidScalarError{Reason: "zero scalar"}
	}
	return s, nil
}

func decodePoint(in PointInput, g kyber.Group) (kyber.Point, error) {
	if in == nil {
		return nil, ErrNilInput
	}
	return in.point(g)
}
