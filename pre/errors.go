package pre

import (
	"errors"
	"fmt"
)

// ErrNilInput is returned when a required input holds no value.
var ErrNilInput = errors.New("pre: nil input")

// ErrFamilyMismatch indicates that a native value belongs to another group
// than the one the operation expects, e.g. a G2 key passed as a delegator key.
var ErrFamilyMismatch = errors.New("pre: value from the wrong group family")

// ErrUnknownFamily is returned for a Family other than G1 or G2.
var ErrUnknownFamily = errors.New("pre: unknown key family")

// ErrInvalidKeyPair indicates that a public key is not generator^secret.
var ErrInvalidKeyPair = errors.New("pre: public key does not match secret key")

// ErrDegenerateGenerator is returned when a generator is the identity element.
var ErrDegenerateGenerator = errors.New("pre: generator is the identity element")

// DeserializationError is returned when a hex string or byte slice is not the
// canonical encoding of the expected scalar or group element.
type DeserializationError struct {
	// Kind names what was being decoded, e.g. "G1 point".
	Kind string
	Err  error
}

func (e *DeserializationError) Error() string {
	return fmt.Sprintf("pre: invalid %s encoding: %v", e.Kind, e.Err)
}

func (e *DeserializationError) Unwrap() error {
	return e.Err
}

// InvalidScalarError is returned when a secret scalar is zero or can not be
// decoded. In the latter case it wraps the DeserializationError.
type InvalidScalarError struct {
	Reason string
	Err    error
}

func (e *InvalidScalarError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("pre: invalid secret scalar: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("pre: invalid secret scalar: %s", e.Reason)
}

func (e *InvalidScalarError) Unwrap() error {
	return e.Err
}
