// Package envelope encrypts arbitrary payloads for a delegator so that they
// can later be handed to a delegatee through a proxy. A random scalar is
// encrypted with the proxy re-encryption scheme and the payload itself is
// sealed with AES-GCM under a key derived from that scalar.
package envelope

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"errors"
	"fmt"
	"hash"
	"io"

	"github.com/drand/kyber"
	"golang.org/x/crypto/hkdf"

	"github.com/drand/pre/crypto"
	"github.com/drand/pre/entropy"
	"github.com/drand/pre/pre"
)

// DefaultHash is the hash function used by the key derivation.
var DefaultHash = sha256.New

const (
	keyLength   = 32
	nonceLength = 12
)

var kdfInfo = []byte("pre-envelope-aes256gcm")

// ErrInvalidNonce is returned when an envelope carries a nonce of the wrong
// length.
var ErrInvalidNonce = errors.New("envelope: invalid nonce length")

// Envelope is a payload encrypted for a delegator. The symmetric key is only
// recoverable through the first level ciphertext in Key.
type Envelope struct {
	Key     *pre.EncodedCiphertext `json:"key"`
	Nonce   []byte                 `json:"nonce"`
	Payload []byte                 `json:"payload"`
}

// ReEncrypted is an envelope whose key has been re-encrypted for a delegatee.
// Nonce and Payload are untouched by the proxy.
type ReEncrypted struct {
	Key     *pre.EncodedReEncryptedCiphertext `json:"key"`
	Nonce   []byte                            `json:"nonce"`
	Payload []byte                            `json:"payload"`
}

// Seal draws a random scalar, encrypts it under the delegator public key pk
// and seals msg with AES-GCM under the key derived from the scalar. The C2
// component of the key ciphertext is authenticated as additional data, since
// it survives re-encryption unchanged.
func Seal(params *pre.Params, pk pre.PointInput, msg []byte) (*Envelope, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	m := pre.RandomScalar(params.Scheme, nil)
	ct, err := pre.Encrypt(pre.ScalarValue(m), pk, params)
	if err != nil {
		return nil, err
	}
	encKey, err := ct.Encode()
	if err != nil {
		return nil, err
	}

	nonce, err := entropy.GetRandom(nil, nonceLength)
	if err != nil {
		return nil, err
	}
	aesgcm, err := newAEAD(DefaultHash, m)
	if err != nil {
		return nil, err
	}
	return &Envelope{
		Key:     encKey,
		Nonce:   nonce,
		Payload: aesgcm.Seal(nil, nonce, msg, encKey.C2),
	}, nil
}

// Open recovers the payload with the delegator secret key. Unlike pre.Decrypt,
// a wrong key or a modified envelope results in an error.
func Open(params *pre.Params, sk pre.ScalarInput, env *Envelope) ([]byte, error) {
	if env == nil || env.Key == nil {
		return nil, pre.ErrNilInput
	}
	m, err := pre.Decrypt(env.Key, sk, params)
	if err != nil {
		return nil, err
	}
	return open(m, env.Key.C2, env.Nonce, env.Payload)
}

// ReEncrypt is run by the proxy and transforms the key of the envelope for the
// delegatee designated by rk.
func ReEncrypt(env *Envelope, rk pre.PointInput, sch *crypto.Scheme) (*ReEncrypted, error) {
	if env == nil || env.Key == nil {
		return nil, pre.ErrNilInput
	}
	rct, err := pre.ReEncrypt(env.Key, rk, sch)
	if err != nil {
		return nil, err
	}
	encKey, err := rct.Encode()
	if err != nil {
		return nil, err
	}
	return &ReEncrypted{
		Key:     encKey,
		Nonce:   append([]byte(nil), env.Nonce...),
		Payload: append([]byte(nil), env.Payload...),
	}, nil
}

// OpenReEncrypted recovers the payload with the delegatee secret key.
func OpenReEncrypted(env *ReEncrypted, skB pre.ScalarInput, sch *crypto.Scheme) ([]byte, error) {
	if env == nil || env.Key == nil {
		return nil, pre.ErrNilInput
	}
	m, err := pre.ReDecrypt(env.Key, skB, sch)
	if err != nil {
		return nil, err
	}
	return open(m, env.Key.C2, env.Nonce, env.Payload)
}

func open(m kyber.Scalar, ad, nonce, payload []byte) ([]byte, error) {
	if len(nonce) != nonceLength {
		return nil, ErrInvalidNonce
	}
	aesgcm, err := newAEAD(DefaultHash, m)
	if err != nil {
		return nil, err
	}
	plain, err := aesgcm.Open(nil, nonce, payload, ad)
	if err != nil {
		return nil, fmt.Errorf("envelope: %w", err)
	}
	return plain, nil
}

// newAEAD derives the AES-256 key from the scalar with HKDF.
func newAEAD(fn func() hash.Hash, m kyber.Scalar) (cipher.AEAD, error) {
	secret, err := m.MarshalBinary()
	if err != nil {
		return nil, err
	}
	reader := hkdf.New(fn, secret, nil, kdfInfo)
	key := make([]byte, keyLength)
	if _, err := io.ReadFull(reader, key); err != nil {
		return nil, errors.New("not enough bits from the shared secret")
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
