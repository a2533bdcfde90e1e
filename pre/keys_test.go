package pre

import (
	"bytes"
	"errors"
	"testing"

	"github.com/BurntSushi/toml"
	json "github.com/nikkolasg/hexjson"
	"github.com/stretchr/testify/require"

	"github.com/drand/pre/common/key"
)

func TestKeyPairTOML(t *testing.T) {
	p := newParties(t)
	for _, kp := range []*KeyPair{p.alice, p.bob} {
		ktoml := kp.TOML().(*KeyPairTOML)
		require.Equal(t, kp.Family.String(), ktoml.Family)

		var writer bytes.Buffer
		require.NoError(t, toml.NewEncoder(&writer).Encode(ktoml))

		k2 := new(KeyPair)
		k2toml := k2.TOMLValue()
		_, err := toml.NewDecoder(&writer).Decode(k2toml)
		require.NoError(t, err)
		require.NoError(t, k2.FromTOML(p.params.Scheme, k2toml))

		require.Equal(t, kp.Family, k2.Family)
		require.True(t, kp.Secret.Equal(k2.Secret))
		require.True(t, kp.Public.Equal(k2.Public))
		require.NoError(t, k2.Validate(p.params))
	}
}

func TestKeyPairTOMLRejectsZeroSecret(t *testing.T) {
	p := newParties(t)
	ktoml := p.alice.TOML().(*KeyPairTOML)
	ktoml.Secret = key.ScalarToString(p.params.Scheme.Scalar().Zero())

	var serr *InvalidScalarError
	err := new(KeyPair).FromTOML(p.params.Scheme, ktoml)
	require.True(t, errors.As(err, &serr))

	require.Error(t, new(KeyPair).FromTOML(p.params.Scheme, &PublicTOML{}))
}

func TestPublicTOML(t *testing.T) {
	p := newParties(t)
	ptoml := p.bob.PublicTOML()

	var writer bytes.Buffer
	require.NoError(t, toml.NewEncoder(&writer).Encode(ptoml))
	p2toml := new(PublicTOML)
	_, err := toml.NewDecoder(&writer).Decode(p2toml)
	require.NoError(t, err)

	f, pub, err := PublicFromTOML(p.params.Scheme, p2toml)
	require.NoError(t, err)
	require.Equal(t, G2, f)
	require.True(t, p.bob.Public.Equal(pub))

	// a G2 key announced as G1 does not decode
	p2toml.Family = "G1"
	_, _, err = PublicFromTOML(p.params.Scheme, p2toml)
	var derr *DeserializationError
	require.True(t, errors.As(err, &derr))
}

func TestParamsTOML(t *testing.T) {
	p := newParties(t)
	var writer bytes.Buffer
	require.NoError(t, toml.NewEncoder(&writer).Encode(p.params.TOML()))

	p2 := new(Params)
	p2toml := p2.TOMLValue()
	_, err := toml.NewDecoder(&writer).Decode(p2toml)
	require.NoError(t, err)
	require.NoError(t, p2.FromTOML(p2toml))
	require.True(t, p.params.Equal(p2))
	require.True(t, p.params.Z().Equal(p2.Z()))

	bad := p.params.TOML().(*ParamsTOML)
	bad.Scheme = "bn254"
	require.Error(t, new(Params).FromTOML(bad))
	require.Error(t, new(Params).FromTOML(p.alice.TOML()))
}

func TestEncodedCiphertextJSON(t *testing.T) {
	p := newParties(t)
	sch := p.params.Scheme
	plain := RandomScalar(sch, nil)
	ct, err := Encrypt(ScalarValue(plain), PointValue(p.alice.Public), p.params)
	require.NoError(t, err)
	enc, err := ct.Encode()
	require.NoError(t, err)

	buff, err := json.Marshal(enc)
	require.NoError(t, err)
	dec := new(EncodedCiphertext)
	require.NoError(t, json.Unmarshal(buff, dec))
	require.Equal(t, enc, dec)

	rk, err := ReKeyGen(ScalarValue(p.alice.Secret), PointValue(p.bob.Public), sch)
	require.NoError(t, err)
	rct, err := ReEncrypt(dec, PointValue(rk), sch)
	require.NoError(t, err)
	renc, err := rct.Encode()
	require.NoError(t, err)
	buff, err = json.Marshal(renc)
	require.NoError(t, err)
	rdec := new(EncodedReEncryptedCiphertext)
	require.NoError(t, json.Unmarshal(buff, rdec))

	got, err := ReDecrypt(rdec, ScalarValue(p.bob.Secret), sch)
	require.NoError(t, err)
	require.True(t, plain.Equal(got))
}
