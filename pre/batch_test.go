package pre

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/drand/pre/common/log"
	"github.com/drand/pre/common/testlogger"
)

func TestReEncryptBatch(t *testing.T) {
	p := newParties(t)
	sch := p.params.Scheme
	rk, err := ReKeyGen(ScalarValue(p.alice.Secret), PointValue(p.bob.Public), sch)
	require.NoError(t, err)

	n := 10
	plains := make([]*Ciphertext, n)
	cts := make([]CiphertextInput, n)
	for i := range cts {
		ct, err := Encrypt(ScalarValue(RandomScalar(sch, nil)), PointValue(p.alice.Public), p.params)
		require.NoError(t, err)
		plains[i] = ct
		cts[i] = ct
	}
	// one garbage ciphertext in the middle
	cts[4] = &EncodedCiphertext{C1: []byte("nope"), C2: []byte("nope")}

	ctx := log.ToContext(context.Background(), testlogger.New(t))
	out, err := ReEncryptBatch(ctx, cts, PointValue(rk), sch, 3)
	require.Error(t, err)
	require.Contains(t, err.Error(), "ciphertext 4")
	var derr *DeserializationError
	require.True(t, errors.As(err, &derr))
	require.Len(t, out, n)

	for i, rct := range out {
		if i == 4 {
			require.Nil(t, rct)
			continue
		}
		expected, err := ReEncrypt(plains[i], PointValue(rk), sch)
		require.NoError(t, err)
		require.True(t, expected.Equal(rct))
	}

	cts[4] = plains[4]
	out, err = ReEncryptBatch(ctx, cts, PointValue(rk), sch, 0)
	require.NoError(t, err)
	for _, rct := range out {
		require.NotNil(t, rct)
	}
}

func TestReEncryptBatchEdgeCases(t *testing.T) {
	p := newParties(t)
	sch := p.params.Scheme
	rk, err := ReKeyGen(ScalarValue(p.alice.Secret), PointValue(p.bob.Public), sch)
	require.NoError(t, err)

	out, err := ReEncryptBatch(context.Background(), nil, PointValue(rk), sch, 4)
	require.NoError(t, err)
	require.Empty(t, out)

	_, err = ReEncryptBatch(context.Background(), nil, PointHex("00"), sch, 4)
	var derr *DeserializationError
	require.True(t, errors.As(err, &derr))

	ct, err := Encrypt(ScalarValue(RandomScalar(sch, nil)), PointValue(p.alice.Public), p.params)
	require.NoError(t, err)
	cts := []CiphertextInput{ct, ct, ct}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	out, err = ReEncryptBatch(ctx, cts, PointValue(rk), sch, 1)
	require.ErrorIs(t, err, context.Canceled)
	require.Len(t, out, len(cts))
}
