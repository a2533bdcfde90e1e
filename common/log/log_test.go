package log

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestLoggerLevels(t *testing.T) {
	type logTest struct {
		with       []interface{}
		level      int
		allowedLvl int
		msg        string
		out        []string
	}

	w := func(kv ...interface{}) []interface{} {
		return kv
	}
	o := func(outs ...string) []string {
		return outs
	}
	var tests = []logTest{
		{nil, InfoLevel, InfoLevel, "hello", o("hello")},
		{nil, DebugLevel, InfoLevel, "hello", nil},
		{nil, ErrorLevel, DebugLevel, "hello", o("hello")},
		{nil, WarnLevel, ErrorLevel, "hello", nil},
		{w("delegator", "alice"), WarnLevel, InfoLevel, "hello", o("delegator", "alice", "hello")},
	}

	for i, test := range tests {
		t.Logf(" -- test %d -- \n", i)

		var b bytes.Buffer
		writer := bufio.NewWriter(&b)
		logger := New(zapcore.AddSync(writer), test.allowedLvl, true)
		if test.with != nil {
			logger = logger.With(test.with...)
		}

		var logging func(...interface{})
		switch test.level {
		case InfoLevel:
			logging = logger.Info
		case DebugLevel:
			logging = logger.Debug
		case WarnLevel:
			logging = logger.Warn
		case ErrorLevel:
			logging = logger.Error
		default:
			t.FailNow()
		}

		logging("msg=", test.msg)
		writer.Flush()

		requireContains(t, &b, test.out, test.out != nil)
	}
}

func TestLevelFromString(t *testing.T) {
	for in, exp := range map[string]int{
		"debug": DebugLevel,
		"INFO":  InfoLevel,
		"":      InfoLevel,
		"warn":  WarnLevel,
		"error": ErrorLevel,
	} {
		lvl, err := LevelFromString(in)
		require.NoError(t, err, in)
		require.Equal(t, exp, lvl, in)
	}
	_, err := LevelFromString("loud")
	require.Error(t, err)
}

func TestContextLogger(t *testing.T) {
	var b bytes.Buffer
	l := New(zapcore.AddSync(&b), InfoLevel, true).Named("proxy")
	ctx := ToContext(context.Background(), l)

	FromContextOrDefault(ctx).Infow("re-encrypted", "count", 3)
	require.Contains(t, b.String(), "re-encrypted")
	require.Contains(t, b.String(), "proxy")

	require.NotNil(t, FromContextOrDefault(context.Background()))
}

func requireContains(t *testing.T, r io.Reader, outs []string, present bool) {
	out, err := io.ReadAll(r)
	require.NoError(t, err)
	if !present {
		require.Equal(t, "", string(out))
		return
	}
	for _, o := range outs {
		require.Contains(t, string(out), o)
	}
	require.NotContains(t, string(out), "Ignored key without a value.")
}
