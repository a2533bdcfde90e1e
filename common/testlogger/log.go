package testlogger

import (
	"testing"

	"github.com/drand/pre/common/log"
)

// New returns a JSON logger tagged with the test name. Set PRE_LOG_LEVEL=debug
// to see debug statements in test runs.
func New(t testing.TB) log.Logger {
	return log.New(nil, log.DefaultLevel, true).
		With("testName", t.Name())
}
