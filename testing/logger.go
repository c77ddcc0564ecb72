package testing

import (
	"fmt"
	"strings"
	"testing"

	"github.com/arloliu/collective/types"
)

// NewTestLogger creates a logger that writes to t.Logf.
//
// Log lines from several simulated participants interleave in test output;
// bind a rank with the prefix argument to tell them apart.
func NewTestLogger(t *testing.T, prefix string) types.Logger {
	return &testLogger{t: t, prefix: prefix}
}

type testLogger struct {
	t      *testing.T
	prefix string
}

var _ types.Logger = (*testLogger)(nil)

func (l *testLogger) Debug(msg string, keysAndValues ...any) {
	l.log("DEBUG", msg, keysAndValues)
}

func (l *testLogger) Info(msg string, keysAndValues ...any) {
	l.log("INFO", msg, keysAndValues)
}

func (l *testLogger) Warn(msg string, keysAndValues ...any) {
	l.log("WARN", msg, keysAndValues)
}

func (l *testLogger) Error(msg string, keysAndValues ...any) {
	l.log("ERROR", msg, keysAndValues)
}

func (l *testLogger) Fatal(msg string, keysAndValues ...any) {
	l.t.Helper()
	l.t.Fatalf("[%s] FATAL: %s %s", l.prefix, msg, formatKeyValues(keysAndValues))
}

func (l *testLogger) log(level, msg string, keysAndValues []any) {
	l.t.Helper()
	l.t.Logf("[%s] %s: %s %s", l.prefix, level, msg, formatKeyValues(keysAndValues))
}

func formatKeyValues(keysAndValues []any) string {
	var sb strings.Builder
	for i := 0; i < len(keysAndValues); i += 2 {
		if i > 0 {
			sb.WriteByte(' ')
		}
		if i+1 < len(keysAndValues) {
			fmt.Fprintf(&sb, "%v=%v", keysAndValues[i], keysAndValues[i+1])
		} else {
			fmt.Fprintf(&sb, "%v=<missing>", keysAndValues[i])
		}
	}

	return sb.String()
}
