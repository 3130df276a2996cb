package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]LogLevel{
		"DEBUG":   DEBUG,
		"debug":   DEBUG,
		"WARN":    WARN,
		"warning": WARN,
		"ERROR":   ERROR,
		"INFO":    INFO,
		"bogus":   INFO,
		"":        INFO,
	}

	for in, want := range tests {
		require.Equal(t, want, ParseLevel(in), "input %q", in)
	}
}

func TestSetFileWritesEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "component.log")

	l := New("TEST")
	require.NoError(t, l.SetFile(path))

	l.Info("hello %s", "world")
	l.Debug("hidden at info level")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "hello world")
	require.NotContains(t, string(data), "hidden at info level")
}

func TestActionLogRecord(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.log")

	a := &ActionLog{Logger: New("AUDIT_TEST")}
	require.NoError(t, a.SetFile(path))

	a.Record("LOGIN", "alice", "LOGIN alice secret", 110)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), `"action": "LOGIN"`)
	require.Contains(t, string(data), `"code": 110`)
}

func TestNopLoggerDiscards(t *testing.T) {
	l := NewNop("NOP")
	require.NotPanics(t, func() {
		l.Info("nothing %d", 1)
		l.Error("nothing")
	})
}
