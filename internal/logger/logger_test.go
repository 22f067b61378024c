package logger

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"trace":   LevelTrace,
		"DEBUG":   LevelDebug,
		"":        LevelInfo,
		" info ":  LevelInfo,
		"warning": LevelWarn,
		"error":   LevelError,
	}
	for raw, want := range cases {
		got, err := ParseLevel(raw)
		require.NoError(t, err, raw)
		require.Equal(t, want, got, raw)
	}

	_, err := ParseLevel("loud")
	require.Error(t, err)
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	prev := GetLevel()
	t.Cleanup(func() {
		SetOutput(os.Stderr)
		SetLevel(prev)
	})

	SetLevel(LevelWarn)
	Infof("hidden %d", 1)
	Warnf("shown %d", 2)

	out := buf.String()
	require.NotContains(t, out, "hidden")
	require.Contains(t, out, "[WARN] shown 2")
	require.True(t, Enabled(LevelError))
	require.False(t, Enabled(LevelDebug))
}
