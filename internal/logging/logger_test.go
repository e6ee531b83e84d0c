package logging

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"", slog.LevelInfo},
		{"debug", slog.LevelDebug},
		{"WARN", slog.LevelWarn},
		{"error", slog.LevelError},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseLevel("chatty")
	assert.Error(t, err)
}

func TestNewWithFormat(t *testing.T) {
	for _, f := range []string{"", "text", "JSON"} {
		l, err := NewWithFormat(f, slog.LevelInfo)
		require.NoError(t, err, f)
		assert.NotNil(t, l)
	}

	_, err := NewWithFormat("xml", slog.LevelInfo)
	assert.Error(t, err)
}

func TestReplaceAttrRenamesError(t *testing.T) {
	a := handlerOptions(slog.LevelInfo).ReplaceAttr(nil, slog.String("error", "boom"))
	assert.Equal(t, "err", a.Key)

	b := handlerOptions(slog.LevelInfo).ReplaceAttr(nil, slog.String("source", "x"))
	assert.Equal(t, "source", b.Key)
}
