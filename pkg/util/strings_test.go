package util

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		max   int
		want  string
	}{
		{"short string unchanged", "hello", 100, "hello"},
		{"exact length unchanged", "hello", 5, "hello"},
		{"truncated with marker", "hello world", 5, "hello...(truncated)"},
		{"empty string", "", 10, ""},
		{"zero max uses default", strings.Repeat("a", MaxPreviewSize+1), 0, strings.Repeat("a", MaxPreviewSize) + "...(truncated)"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Truncate(tt.input, tt.max))
		})
	}
}

func TestPreview(t *testing.T) {
	t.Parallel()

	t.Run("empty payload", func(t *testing.T) {
		assert.Equal(t, "(empty)", Preview(nil, 0))
	})

	t.Run("utf8 passes through", func(t *testing.T) {
		assert.Equal(t, `{"op":"ping"}`, Preview([]byte(`{"op":"ping"}`), 0))
	})

	t.Run("long utf8 truncated", func(t *testing.T) {
		got := Preview([]byte(strings.Repeat("x", 50)), 10)
		assert.Equal(t, strings.Repeat("x", 10)+"...(truncated)", got)
	})

	t.Run("small binary shown fully as hex", func(t *testing.T) {
		got := Preview([]byte{0xff, 0xfe, 0x00}, 0)
		assert.Equal(t, "(3 bytes) fffe00", got)
	})

	t.Run("large binary shows prefix", func(t *testing.T) {
		payload := make([]byte, 100)
		payload[0] = 0xff
		got := Preview(payload, 0)
		assert.Contains(t, got, "(100 bytes) ")
		assert.True(t, strings.HasSuffix(got, "..."), "got %q", got)
	})
}
