package wsproto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeClosePayload(t *testing.T) {
	tests := []struct {
		name    string
		code    CloseCode
		reason  string
		wantLen int
		wantErr error
	}{
		{"code and reason", CloseNormalClosure, "done", 6, nil},
		{"code only", CloseGoingAway, "", 2, nil},
		{"no status", 0, "", 0, nil},
		{"application code", 4000, "app shutdown", 14, nil},
		{"reason without code", 0, "why", 0, ErrInvalidCloseReason},
		{"reserved 1005", CloseNoStatusReceived, "", 0, ErrInvalidCloseCode},
		{"reserved 1006", CloseAbnormalClosure, "", 0, ErrInvalidCloseCode},
		{"reserved 1015", CloseTLSHandshake, "", 0, ErrInvalidCloseCode},
		{"below range", 999, "", 0, ErrInvalidCloseCode},
		{"unregistered 1004", 1004, "", 0, ErrInvalidCloseCode},
		{"unregistered 2000", 2000, "", 0, ErrInvalidCloseCode},
		{"above range", 5000, "", 0, ErrInvalidCloseCode},
		{"invalid utf8 reason", CloseNormalClosure, string([]byte{0xFF, 0xFE}), 0, ErrInvalidCloseReason},
		{"reason too long", CloseNormalClosure, string(make([]byte, 124)), 0, ErrInvalidCloseReason},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload, err := EncodeClosePayload(tt.code, tt.reason)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Len(t, payload, tt.wantLen)
		})
	}
}

func TestEncodeClosePayloadMaxReason(t *testing.T) {
	// 123 bytes of reason plus the 2-byte code exactly fills a control frame.
	reason := string(make([]byte, 123))
	payload, err := EncodeClosePayload(CloseNormalClosure, reason)
	require.NoError(t, err)
	assert.Len(t, payload, MaxControlPayload)
}

func TestParseClosePayload(t *testing.T) {
	tests := []struct {
		name       string
		payload    []byte
		wantCode   CloseCode
		wantReason string
		wantErr    error
	}{
		{"empty payload", nil, CloseNoStatusReceived, "", nil},
		{"code only", []byte{0x03, 0xE8}, CloseNormalClosure, "", nil},
		{"code and reason", []byte{0x03, 0xE8, 'b', 'y', 'e'}, CloseNormalClosure, "bye", nil},
		{"application code", []byte{0x0F, 0xA0}, 4000, "", nil},
		{"single byte", []byte{0x03}, 0, "", ErrInvalidClosePayload},
		{"reserved 1005 on wire", []byte{0x03, 0xED}, 0, "", ErrInvalidCloseCode},
		{"reserved 1006 on wire", []byte{0x03, 0xEE}, 0, "", ErrInvalidCloseCode},
		{"out of range code", []byte{0x00, 0x00}, 0, "", ErrInvalidCloseCode},
		{"invalid utf8 reason", []byte{0x03, 0xE8, 0xFF, 0xFE}, 0, "", ErrInvalidCloseReason},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, reason, err := ParseClosePayload(tt.payload)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantCode, code)
			assert.Equal(t, tt.wantReason, reason)
		})
	}
}

func TestClosePayloadRoundTrip(t *testing.T) {
	payload, err := EncodeClosePayload(CloseProtocolError, "continuation without starting a fragment")
	require.NoError(t, err)

	code, reason, err := ParseClosePayload(payload)
	require.NoError(t, err)
	assert.Equal(t, CloseProtocolError, code)
	assert.Equal(t, "continuation without starting a fragment", reason)
}
