package wsproto

import (
	"crypto/rand"
	"crypto/sha1"
	"encoding/base64"
	"fmt"
)

// keyGUID is the fixed GUID appended to the client key when computing the
// handshake accept value (RFC 6455 section 4.2.2).
const keyGUID = "258EAFA5-E914-47DA-95CA-C5AB0DC85B11"

// GenerateKey returns a Sec-WebSocket-Key value: 16 random bytes encoded as
// base64.
func GenerateKey() (string, error) {
	key := make([]byte, 16)
	if _, err := rand.Read(key); err != nil {
		return "", fmt.Errorf("generating handshake key: %w", err)
	}
	return base64.StdEncoding.EncodeToString(key), nil
}

// AcceptKey computes the Sec-WebSocket-Accept value the server must return
// for the given client key.
func AcceptKey(key string) string {
	h := sha1.New()
	h.Write([]byte(key))
	h.Write([]byte(keyGUID))
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}
