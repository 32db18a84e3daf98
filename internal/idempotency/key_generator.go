package idempotency

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// GenerateKey derives a stable idempotency key from a Telegram update.
// Callback queries carry a unique id from Telegram; messages are keyed by
// chat and message id so redelivered updates collapse to the same key.
func GenerateKey(scope string, parts ...interface{}) string {
	h := sha256.New()
	h.Write([]byte(scope))
	for _, p := range parts {
		fmt.Fprintf(h, "|%v", p)
	}

	return hex.EncodeToString(h.Sum(nil))
}
