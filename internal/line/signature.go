package line

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
)

// ValidateSignature checks the platform webhook signature: base64 of the
// HMAC-SHA256 digest over the raw request body, keyed by the channel secret.
// The body must be the exact bytes received; re-serializing the JSON can
// reorder keys and break the comparison.
func ValidateSignature(secret string, body []byte, signature string) bool {
	if signature == "" {
		return false
	}
	claimed, err := base64.StdEncoding.DecodeString(signature)
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hmac.Equal(mac.Sum(nil), claimed)
}
