package line

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"testing"
)

func sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func TestValidateSignature(t *testing.T) {
	secret := "test-secret"
	body := []byte(`{"events":[{"type":"message"}]}`)

	if !ValidateSignature(secret, body, sign(secret, body)) {
		t.Fatalf("valid signature rejected")
	}

	// single-byte body mutation
	mutated := append([]byte{}, body...)
	mutated[0] ^= 0x01
	if ValidateSignature(secret, mutated, sign(secret, body)) {
		t.Fatalf("mutated body accepted")
	}

	// mutated signature
	sig := []byte(sign(secret, body))
	sig[0] = 'x'
	if ValidateSignature(secret, body, string(sig)) {
		t.Fatalf("mutated signature accepted")
	}

	if ValidateSignature(secret, body, "") {
		t.Fatalf("empty signature accepted")
	}
	if ValidateSignature(secret, body, "!!!not-base64!!!") {
		t.Fatalf("undecodable signature accepted")
	}
	if ValidateSignature("other-secret", body, sign(secret, body)) {
		t.Fatalf("signature accepted under wrong secret")
	}
}
