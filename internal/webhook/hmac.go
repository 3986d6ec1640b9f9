package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
)

// verifySignature verifies a hex-encoded HMAC-SHA256 signature against the
// request body.
//
// This function uses constant-time comparison (crypto/subtle) to prevent
// timing attacks. The provider sends the digest as plain hex in the
// signature header. All errors are generic to prevent information leakage.
func verifySignature(body []byte, signature, secret string) error {
	if secret == "" || signature == "" {
		return fmt.Errorf("webhook verification failed")
	}

	// Compute HMAC-SHA256 of request body
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expectedMAC := mac.Sum(nil)

	actualMAC, err := hex.DecodeString(signature)
	if err != nil {
		// Generic error - don't leak format details
		return fmt.Errorf("webhook verification failed")
	}

	// Constant-time comparison to prevent timing attacks
	if subtle.ConstantTimeCompare(expectedMAC, actualMAC) != 1 {
		return fmt.Errorf("webhook verification failed")
	}

	return nil
}

// computeSignature computes the hex-encoded HMAC-SHA256 signature for a body.
// Used for testing and validation.
func computeSignature(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
