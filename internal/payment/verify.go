// Package payment re-verifies Razorpay payment proofs server-side.
package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Signature computes the gateway's expected signature: HMAC-SHA256 over
// "orderID|paymentID" keyed by the account secret, hex encoded.
func Signature(orderID, paymentID, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature reports whether the supplied signature matches what the
// gateway would have produced. Pure function, no I/O; any absent field
// rejects.
func VerifySignature(orderID, paymentID, supplied, secret string) bool {
	if orderID == "" || paymentID == "" || supplied == "" || secret == "" {
		return false
	}

	return Signature(orderID, paymentID, secret) == supplied
}
