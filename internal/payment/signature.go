// Package payment holds the locally-owned part of the gateway
// integration: verifying the HMAC signature the gateway attaches to a
// completed payment. The create-payment-intent call itself lives with the
// gateway client, outside this repo.
package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

type Verifier struct {
	secret []byte
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// Sign computes the expected signature for a gateway order/payment pair:
// HMAC-SHA256(secret, gatewayOrderID + "|" + paymentID), hex encoded.
func (v *Verifier) Sign(gatewayOrderID, paymentID string) string {
	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(gatewayOrderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify compares the supplied signature against the recomputed one in
// constant time.
func (v *Verifier) Verify(gatewayOrderID, paymentID, signature string) bool {
	expected := v.Sign(gatewayOrderID, paymentID)
	return hmac.Equal([]byte(expected), []byte(signature))
}
