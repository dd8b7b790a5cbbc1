package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"quietsummit/internal/domain/shared/money"
)

// Proof is the client-supplied claim that a gateway payment happened. An
// absent proof is a valid input: the reservation proceeds unpaid.
type Proof struct {
	OrderID   string
	PaymentID string
	Signature string
}

func (p Proof) Empty() bool {
	return p.OrderID == "" && p.PaymentID == "" && p.Signature == ""
}

// VerifySignature recomputes the gateway HMAC-SHA256 over
// "orderID|paymentID", hex-encodes it and compares against the supplied
// signature in constant time. Pure and side-effect-free; callers own the
// resulting state transition.
func VerifySignature(orderID, paymentID, signature, secret string) bool {
	if orderID == "" || paymentID == "" || signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// Sign produces the signature the gateway would attach. Exposed for fixtures
// and the gateway simulator.
func Sign(orderID, paymentID, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// Confirmation is the gateway's own record of a captured payment, fetched
// read-only after signature verification. Non-authoritative: the verified
// signature is the trust anchor, the fetch only enriches operator data.
type Confirmation struct {
	PaymentID  string
	OrderID    string
	Amount     money.Money
	Method     string
	CapturedAt time.Time
}

// Gateway is the read-only client port to the payment provider.
type Gateway interface {
	Confirmation(ctx context.Context, paymentID string) (Confirmation, error)
}
