package payment

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const testSecret = "test-webhook-secret"

func TestSignAndVerifyRoundTrip(t *testing.T) {
	sig := Sign("order_abc", "pay_xyz", testSecret)
	require.NotEmpty(t, sig)
	require.True(t, VerifySignature("order_abc", "pay_xyz", sig, testSecret))
}

func TestVerifyRejectsTampering(t *testing.T) {
	sig := Sign("order_abc", "pay_xyz", testSecret)

	require.False(t, VerifySignature("order_abc", "pay_other", sig, testSecret))
	require.False(t, VerifySignature("order_other", "pay_xyz", sig, testSecret))
	require.False(t, VerifySignature("order_abc", "pay_xyz", sig, "wrong-secret"))
	require.False(t, VerifySignature("order_abc", "pay_xyz", sig+"00", testSecret))
}

func TestVerifyRejectsEmptyInputs(t *testing.T) {
	sig := Sign("order_abc", "pay_xyz", testSecret)

	require.False(t, VerifySignature("", "pay_xyz", sig, testSecret))
	require.False(t, VerifySignature("order_abc", "", sig, testSecret))
	require.False(t, VerifySignature("order_abc", "pay_xyz", "", testSecret))
}

func TestProofEmpty(t *testing.T) {
	require.True(t, Proof{}.Empty())
	require.False(t, Proof{OrderID: "order_abc"}.Empty())
	require.False(t, Proof{Signature: "sig"}.Empty())
}
