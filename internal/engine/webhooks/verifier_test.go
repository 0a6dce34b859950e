package webhooks

import (
	"testing"
)

func TestSign(t *testing.T) {
	// Calculated using: echo -n "payload" | openssl dgst -sha256 -hmac "secret"
	expected := "b82fcb791acec57859b989b430a826488ce2e479fdf92326bd0a2e8375a42ba4"

	got := Sign("secret", []byte("payload"))
	if got != expected {
		t.Errorf("Sign() = %v, want %v", got, expected)
	}
}

func TestVerify(t *testing.T) {
	payload := []byte(`{"EventTypeId":1796}`)
	sig := Sign("secret", payload)

	if !Verify(payload, sig, "secret") {
		t.Error("expected valid signature to verify")
	}
	if !Verify(payload, "sha256="+sig, "secret") {
		t.Error("expected sha256-prefixed signature to verify")
	}
	if Verify(payload, sig, "other-secret") {
		t.Error("expected signature under a different secret to fail")
	}
	if Verify(payload, Sign("other-secret", payload), "secret") {
		t.Error("expected signature computed with wrong secret to fail")
	}
	if Verify([]byte(`{"EventTypeId":1798}`), sig, "secret") {
		t.Error("expected signature over a different body to fail")
	}
	if Verify(payload, "", "secret") {
		t.Error("expected empty header to fail")
	}
}
