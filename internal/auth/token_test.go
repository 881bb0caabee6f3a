package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/storyst/salestrack/internal/errors"
)

var testSecret = []byte("unit-test-secret")

func TestIssueVerifyRoundTrip(t *testing.T) {
	codec := NewTokenCodec(testSecret, time.Hour)

	token, err := codec.Issue("customer-1", "a@x.com")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	claims, err := codec.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.CustomerID != "customer-1" {
		t.Fatalf("customer id = %q, want customer-1", claims.CustomerID)
	}
	if claims.Email != "a@x.com" {
		t.Fatalf("email = %q, want a@x.com", claims.Email)
	}
	if got := claims.ExpiresAt.Sub(claims.IssuedAt.Time); got != time.Hour {
		t.Fatalf("validity window = %v, want 1h", got)
	}
}

func TestVerifyExpired(t *testing.T) {
	t0 := time.Date(2023, 5, 1, 12, 0, 0, 0, time.UTC)
	codec := NewTokenCodec(testSecret, time.Hour).WithClock(func() time.Time { return t0 })

	token, err := codec.Issue("customer-1", "a@x.com")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	// One second past the expiry window.
	codec.WithClock(func() time.Time { return t0.Add(time.Hour + time.Second) })

	_, err = codec.Verify(token)
	if err == nil {
		t.Fatal("expected verification to fail")
	}
	svcErr := errors.GetServiceError(err)
	if svcErr == nil || svcErr.Code != errors.CodeTokenExpired {
		t.Fatalf("error = %v, want code %s", err, errors.CodeTokenExpired)
	}
}

func TestVerifyStillValidJustBeforeExpiry(t *testing.T) {
	t0 := time.Date(2023, 5, 1, 12, 0, 0, 0, time.UTC)
	codec := NewTokenCodec(testSecret, time.Hour).WithClock(func() time.Time { return t0 })

	token, err := codec.Issue("customer-1", "a@x.com")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	codec.WithClock(func() time.Time { return t0.Add(time.Hour - time.Second) })
	if _, err := codec.Verify(token); err != nil {
		t.Fatalf("verify just before expiry: %v", err)
	}
}

func TestVerifyTamperedSignature(t *testing.T) {
	codec := NewTokenCodec(testSecret, time.Hour)

	token, err := codec.Issue("customer-1", "a@x.com")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		t.Fatalf("token has %d segments, want 3", len(parts))
	}
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	_, err = codec.Verify(tampered)
	if err == nil {
		t.Fatal("expected verification to fail")
	}
	svcErr := errors.GetServiceError(err)
	if svcErr == nil || svcErr.Code != errors.CodeInvalidToken {
		t.Fatalf("error = %v, want code %s", err, errors.CodeInvalidToken)
	}
}

func TestVerifyWrongSecret(t *testing.T) {
	issuer := NewTokenCodec(testSecret, time.Hour)
	verifier := NewTokenCodec([]byte("a-different-secret"), time.Hour)

	token, err := issuer.Issue("customer-1", "a@x.com")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := verifier.Verify(token); err == nil {
		t.Fatal("expected verification to fail with mismatched secret")
	}
}

func TestVerifyMalformed(t *testing.T) {
	codec := NewTokenCodec(testSecret, time.Hour)

	for _, token := range []string{"", "garbage", "a.b", "a.b.c.d"} {
		_, err := codec.Verify(token)
		if err == nil {
			t.Fatalf("expected malformed token %q to fail", token)
		}
		svcErr := errors.GetServiceError(err)
		if svcErr == nil || svcErr.Code != errors.CodeInvalidToken {
			t.Fatalf("error for %q = %v, want code %s", token, err, errors.CodeInvalidToken)
		}
	}
}

func TestDefaultTTLApplied(t *testing.T) {
	codec := NewTokenCodec(testSecret, 0)
	if codec.ttl != DefaultTTL {
		t.Fatalf("ttl = %v, want %v", codec.ttl, DefaultTTL)
	}
}
