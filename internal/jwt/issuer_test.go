package jwt_test

import (
	"testing"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"

	jwtx "github.com/dropDatabas3/idcore/internal/jwt"
)

func TestIssueIDToken_ClaimsAndSignature(t *testing.T) {
	issuer := jwtx.NewIssuer("https://id.example.com", []byte("test-secret"))
	now := time.Now().Truncate(time.Second)

	signed, exp, err := issuer.IssueIDToken("user-1", "client-a", now, time.Hour, map[string]any{
		"nonce": "n-123",
	})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if want := now.Add(time.Hour); !exp.Equal(want) {
		t.Fatalf("exp = %v, want %v", exp, want)
	}

	claims, err := issuer.Parse(signed)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims["iss"] != "https://id.example.com" {
		t.Fatalf("iss = %v", claims["iss"])
	}
	if claims["sub"] != "user-1" {
		t.Fatalf("sub = %v", claims["sub"])
	}
	if claims["aud"] != "client-a" {
		t.Fatalf("aud = %v", claims["aud"])
	}
	if claims["nonce"] != "n-123" {
		t.Fatalf("nonce = %v", claims["nonce"])
	}
}

func TestIssueIDToken_ExtraNeverOverridesStandard(t *testing.T) {
	issuer := jwtx.NewIssuer("https://id.example.com", []byte("test-secret"))

	signed, _, err := issuer.IssueIDToken("user-1", "client-a", time.Now(), time.Hour, map[string]any{
		"sub": "attacker",
		"iss": "https://evil.example.com",
	})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	claims, err := issuer.Parse(signed)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims["sub"] != "user-1" || claims["iss"] != "https://id.example.com" {
		t.Fatalf("standard claims overridden: sub=%v iss=%v", claims["sub"], claims["iss"])
	}
}

func TestParse_RejectsWrongSecretAndAlg(t *testing.T) {
	issuer := jwtx.NewIssuer("https://id.example.com", []byte("right-secret"))
	other := jwtx.NewIssuer("https://id.example.com", []byte("wrong-secret"))

	signed, _, err := other.IssueIDToken("user-1", "client-a", time.Now(), time.Hour, nil)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := issuer.Parse(signed); err == nil {
		t.Fatal("expected wrong-secret token to be rejected")
	}

	// alg=none nunca pasa.
	unsigned := jwtv5.NewWithClaims(jwtv5.SigningMethodNone, jwtv5.MapClaims{"sub": "u"})
	raw, err := unsigned.SignedString(jwtv5.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none: %v", err)
	}
	if _, err := issuer.Parse(raw); err == nil {
		t.Fatal("expected alg=none token to be rejected")
	}
}

func TestParse_RejectsExpired(t *testing.T) {
	issuer := jwtx.NewIssuer("https://id.example.com", []byte("test-secret"))

	signed, _, err := issuer.IssueIDToken("user-1", "client-a", time.Now().Add(-2*time.Hour), time.Hour, nil)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := issuer.Parse(signed); err == nil {
		t.Fatal("expected expired token to be rejected")
	}
}

func TestSignRaw_NoSecret(t *testing.T) {
	issuer := jwtx.NewIssuer("https://id.example.com", nil)
	if _, err := issuer.SignRaw(jwtv5.MapClaims{"sub": "u"}); err != jwtx.ErrNoSecret {
		t.Fatalf("want ErrNoSecret, got %v", err)
	}
}
