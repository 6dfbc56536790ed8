package utils

import (
	"testing"
	"time"
)

func TestGenerateAndParseToken(t *testing.T) {
	token, exp, err := GenerateToken(42, "cashier1", "cashier", time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if time.Until(exp) <= 0 {
		t.Errorf("expiry %s is not in the future", exp)
	}

	claims, err := ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if claims.UserId != 42 {
		t.Errorf("user id = %d, want 42", claims.UserId)
	}
	if claims.Username != "cashier1" {
		t.Errorf("username = %q, want %q", claims.Username, "cashier1")
	}
	if claims.Role != "cashier" {
		t.Errorf("role = %q, want %q", claims.Role, "cashier")
	}
}

func TestParseToken_Expired(t *testing.T) {
	token, _, err := GenerateToken(1, "u", "cashier", -time.Minute)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if _, err := ParseToken(token); err == nil {
		t.Error("expected error for expired token")
	}
}

func TestParseToken_Garbage(t *testing.T) {
	if _, err := ParseToken("not-a-token"); err == nil {
		t.Error("expected error for malformed token")
	}
}
