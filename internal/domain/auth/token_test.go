package auth

import (
	"testing"
	"time"
)

func TestTokenRoundTripCarriesEmployee(t *testing.T) {
	token, err := GenerateToken("secret", Claims{UserID: "u1", EmployeeID: "e1", Role: RoleEmployee}, time.Hour)
	if err != nil {
		t.Fatalf("token error: %v", err)
	}
	claims, err := ParseToken("secret", token)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if claims.UserID != "u1" || claims.EmployeeID != "e1" || claims.Role != RoleEmployee {
		t.Fatalf("unexpected claims %+v", claims)
	}
}

func TestParseTokenRejectsWrongSecretAndExpiry(t *testing.T) {
	token, _ := GenerateToken("secret", Claims{UserID: "u1", Role: RoleHR}, time.Hour)
	if _, err := ParseToken("other", token); err == nil {
		t.Fatal("expected signature failure")
	}
	expired, _ := GenerateToken("secret", Claims{UserID: "u1", Role: RoleHR}, -time.Minute)
	if _, err := ParseToken("secret", expired); err == nil {
		t.Fatal("expected expiry failure")
	}
}

func TestCheckKey(t *testing.T) {
	hash, err := HashKey("clock-key")
	if err != nil {
		t.Fatalf("hash error: %v", err)
	}
	if err := CheckKey(hash, "clock-key"); err != nil {
		t.Fatalf("expected key to match: %v", err)
	}
	if err := CheckKey(hash, "wrong"); err == nil {
		t.Fatal("expected mismatch")
	}
}
