package main

import (
	"fmt"
	"testing"
)

func TestRegisterAndLogin(t *testing.T) {
	db := openTestDB(t)
	auth := NewAuth(db)

	id, token, err := auth.Register("alice", "secret")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if id == 0 || token == "" {
		t.Fatal("register should return an id and a token")
	}

	// The fresh token resumes the session.
	pid, username, err := auth.ValidateToken(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if pid != id || username != "alice" {
		t.Errorf("token claims mismatch: %d %q", pid, username)
	}

	if _, _, err := auth.Register("alice", "other"); err == nil {
		t.Error("duplicate username should fail")
	}

	loginID, loginToken, err := auth.Login("alice", "secret", "10.0.0.1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if loginID != id || loginToken == "" {
		t.Error("login should return the account id and a token")
	}

	if _, _, err := auth.Login("alice", "wrong", "10.0.0.1"); err == nil {
		t.Error("wrong password should fail")
	}
	if _, _, err := auth.Login("nobody", "secret", "10.0.0.1"); err == nil {
		t.Error("unknown user should fail")
	}
}

func TestRegisterValidation(t *testing.T) {
	db := openTestDB(t)
	auth := NewAuth(db)

	if _, _, err := auth.Register("a", "secret"); err == nil {
		t.Error("1-char username should fail")
	}
	if _, _, err := auth.Register("waaaaaaaaytoolongname", "secret"); err == nil {
		t.Error("17+ char username should fail")
	}
	if _, _, err := auth.Register("alice", "abc"); err == nil {
		t.Error("3-char password should fail")
	}
	if _, _, err := auth.Register("  bob  ", "secret"); err != nil {
		t.Errorf("trimmed username should pass: %v", err)
	}
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	db := openTestDB(t)
	auth := NewAuth(db)

	if _, _, err := auth.ValidateToken("not-a-token"); err == nil {
		t.Error("garbage token should fail")
	}
	if _, _, err := auth.ValidateToken(""); err == nil {
		t.Error("empty token should fail")
	}
}

func TestJWTSecretPersists(t *testing.T) {
	db := openTestDB(t)

	first := NewAuth(db)
	_, token, err := first.Register("alice", "secret")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	// A second Auth over the same database loads the same secret, so tokens
	// survive a server restart.
	second := NewAuth(db)
	if _, _, err := second.ValidateToken(token); err != nil {
		t.Errorf("token should validate after restart: %v", err)
	}
}

func TestLoginRateLimit(t *testing.T) {
	db := openTestDB(t)
	auth := NewAuth(db)
	auth.Register("alice", "secret")

	ip := "10.0.0.2"
	for i := 0; i < maxLoginAttempts; i++ {
		if _, _, err := auth.Login("alice", "secret", ip); err != nil {
			t.Fatalf("attempt %d unexpectedly limited: %v", i, err)
		}
	}
	if _, _, err := auth.Login("alice", "secret", ip); err == nil {
		t.Error("attempts past the window cap should be limited")
	}
	// Other addresses are unaffected.
	if _, _, err := auth.Login("alice", "secret", "10.0.0.3"); err != nil {
		t.Errorf("other IP should not be limited: %v", err)
	}
}

func TestRateWindowPerIP(t *testing.T) {
	db := openTestDB(t)
	auth := NewAuth(db)

	for i := 0; i < 5; i++ {
		ip := fmt.Sprintf("10.1.0.%d", i)
		if !auth.checkRate(ip) {
			t.Errorf("first attempt from %s should pass", ip)
		}
	}
}
