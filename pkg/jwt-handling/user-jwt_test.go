package jwthandling

import (
	"testing"
	"time"
)

func TestUserTokenRoundTrip(t *testing.T) {
	t.Run("valid token", func(t *testing.T) {
		token, err := GenerateNewUserToken(time.Hour, "user-1", "session-1", "test-key")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		claims, valid, err := ValidateUserToken(token, "test-key")
		if err != nil || !valid {
			t.Fatalf("token should be valid, got valid=%v err=%v", valid, err)
		}
		if claims.Subject != "user-1" {
			t.Errorf("unexpected subject: %s", claims.Subject)
		}
		if claims.SessionID != "session-1" {
			t.Errorf("unexpected session id: %s", claims.SessionID)
		}
	})

	t.Run("expired token", func(t *testing.T) {
		token, err := GenerateNewUserToken(-time.Minute, "user-1", "session-1", "test-key")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		_, valid, err := ValidateUserToken(token, "test-key")
		if valid || err == nil {
			t.Error("expired token should not validate")
		}
	})

	t.Run("wrong key", func(t *testing.T) {
		token, err := GenerateNewUserToken(time.Hour, "user-1", "session-1", "test-key")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		_, valid, _ := ValidateUserToken(token, "other-key")
		if valid {
			t.Error("token signed with a different key should not validate")
		}
	})

	t.Run("garbage token", func(t *testing.T) {
		_, valid, err := ValidateUserToken("not-a-token", "test-key")
		if valid || err == nil {
			t.Error("garbage should not validate")
		}
	})
}
