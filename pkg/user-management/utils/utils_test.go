package utils

import (
	"testing"
)

func TestSanitizeEmail(t *testing.T) {
	t.Run("with different formats", func(t *testing.T) {
		email := SanitizeEmail("\nJonas@Example.COM")
		if email != "jonas@example.com" {
			t.Errorf("unexpected email: %s", email)
		}

		email = SanitizeEmail("  \n jonas@example.com \n\r")
		if email != "jonas@example.com" {
			t.Errorf("unexpected email: %s", email)
		}

		email = SanitizeEmail("jonas@example.com")
		if email != "jonas@example.com" {
			t.Errorf("unexpected email: %s", email)
		}
	})
}

func TestCheckEmailFormat(t *testing.T) {
	t.Run("with missing @", func(t *testing.T) {
		if CheckEmailFormat("t.t.com") {
			t.Error("should be false")
		}
	})

	t.Run("with wrong domain format", func(t *testing.T) {
		if CheckEmailFormat("t@t.") {
			t.Error("should be false")
		}
	})

	t.Run("with missing top level domain", func(t *testing.T) {
		if CheckEmailFormat("t@com") {
			t.Error("should be false")
		}
	})

	t.Run("with wrong local format", func(t *testing.T) {
		if CheckEmailFormat("@t.com") {
			t.Error("should be false")
		}
	})

	t.Run("with correct format", func(t *testing.T) {
		if !CheckEmailFormat("t@t.com") {
			t.Error("should be true")
		}
		if !CheckEmailFormat("t+1@t.com") {
			t.Error("should be true")
		}
	})
}

func TestBlurEmailAddress(t *testing.T) {
	t.Run("with different formats", func(t *testing.T) {
		email := BlurEmailAddress("a@test.de")
		if email != "a****@test.de" {
			t.Errorf("unexpected email: %s", email)
		}

		email = BlurEmailAddress("a123sdfsdfsdfa34@test.de")
		if email != "a****@test.de" {
			t.Errorf("unexpected email: %s", email)
		}
	})
}

func TestEmailLocalPart(t *testing.T) {
	if got := EmailLocalPart("jonas@example.com"); got != "jonas" {
		t.Errorf("unexpected local part: %s", got)
	}
	if got := EmailLocalPart("no-at-sign"); got != "no-at-sign" {
		t.Errorf("unexpected local part: %s", got)
	}
}
