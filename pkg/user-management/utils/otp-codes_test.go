package utils

import (
	"testing"
)

func TestGenerateOTPCode(t *testing.T) {
	t.Run("has requested length", func(t *testing.T) {
		code, err := GenerateOTPCode(OTP_CODE_LENGTH)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(code) != OTP_CODE_LENGTH {
			t.Errorf("unexpected code length: %d", len(code))
		}
	})

	t.Run("contains digits only", func(t *testing.T) {
		for i := 0; i < 50; i++ {
			code, err := GenerateOTPCode(OTP_CODE_LENGTH)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			for _, r := range code {
				if r < '0' || r > '9' {
					t.Fatalf("unexpected character in code: %s", code)
				}
			}
		}
	})
}
