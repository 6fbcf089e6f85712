package utils

import "crypto/rand"

const codeCharSet = "1234567890"

// OTP_CODE_LENGTH is the number of digits in a login/signup verification code.
const OTP_CODE_LENGTH = 6

// GenerateOTPCode generates a random OTP code of the given length. Leading
// zeros are allowed, so a 6-digit code covers 000000-999999.
func GenerateOTPCode(length int) (string, error) {
	buffer := make([]byte, length)
	_, err := rand.Read(buffer)
	if err != nil {
		return "", err
	}

	charsetLength := len(codeCharSet)
	for i := 0; i < length; i++ {
		buffer[i] = codeCharSet[int(buffer[i])%charsetLength]
	}
	return string(buffer), nil
}
