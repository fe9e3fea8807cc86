package utils

import (
	"crypto/rand"
	"errors"
	"math/big"
	"strings"
)

const bookingCodePrefix = "FS-"

// GenerateBookingCode returns a fresh "FS-<digits>" booking code. The
// numeric suffix comes from crypto/rand; uniqueness is enforced by the DB
// index, callers retry on collision.
func GenerateBookingCode() (string, error) {
	return generateBookingCode(8)
}

func generateBookingCode(digits int) (string, error) {
	if digits <= 0 {
		return "", errors.New("invalid code length")
	}
	var sb strings.Builder
	sb.WriteString(bookingCodePrefix)
	ten := big.NewInt(10)
	for i := 0; i < digits; i++ {
		n, err := rand.Int(rand.Reader, ten)
		if err != nil {
			return "", err
		}
		sb.WriteByte(byte('0' + n.Int64()))
	}
	return sb.String(), nil
}

// IsValidBookingCode checks the external "FS-<digits>" format.
func IsValidBookingCode(code string) bool {
	code = strings.TrimSpace(code)
	if !strings.HasPrefix(code, bookingCodePrefix) {
		return false
	}
	suffix := strings.TrimPrefix(code, bookingCodePrefix)
	if suffix == "" {
		return false
	}
	for _, r := range suffix {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
