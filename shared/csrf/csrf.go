// Package csrf implements double-submit tokens: the same random value is
// stored in a cookie and echoed in every form.
package csrf

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
)

const tokenBytes = 32

func GenerateToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// ValidateToken reports whether the form echoed the cookie's token.
func ValidateToken(cookieToken, formToken string) bool {
	if cookieToken == "" || len(cookieToken) != len(formToken) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(cookieToken), []byte(formToken)) == 1
}
