package strings

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
)

// supply suffix if text does not have it yet.
func SupplySuffix(text, suffix string) string {
	if strings.HasSuffix(text, suffix) {
		return text
	}
	return text + suffix
}

// like strings.Split(s, sep), but return empty slice when s == "".
func SplitIfNotEmpty(s string, sep string) []string {
	if s == "" {
		return []string{}
	}
	return strings.Split(s, sep)
}

// return random hex string (/[0-9a-f]*/) with length l.
func RandomHex(l uint) (string, error) {
	if l == 0 {
		return "", nil
	}

	// hex encoding doubles the length; +1 covers odd l.
	buffer := make([]byte, l/2+1)
	if _, err := rand.Read(buffer); err != nil {
		return "", err
	}
	return hex.EncodeToString(buffer)[:l], nil
}
