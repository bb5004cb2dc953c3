// Package verifier generates and checks the short numeric code that
// binds a phone-side authorization to the desktop tab that rendered the
// QR. The code travels only over the phone screen and the operator's
// keyboard, never inside the QR payload.
package verifier

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"math/big"
	"strings"
)

// CodeLength is the fixed number of digits in a verifier code
const CodeLength = 6

var codeSpace = big.NewInt(1_000_000)

// Generate returns a cryptographically random 6-digit code,
// zero-padded
func Generate() (string, error) {
	n, err := rand.Int(rand.Reader, codeSpace)
	if err != nil {
		return "", fmt.Errorf("failed to generate verifier code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// Normalize strips everything but digits from operator input. Operators
// copy the code off a phone screen; tolerate spaces and dashes.
func Normalize(input string) string {
	var b strings.Builder
	for _, r := range input {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Match compares a normalized candidate against the stored code in
// constant time. Length mismatches are folded into the comparison so a
// short guess costs the same as a wrong one.
func Match(stored, candidate string) bool {
	if len(candidate) != CodeLength || len(stored) != CodeLength {
		// Still burn a comparison to keep timing flat.
		subtle.ConstantTimeCompare([]byte(stored), []byte(stored))
		return false
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(candidate)) == 1
}
