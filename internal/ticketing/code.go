package ticketing

import (
	"crypto/rand"
	"fmt"
	"strings"
)

// codeAlphabet deliberately drops I, L, O, 0 and 1 so codes read back
// unambiguously over a phone or a scratched wristband.
const codeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

const (
	codePrefix    = "JKF"
	codeGroupLen  = 4
	codeGroups    = 2
	codeSeparator = "-"
)

// GenerateCode returns a gate-typeable ticket code of the form
// JKF-XXXX-XXXX. Uniqueness is probabilistic; callers that persist the
// code must still verify it against the store.
func GenerateCode() (string, error) {
	raw := make([]byte, codeGroupLen*codeGroups)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("reading random source: %w", err)
	}

	for i := range raw {
		raw[i] = codeAlphabet[int(raw[i])%len(codeAlphabet)]
	}

	parts := make([]string, 0, codeGroups+1)
	parts = append(parts, codePrefix)
	for g := 0; g < codeGroups; g++ {
		parts = append(parts, string(raw[g*codeGroupLen:(g+1)*codeGroupLen]))
	}
	return strings.Join(parts, codeSeparator), nil
}

// NormalizeCode maps operator input onto the stored form: codes compare
// case-insensitively and ignore surrounding whitespace.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
