package squares

import "math/rand"

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// CodeLength is the size of a player-facing pool code.
const CodeLength = 6

// NewCode generates a pool join code, 6 characters of uppercase base36.
// Uniqueness across pools is the store's job (unique column plus retry
// on collision); this only draws the candidate.
func NewCode() string {
	b := make([]byte, CodeLength)
	for i := range b {
		b[i] = codeAlphabet[rand.Intn(len(codeAlphabet))]
	}
	return string(b)
}

// ValidPin reports whether a string is usable as an admin PIN. Exactly
// four characters; digits are conventional but not required.
func ValidPin(pin string) bool {
	return len(pin) == 4
}
