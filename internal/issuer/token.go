package issuer

import (
	"math/rand"
	"sync"
	"time"
)

const (
	lowercaseLetters = "abcdefghijklmnopqrstuvwxyz"
	decimalDigits    = "0123456789"
)

// TokenGenerator produces candidate credential identifiers and secrets.
type TokenGenerator interface {
	Generate() string
}

// RandomTokenGenerator emits fixed-shape tokens: a run of lowercase letters
// followed by a run of digits. The shape is configuration, not contract; any
// sparse namespace works because candidates are uniqueness-checked before use.
type RandomTokenGenerator struct {
	letters int
	digits  int

	mu  sync.Mutex
	rnd *rand.Rand
}

// NewTokenGenerator builds a generator with the given shape. A nil rnd falls
// back to a time-seeded source; tests inject a fixed seed.
func NewTokenGenerator(letters, digits int, rnd *rand.Rand) *RandomTokenGenerator {
	if letters <= 0 {
		letters = 4
	}
	if digits <= 0 {
		digits = 4
	}
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	return &RandomTokenGenerator{
		letters: letters,
		digits:  digits,
		rnd:     rnd,
	}
}

// Generate returns a fresh token.
func (g *RandomTokenGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	token := make([]byte, 0, g.letters+g.digits)
	for i := 0; i < g.letters; i++ {
		token = append(token, lowercaseLetters[g.rnd.Intn(len(lowercaseLetters))])
	}
	for i := 0; i < g.digits; i++ {
		token = append(token, decimalDigits[g.rnd.Intn(len(decimalDigits))])
	}

	return string(token)
}
