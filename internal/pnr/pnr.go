// Package pnr generates booking references shown to passengers.
package pnr

import (
	"crypto/rand"
	"errors"
	"io"
	"math/big"
)

// Alphabet is the set references are drawn from.
const Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

var ErrInvalidLength = errors.New("pnr length must be positive")

// Generator draws references from a random source. The zero value uses crypto/rand.
type Generator struct {
	rand io.Reader
}

func NewGenerator() *Generator {
	return &Generator{rand: rand.Reader}
}

// NewGeneratorFrom is used by tests that need a deterministic source.
func NewGeneratorFrom(r io.Reader) *Generator {
	return &Generator{rand: r}
}

// Generate returns a reference of the given length. Uniqueness is not checked
// here; the booking store rejects duplicates.
func (g *Generator) Generate(length int) (string, error) {
	if length <= 0 {
		return "", ErrInvalidLength
	}
	src := g.rand
	if src == nil {
		src = rand.Reader
	}

	max := big.NewInt(int64(len(Alphabet)))
	out := make([]byte, length)
	for i := range out {
		n, err := rand.Int(src, max)
		if err != nil {
			return "", err
		}
		out[i] = Alphabet[n.Int64()]
	}
	return string(out), nil
}

// Generate uses the default crypto/rand generator.
func Generate(length int) (string, error) {
	return NewGenerator().Generate(length)
}
