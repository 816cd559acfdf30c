// Package shortcode generates and validates short codes.
package shortcode

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jaevor/go-nanoid"
)

// Alphabet is the fixed set of unambiguous characters used for short codes.
// Visually confusable glyphs (0/O, 1/l/I) are excluded so codes survive
// being read aloud or retyped.
const Alphabet = "0123456789ABCDEFGHJKMNPQRSTUVWXYZabcdefghijkmnpqrstuvwxyz"

const (
	// DefaultLength is the code length used when none is requested.
	DefaultLength = 8

	// MinCodeLength and MaxCodeLength bound valid codes, including
	// caller-supplied custom codes.
	MinCodeLength = 3
	MaxCodeLength = 20

	maxGenerateLength = 20
)

// ErrInvalidLength is returned when a requested generation length is out of range.
var ErrInvalidLength = errors.New("short code length must be between 1 and 20")

// Generator produces random short codes from Alphabet.
//
// Uniqueness is not guaranteed here; collision handling belongs to the
// caller, which retries creation against the store's uniqueness constraint.
type Generator struct {
	defaultGen func() string
}

// NewGenerator creates a generator with a pre-built function for DefaultLength.
func NewGenerator() (*Generator, error) {
	gen, err := nanoid.CustomASCII(Alphabet, DefaultLength)
	if err != nil {
		return nil, fmt.Errorf("build nanoid generator: %w", err)
	}

	return &Generator{defaultGen: gen}, nil
}

// Generate returns a random code of the given length drawn uniformly from
// Alphabet using a cryptographically seeded source.
func (g *Generator) Generate(length int) (string, error) {
	if length <= 0 || length > maxGenerateLength {
		return "", ErrInvalidLength
	}

	if length == DefaultLength {
		return g.defaultGen(), nil
	}

	// nanoid needs at least two characters; draw two and keep one.
	drawLength := length
	if drawLength == 1 {
		drawLength = 2
	}

	gen, err := nanoid.CustomASCII(Alphabet, drawLength)
	if err != nil {
		return "", fmt.Errorf("build nanoid generator: %w", err)
	}

	return gen()[:length], nil
}

// IsValid reports whether code has a valid length and only alphabet characters.
func IsValid(code string) bool {
	if len(code) < MinCodeLength || len(code) > MaxCodeLength {
		return false
	}

	for _, r := range code {
		if !strings.ContainsRune(Alphabet, r) {
			return false
		}
	}

	return true
}
