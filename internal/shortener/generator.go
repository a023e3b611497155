package shortener

import (
	"fmt"

	"github.com/jaevor/go-nanoid"
)

// DefaultCodeLength is the length of generated codes unless configured otherwise.
const DefaultCodeLength = 8

// Alphabet is the URL-safe alphanumeric set codes are drawn from.
const Alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// CodeGenerator produces random code candidates. Candidates may collide;
// uniqueness is enforced by the Repository.
type CodeGenerator func() string

// NewGenerator returns a crypto-random generator of fixed-length codes.
func NewGenerator(length int) (CodeGenerator, error) {
	if length < 1 || length > MaxCodeLength {
		return nil, fmt.Errorf("code length must be between 1 and %d, got %d", MaxCodeLength, length)
	}

	gen, err := nanoid.CustomASCII(Alphabet, length)
	if err != nil {
		return nil, err
	}

	return gen, nil
}
