package rapidbase64

import (
	"errors"
	"fmt"
)

// Alphabet maps every 6-bit index (0-63) to its output character.
// The zero value is not usable; use StdAlphabet, URLAlphabet or NewAlphabet.
type Alphabet [64]byte

var (
	// StdAlphabet is the standard alphabet of RFC 4648 section 4.
	StdAlphabet = mustAlphabet("ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/")

	// URLAlphabet is the URL and filename safe alphabet of RFC 4648 section 5.
	URLAlphabet = mustAlphabet("ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_")
)

var (
	ErrAlphabetLength    = errors.New("alphabet must be exactly 64 bytes")
	ErrAlphabetDuplicate = errors.New("alphabet contains a duplicate symbol")
	ErrAlphabetReserved  = errors.New("alphabet contains a reserved symbol")
)

// NewAlphabet validates s and returns it as an Alphabet.
// CR, LF and the standard padding byte are reserved.
func NewAlphabet(s string) (*Alphabet, error) {
	if len(s) != len(Alphabet{}) {
		return nil, fmt.Errorf("%w: got %d", ErrAlphabetLength, len(s))
	}

	var (
		a    Alphabet
		seen [256]bool
	)
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '\r', '\n', '=':
			return nil, fmt.Errorf("%w: %q at index %d", ErrAlphabetReserved, c, i)
		}
		if seen[c] {
			return nil, fmt.Errorf("%w: %q at index %d", ErrAlphabetDuplicate, c, i)
		}
		seen[c] = true
		a[i] = c
	}

	return &a, nil
}

func mustAlphabet(s string) *Alphabet {
	a, err := NewAlphabet(s)
	if err != nil {
		panic(err)
	}
	return a
}

// String returns the alphabet symbols in index order.
func (a *Alphabet) String() string {
	return string(a[:])
}
