package rapidbase64

import (
	"errors"
	"strconv"
)

const (
	StdPadding rune = '=' // standard padding character
	NoPadding  rune = -1  // no padding
)

// Encoding is a base64 encoding bound to an alphabet, a padding policy
// and the kernel that encodes whole blocks. Output is identical to
// encoding/base64 for the same alphabet and padding.
type Encoding struct {
	alphabet *Alphabet
	padChar  rune
	kernel   Kernel
}

var (
	// StdEncoding is the standard base64 encoding of RFC 4648.
	StdEncoding = NewEncoding(StdAlphabet)

	// URLEncoding is the alternate base64 encoding of RFC 4648, used in
	// URLs and file names.
	URLEncoding = NewEncoding(URLAlphabet)

	// RawStdEncoding is StdEncoding without padding.
	RawStdEncoding = StdEncoding.WithPadding(NoPadding)

	// RawURLEncoding is URLEncoding without padding.
	RawURLEncoding = URLEncoding.WithPadding(NoPadding)
)

var errDestinationTooSmall = errors.New("destination is too small for the encoded output")

// NewEncoding returns a padded encoding using a and the fastest kernel
// available on this CPU.
func NewEncoding(a *Alphabet) *Encoding {
	return &Encoding{
		alphabet: a,
		padChar:  StdPadding,
		kernel:   activeKernel,
	}
}

// WithPadding returns a copy of enc that pads with padding, or does not
// pad when padding is NoPadding. It panics if padding is CR, LF, not a
// single byte, or part of the alphabet.
func (enc Encoding) WithPadding(padding rune) *Encoding {
	if padding == '\r' || padding == '\n' || padding > 0xff {
		panic("rapidbase64: invalid padding " + strconv.QuoteRune(padding))
	}
	if padding != NoPadding {
		for _, c := range enc.alphabet {
			if rune(c) == padding {
				panic("rapidbase64: padding " + strconv.QuoteRune(padding) + " contained in alphabet")
			}
		}
	}

	enc.padChar = padding
	return &enc
}

// WithKernel returns a copy of enc that encodes whole blocks with k.
// k must come from [Kernels] or [LookupKernel].
func (enc Encoding) WithKernel(k Kernel) *Encoding {
	if k.encode == nil {
		panic("rapidbase64: kernel " + strconv.Quote(k.Name) + " is not registered")
	}

	enc.kernel = k
	return &enc
}

// Kernel returns the kernel enc uses for whole blocks.
func (enc *Encoding) Kernel() Kernel {
	return enc.kernel
}

// Alphabet returns the alphabet of enc.
func (enc *Encoding) Alphabet() *Alphabet {
	return enc.alphabet
}

// Encode writes the encoding of src to dst, which must hold at least
// EncodedLen(len(src)) bytes. The longest prefix of src made of whole
// kernel blocks goes through the kernel; the remainder, with padding,
// through the scalar codec.
func (enc *Encoding) Encode(dst, src []byte) {
	if len(src) == 0 {
		return
	}

	n := len(src) / enc.kernel.BlockSize() * enc.kernel.BlockSize()
	if n > 0 {
		enc.kernel.encode(dst[:n/3*4], src[:n], enc.alphabet)
	}
	encodeScalar(dst[n/3*4:], src[n:], enc.alphabet, enc.padChar)
}

// AppendEncode appends the encoding of src to dst and returns the
// extended buffer.
func (enc *Encoding) AppendEncode(dst, src []byte) []byte {
	n := enc.EncodedLen(len(src))
	dst = grow(dst, n)
	enc.Encode(dst[len(dst):][:n], src)
	return dst[:len(dst)+n]
}

// EncodeToString returns the encoding of src.
func (enc *Encoding) EncodeToString(src []byte) string {
	buf := make([]byte, enc.EncodedLen(len(src)))
	enc.Encode(buf, src)
	return string(buf)
}

// EncodedLen returns the length in bytes of the encoding of n source
// bytes.
func (enc *Encoding) EncodedLen(n int) int {
	if enc.padChar == NoPadding {
		return n/3*4 + (n%3*8+5)/6
	}
	return (n + 2) / 3 * 4
}

func grow(b []byte, n int) []byte {
	if n <= cap(b)-len(b) {
		return b
	}
	nb := make([]byte, len(b), len(b)+n)
	copy(nb, b)
	return nb
}
