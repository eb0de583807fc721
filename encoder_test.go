package rapidbase64

import (
	"bytes"
	"crypto/rand"
	"encoding/base64"
	"io"
	randv2 "math/rand/v2"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

type encoderCase struct {
	name     string
	input    []byte
	expected []byte
}

func TestEncoderSimple(t *testing.T) {
	cases := []encoderCase{
		{"empty", []byte(""), []byte("")},
		{"one", []byte("f"), []byte("Zg==")},
		{"two", []byte("fo"), []byte("Zm8=")},
		{"three", []byte("foo"), []byte("Zm9v")},
		{"foobar", []byte("foobar"), []byte("Zm9vYmFy")},
		{"Man", []byte("Man"), []byte("TWFu")},
		{"zeros", []byte("\x00\x00\x00"), []byte("AAAA")},
		{"ones", []byte("\xFF\xFF\xFF"), []byte("////")},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := bytes.NewReader(tc.input)

			encoded := new(bytes.Buffer)
			w := NewEncoder(StdEncoding, encoded)
			_, err := io.Copy(w, input)
			require.NoError(t, err)
			err = w.Close()
			require.NoError(t, err)

			require.Equal(t, string(tc.expected), encoded.String())
		})
	}
}

func TestEncoderSplitWrites(t *testing.T) {
	raw := make([]byte, 64*1024+5)
	_, err := randv2.NewChaCha8([32]byte(bytes.Repeat([]byte{0xBA, 0xAD, 0xF0, 0x0D}, 8))).Read(raw)
	require.NoError(t, err)

	rnd := randv2.New(randv2.NewPCG(1, 1))

	for _, p := range encodingPairs {
		t.Run(p.name, func(t *testing.T) {
			encoded := new(bytes.Buffer)
			w := NewEncoder(p.enc, encoded)

			// Write in ragged pieces so groups straddle Write calls
			for rest := raw; len(rest) > 0; {
				n := min(len(rest), rnd.IntN(100))
				written, err := w.Write(rest[:n])
				require.NoError(t, err)
				require.Equal(t, n, written)
				rest = rest[n:]
			}
			require.NoError(t, w.Close())

			require.Equal(t, p.std.EncodeToString(raw), encoded.String())
			require.Equal(t, int64(len(raw)), w.Processed())
		})
	}
}

func TestEncoderLineLength(t *testing.T) {
	for _, size := range []int{0, 1, 56, 57, 58, 114, 1000} {
		raw := bytes.Repeat([]byte{0x5A, 0xC3, 0x01}, size/3+1)[:size]

		encoded := new(bytes.Buffer)
		w := NewEncoder(StdEncoding, encoded, WithLineLength(76))
		_, err := io.Copy(w, bytes.NewReader(raw))
		require.NoError(t, err)
		require.NoError(t, w.Close())

		want := wrap(base64.StdEncoding.EncodeToString(raw), 76)
		require.Equal(t, want, encoded.String(), "size=%d", size)
		require.Equal(t, MaxLength(size, 76), encoded.Len(), "size=%d", size)
	}
}

func wrap(s string, n int) string {
	var lines []string
	for len(s) > n {
		lines = append(lines, s[:n])
		s = s[n:]
	}
	if len(s) > 0 {
		lines = append(lines, s)
	}
	return strings.Join(lines, "\r\n")
}

func TestEncoderClosed(t *testing.T) {
	encoded := new(bytes.Buffer)
	w := NewEncoder(StdEncoding, encoded)
	_, err := w.Write([]byte("fo"))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.Equal(t, "Zm8=", encoded.String())

	_, err = w.Write([]byte("o"))
	require.ErrorIs(t, err, errWriterNil)
	require.ErrorIs(t, w.Close(), errWriterNil)

	// Reset makes it usable again
	encoded.Reset()
	w.Reset(encoded)
	_, err = w.Write([]byte("foobar"))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.Equal(t, "Zm9vYmFy", encoded.String())
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, io.ErrClosedPipe
}

func TestEncoderWriteError(t *testing.T) {
	w := NewEncoder(StdEncoding, failingWriter{})
	_, err := w.Write([]byte("foobar"))
	require.ErrorIs(t, err, io.ErrClosedPipe)

	w = NewEncoder(StdEncoding, failingWriter{}, WithLineLength(4))
	_, err = w.Write([]byte("f"))
	require.NoError(t, err)
	require.ErrorIs(t, w.Close(), io.ErrClosedPipe)
}

func TestMaxLength(t *testing.T) {
	cases := []struct {
		length, lineLength, expected int
	}{
		{0, 76, 0},
		{3, 0, 4},
		{57, 76, 76},
		{58, 76, 82},
		{114, 76, 154},
		{4, -1, 8},
	}

	for _, tc := range cases {
		require.Equal(t, tc.expected, MaxLength(tc.length, tc.lineLength), "%+v", tc)
	}
}

func BenchmarkEncoder(b *testing.B) {
	raw := make([]byte, 1024*1024)
	_, err := rand.Read(raw)
	require.NoError(b, err)

	r := bytes.NewReader(raw)

	enc := NewEncoder(StdEncoding, io.Discard)

	b.SetBytes(int64(len(raw)))
	b.ResetTimer()
	for b.Loop() {
		_, err = io.Copy(enc, r)
		require.NoError(b, err)
		err = enc.Close()
		require.NoError(b, err)
		_, err = r.Seek(0, io.SeekStart)
		require.NoError(b, err)
		enc.Reset(io.Discard)
	}
}
