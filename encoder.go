package rapidbase64

import (
	"errors"
	"io"
	"sync"
)

// encodeChunk is the input size encoded per underlying write. It is a
// multiple of every kernel block size.
const encodeChunk = 48 * 1024

type Encoder struct {
	w   io.Writer
	enc *Encoding

	lineLength int
	column     int
	processed  int64

	pending  [3]byte
	npending int

	buf []byte

	writeMu sync.Mutex
}

type EncoderOption func(e *Encoder)

// WithLineLength wraps the output with CRLF every n characters, as MIME
// does with n = 76. n <= 0 disables wrapping.
func WithLineLength(n int) EncoderOption {
	return func(e *Encoder) {
		e.lineLength = max(n, 0)
	}
}

// NewEncoder returns a new [Encoder].
// Writes to the returned writer are base64 encoded with enc and written to w.
//
// It is the caller's responsibility to call Close on the [Encoder] when done,
// to flush the final partial group.
func NewEncoder(enc *Encoding, w io.Writer, opts ...EncoderOption) *Encoder {
	e := &Encoder{
		enc: enc,
		buf: make([]byte, enc.EncodedLen(encodeChunk)),
	}

	for _, opt := range opts {
		opt(e)
	}

	e.Reset(w)

	return e
}

// Reset discards the [Encoder] e's state and makes it equivalent to the
// result of its original state from [NewEncoder], but writing to w instead.
// This permits reusing a [Encoder] rather than allocating a new one.
func (e *Encoder) Reset(w io.Writer) {
	e.writeMu.Lock()
	defer e.writeMu.Unlock()

	e.w = w
	e.column = 0
	e.processed = 0
	e.npending = 0
}

var errWriterNil = errors.New("writer is nil")

// Write writes a base64 encoded form of p to the underlying [io.Writer].
// Up to two trailing bytes are held back until the next Write or Close.
func (e *Encoder) Write(p []byte) (n int, err error) {
	e.writeMu.Lock()
	defer e.writeMu.Unlock()

	if e.w == nil {
		return 0, errWriterNil
	}

	n = len(p)
	e.processed += int64(n)

	// Complete a group left over from the previous Write
	if e.npending > 0 {
		for len(p) > 0 && e.npending < len(e.pending) {
			e.pending[e.npending] = p[0]
			e.npending++
			p = p[1:]
		}
		if e.npending < len(e.pending) {
			return n, nil
		}

		e.enc.Encode(e.buf[:4], e.pending[:])
		e.npending = 0
		if err := e.writeWrapped(e.buf[:4]); err != nil {
			return 0, err
		}
	}

	for len(p) >= 3 {
		nn := min(encodeChunk, len(p)/3*3)
		out := e.buf[:nn/3*4]
		e.enc.Encode(out, p[:nn])
		if err := e.writeWrapped(out); err != nil {
			return 0, err
		}
		p = p[nn:]
	}

	e.npending = copy(e.pending[:], p)

	return n, nil
}

// Close flushes any pending output from the encoder, padding the final group.
// It is an error to call Write after calling Close.
func (e *Encoder) Close() error {
	e.writeMu.Lock()
	defer e.writeMu.Unlock()

	if e.w == nil {
		return errWriterNil
	}
	defer func() { e.w = nil }()

	if e.npending == 0 {
		return nil
	}

	out := e.buf[:e.enc.EncodedLen(e.npending)]
	e.enc.Encode(out, e.pending[:e.npending])
	e.npending = 0

	return e.writeWrapped(out)
}

// Processed returns the number of input bytes accepted since the last Reset.
func (e *Encoder) Processed() int64 {
	e.writeMu.Lock()
	defer e.writeMu.Unlock()

	return e.processed
}

// writeWrapped writes b, starting a new line whenever the current one is
// full. A line break is only written once more output follows it.
func (e *Encoder) writeWrapped(b []byte) error {
	if e.lineLength == 0 {
		_, err := e.w.Write(b)
		return err
	}

	for len(b) > 0 {
		if e.column == e.lineLength {
			if _, err := io.WriteString(e.w, "\r\n"); err != nil {
				return err
			}
			e.column = 0
		}

		n := min(e.lineLength-e.column, len(b))
		if _, err := e.w.Write(b[:n]); err != nil {
			return err
		}
		e.column += n
		b = b[n:]
	}

	return nil
}
