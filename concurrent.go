package rapidbase64

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// EncodeConcurrent behaves like Encode but splits the whole-block prefix
// of src into up to parts disjoint chunks and encodes them on separate
// goroutines. Kernels share no state, so chunks only need to be aligned
// to the kernel block size. The scalar tail is encoded after every chunk
// has finished. parts < 1 means GOMAXPROCS.
//
// The context is checked before each chunk starts; a chunk that is
// already running is never interrupted.
func (enc *Encoding) EncodeConcurrent(ctx context.Context, dst, src []byte, parts int) error {
	if len(dst) < enc.EncodedLen(len(src)) {
		return errDestinationTooSmall
	}
	if parts < 1 {
		parts = runtime.GOMAXPROCS(0)
	}

	block := enc.kernel.BlockSize()
	blocks := len(src) / block
	whole := blocks * block

	if blocks > 0 {
		chunk := (blocks + parts - 1) / parts * block

		g, ctx := errgroup.WithContext(ctx)
		g.SetLimit(parts)
		for off := 0; off < whole; off += chunk {
			end := min(off+chunk, whole)
			in, out := src[off:end], dst[off/3*4:end/3*4]

			g.Go(func() error {
				if err := ctx.Err(); err != nil {
					return err
				}
				enc.kernel.encode(out, in, enc.alphabet)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	encodeScalar(dst[whole/3*4:], src[whole:], enc.alphabet, enc.padChar)

	return nil
}
