package rapidbase64

import (
	"fmt"
	"os"
	"strconv"
)

// Kernel is an encode loop specialised for one vector width. Each
// iteration gathers Lanes 3-byte groups, unpacks them into 6-bit
// indices, looks the indices up in the alphabet and stores 4*Lanes
// characters.
type Kernel struct {
	Name  string
	Lanes int

	encode func(dst, src []byte, a *Alphabet)
}

// BlockSize is the number of input bytes consumed per iteration.
func (k Kernel) BlockSize() int {
	return k.Lanes * 3
}

// OutputSize is the number of characters produced per iteration.
func (k Kernel) OutputSize() int {
	return k.Lanes * 4
}

// EncodeBlocks encodes src into dst using alphabet a without padding.
//
// len(src) must be a multiple of BlockSize and dst must hold at least
// len(src)/3*4 bytes. Only src and dst[:len(src)/3*4] are accessed.
// Use [Encoding.Encode] for input of arbitrary length.
func (k Kernel) EncodeBlocks(dst, src []byte, a *Alphabet) {
	if k.encode == nil {
		panic("rapidbase64: kernel " + strconv.Quote(k.Name) + " is not registered")
	}
	if len(src)%k.BlockSize() != 0 {
		panic(fmt.Sprintf("rapidbase64: %s kernel needs a multiple of %d input bytes, got %d", k.Name, k.BlockSize(), len(src)))
	}
	n := len(src) / 3 * 4
	if len(dst) < n {
		panic(fmt.Sprintf("rapidbase64: destination holds %d bytes, need %d", len(dst), n))
	}
	if len(src) == 0 {
		return
	}

	k.encode(dst[:n], src, a)
}

// noSimdEnvVar disables every vector kernel when set to a true value.
const noSimdEnvVar = "RAPIDBASE64_NO_SIMD"

var (
	kernels      = detectKernels()
	activeKernel = kernels[0]
)

func detectKernels() []Kernel {
	if noSimdEnv() {
		return []Kernel{genericKernel}
	}
	return append(simdKernels(), genericKernel)
}

func noSimdEnv() bool {
	v, ok := os.LookupEnv(noSimdEnvVar)
	if !ok {
		return false
	}
	disabled, err := strconv.ParseBool(v)
	return err != nil || disabled
}

// Kernels returns the kernels usable on this CPU, widest first.
// The last entry is always the portable "generic" kernel.
func Kernels() []Kernel {
	return append([]Kernel(nil), kernels...)
}

// LookupKernel returns the usable kernel called name.
func LookupKernel(name string) (Kernel, bool) {
	for _, k := range kernels {
		if k.Name == name {
			return k, true
		}
	}
	return Kernel{}, false
}
