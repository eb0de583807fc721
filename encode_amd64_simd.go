//go:build goexperiment.simd && amd64

package rapidbase64

import (
	"simd/archsimd"

	"golang.org/x/sys/cpu"
)

const (
	avx512Lanes = 16
	avx512Block = avx512Lanes * 3

	avx2Lanes = 8
	avx2Block = avx2Lanes * 3
	// avx2Window is how far before the block the 32-byte load starts, so
	// that the second group of four lanes lands in the upper 128 bits.
	avx2Window = 4
)

var avx512Offsets = [avx512Lanes]uint32{
	0 * 3, 1 * 3, 2 * 3, 3 * 3,
	4 * 3, 5 * 3, 6 * 3, 7 * 3,
	8 * 3, 9 * 3, 10 * 3, 11 * 3,
	12 * 3, 13 * 3, 14 * 3, 15 * 3,
}

var avx2Offsets = [avx2Lanes]uint32{
	0 * 3, 1 * 3, 2 * 3, 3 * 3,
	4 * 3, 5 * 3, 6 * 3, 7 * 3,
}

var (
	avx512Gather = func() (perm [64]uint8) {
		gatherPermutation(perm[:], avx512Offsets[:], 0, 64)
		return perm
	}()

	avx2Gather = func() (perm [32]int8) {
		var b [32]byte
		gatherPermutation(b[:], avx2Offsets[:], avx2Window, 16)
		for i, v := range b {
			perm[i] = int8(v)
		}
		return perm
	}()
)

var (
	avx512Kernel = Kernel{
		Name:   "avx512vbmi",
		Lanes:  avx512Lanes,
		encode: encodeAVX512,
	}

	avx2Kernel = Kernel{
		Name:   "avx2",
		Lanes:  avx2Lanes,
		encode: encodeAVX2,
	}
)

func simdKernels() []Kernel {
	var ks []Kernel
	if cpu.X86.HasAVX512F && cpu.X86.HasAVX512BW && cpu.X86.HasAVX512VBMI {
		ks = append(ks, avx512Kernel)
	}
	if cpu.X86.HasAVX2 {
		ks = append(ks, avx2Kernel)
	}
	return ks
}

// encodeAVX512 encodes 48 bytes into 64 characters per iteration.
// VPERMB addresses all 64 bytes of a register, so both the gather and
// the 64-entry alphabet lookup are a single permute.
func encodeAVX512(dst, src []byte, a *Alphabet) {
	gather := archsimd.LoadUint8x64(&avx512Gather)
	lut := archsimd.LoadUint8x64((*[64]uint8)(a))

	var stage [64]byte
	for len(src) >= avx512Block {
		in := gatherAVX512(src, &stage, gather)
		lookupAVX512(unpackAVX512(in), lut).StoreSlice(dst)

		src = src[avx512Block:]
		dst = dst[avx512Lanes*4:]
	}

	archsimd.ClearAVXUpperBits()
}

func gatherAVX512(src []byte, stage *[64]byte, perm archsimd.Uint8x64) archsimd.Uint8x64 {
	var v archsimd.Uint8x64
	if len(src) >= 64 {
		v = archsimd.LoadUint8x64Slice(src)
	} else {
		// Last block: a full-width load would run past the input.
		copy(stage[:], src[:avx512Block])
		v = archsimd.LoadUint8x64(stage)
	}
	return v.Permute(perm)
}

func unpackAVX512(v archsimd.Uint8x64) archsimd.Uint8x64 {
	x := v.AsUint32x16()
	i0 := x.ShiftAllRight(10).And(archsimd.BroadcastUint32x16(0x0000003f))
	i1 := x.ShiftAllLeft(4).And(archsimd.BroadcastUint32x16(0x00003f00))
	i2 := x.ShiftAllRight(6).And(archsimd.BroadcastUint32x16(0x003f0000))
	i3 := x.ShiftAllLeft(8).And(archsimd.BroadcastUint32x16(0x3f000000))
	return i0.Or(i1).Or(i2).Or(i3).AsUint8x64()
}

func lookupAVX512(indices, lut archsimd.Uint8x64) archsimd.Uint8x64 {
	return lut.Permute(indices)
}

// avx2Tables is the alphabet split in four 16-entry quarters, each
// repeated in both 128-bit halves for the grouped shuffle.
type avx2Tables struct {
	q0, q1, q2, q3 archsimd.Int8x32
}

func loadAVX2Tables(a *Alphabet) avx2Tables {
	var q [4][32]int8
	for i, c := range a {
		q[i/16][i%16] = int8(c)
		q[i/16][16+i%16] = int8(c)
	}
	return avx2Tables{
		q0: archsimd.LoadInt8x32(&q[0]),
		q1: archsimd.LoadInt8x32(&q[1]),
		q2: archsimd.LoadInt8x32(&q[2]),
		q3: archsimd.LoadInt8x32(&q[3]),
	}
}

// encodeAVX2 encodes 24 bytes into 32 characters per iteration.
func encodeAVX2(dst, src []byte, a *Alphabet) {
	gather := archsimd.LoadInt8x32(&avx2Gather)
	tables := loadAVX2Tables(a)

	var stage [32]byte
	for i, o := 0, 0; i+avx2Block <= len(src); i, o = i+avx2Block, o+avx2Lanes*4 {
		in := gatherAVX2(src, i, &stage, gather)
		lookupAVX2(unpackAVX2(in), &tables).StoreSlice(dst[o:])
	}

	archsimd.ClearAVXUpperBits()
}

// gatherAVX2 loads the block starting avx2Window bytes early so that
// lanes 0-3 sit in the low 128 bits and lanes 4-7 in the high 128 bits,
// then shuffles each group into place within its half.
func gatherAVX2(src []byte, i int, stage *[32]byte, perm archsimd.Int8x32) archsimd.Uint8x32 {
	var v archsimd.Uint8x32
	if i >= avx2Window && i-avx2Window+32 <= len(src) {
		v = archsimd.LoadUint8x32Slice(src[i-avx2Window:])
	} else {
		copy(stage[avx2Window:], src[i:i+avx2Block])
		v = archsimd.LoadUint8x32(stage)
	}
	return v.AsInt8x32().PermuteOrZeroGrouped(perm).AsUint8x32()
}

func unpackAVX2(v archsimd.Uint8x32) archsimd.Uint8x32 {
	x := v.AsUint32x8()
	i0 := x.ShiftAllRight(10).And(archsimd.BroadcastUint32x8(0x0000003f))
	i1 := x.ShiftAllLeft(4).And(archsimd.BroadcastUint32x8(0x00003f00))
	i2 := x.ShiftAllRight(6).And(archsimd.BroadcastUint32x8(0x003f0000))
	i3 := x.ShiftAllLeft(8).And(archsimd.BroadcastUint32x8(0x3f000000))
	return i0.Or(i1).Or(i2).Or(i3).AsUint8x32()
}

// lookupAVX2 probes all four quarters with the low four index bits and
// keeps the quarter named by the top two bits.
func lookupAVX2(indices archsimd.Uint8x32, t *avx2Tables) archsimd.Uint8x32 {
	quarter := indices.AsUint16x16().ShiftAllRight(4).AsUint8x32().
		And(archsimd.BroadcastUint8x32(0x03)).AsInt8x32()
	idx := indices.AsInt8x32()

	r := t.q0.PermuteOrZeroGrouped(idx).And(quarter.Equal(archsimd.BroadcastInt8x32(0)).ToInt8x32())
	r = r.Or(t.q1.PermuteOrZeroGrouped(idx).And(quarter.Equal(archsimd.BroadcastInt8x32(1)).ToInt8x32()))
	r = r.Or(t.q2.PermuteOrZeroGrouped(idx).And(quarter.Equal(archsimd.BroadcastInt8x32(2)).ToInt8x32()))
	r = r.Or(t.q3.PermuteOrZeroGrouped(idx).And(quarter.Equal(archsimd.BroadcastInt8x32(3)).ToInt8x32()))
	return r.AsUint8x32()
}
