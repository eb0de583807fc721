package rapidbase64

import (
	"bytes"
	"encoding/base64"
	randv2 "math/rand/v2"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func forEachKernel(t *testing.T, f func(t *testing.T, k Kernel)) {
	t.Helper()
	for _, k := range Kernels() {
		t.Run(k.Name, func(t *testing.T) {
			f(t, k)
		})
	}
}

func TestKernelScenarios(t *testing.T) {
	cases := []struct {
		name     string
		input    []byte
		expected string
	}{
		{"Man", []byte{0x4D, 0x61, 0x6E}, "TWFu"},
		{"zeros", []byte{0x00, 0x00, 0x00}, "AAAA"},
		{"ones", []byte{0xFF, 0xFF, 0xFF}, "////"},
		{"two units", []byte{0x4D, 0x61, 0x6E, 0x00, 0x00, 0x00}, "TWFuAAAA"},
	}

	forEachKernel(t, func(t *testing.T, k Kernel) {
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				// Repeat the scenario until it fills exactly one block.
				require.Zero(t, k.BlockSize()%len(tc.input))
				reps := k.BlockSize() / len(tc.input)
				src := bytes.Repeat(tc.input, reps)
				dst := make([]byte, len(src)/3*4)

				k.EncodeBlocks(dst, src, StdAlphabet)

				require.Equal(t, strings.Repeat(tc.expected, reps), string(dst))
			})
		}
	})
}

func TestKernelsEncodeEveryTriplet(t *testing.T) {
	step := 1
	if testing.Short() {
		step = 251
	}

	var src []byte
	for v := 0; v < 1<<24; v += step {
		src = append(src, byte(v>>16), byte(v>>8), byte(v))
	}

	forEachKernel(t, func(t *testing.T, k Kernel) {
		in := src[:len(src)/k.BlockSize()*k.BlockSize()]
		want := make([]byte, base64.StdEncoding.EncodedLen(len(in)))
		base64.StdEncoding.Encode(want, in)

		got := make([]byte, len(in)/3*4)
		k.EncodeBlocks(got, in, StdAlphabet)
		require.True(t, bytes.Equal(want, got), "encoding differs from encoding/base64")

		decoded, err := base64.StdEncoding.DecodeString(string(got))
		require.NoError(t, err)
		require.True(t, bytes.Equal(in, decoded), "round trip lost data")
	})
}

func TestKernelDeterministic(t *testing.T) {
	forEachKernel(t, func(t *testing.T, k Kernel) {
		src := make([]byte, k.BlockSize()*37)
		_, err := randv2.NewChaCha8([32]byte{1}).Read(src)
		require.NoError(t, err)

		a := make([]byte, len(src)/3*4)
		b := make([]byte, len(src)/3*4)
		k.EncodeBlocks(a, src, URLAlphabet)
		k.EncodeBlocks(b, src, URLAlphabet)
		require.Equal(t, a, b)
	})
}

func TestKernelLengthAndBounds(t *testing.T) {
	const canary = 0xA5

	forEachKernel(t, func(t *testing.T, k Kernel) {
		for units := 0; units <= 9; units++ {
			src := make([]byte, units*k.BlockSize())
			for i := range src {
				src[i] = byte(i * 7)
			}
			orig := bytes.Clone(src)

			// Canaries on both sides of the output region.
			n := len(src) / 3 * 4
			buf := bytes.Repeat([]byte{canary}, n+2*k.OutputSize())
			dst := buf[k.OutputSize() : k.OutputSize()+n+k.OutputSize()]

			k.EncodeBlocks(dst, src, StdAlphabet)

			require.Equal(t, 4*len(src)/3, n)
			require.Equal(t, base64.StdEncoding.EncodeToString(src), string(dst[:n]))
			require.Equal(t, bytes.Repeat([]byte{canary}, k.OutputSize()), buf[:k.OutputSize()])
			require.Equal(t, bytes.Repeat([]byte{canary}, k.OutputSize()), buf[k.OutputSize()+n:])
			require.Equal(t, orig, src, "input was modified")
		}
	})
}

func TestKernelLaneIndependence(t *testing.T) {
	forEachKernel(t, func(t *testing.T, k Kernel) {
		rnd := randv2.New(randv2.NewPCG(1, 2))
		for range 100 {
			units := 1 + rnd.IntN(16)
			src := make([]byte, units*k.BlockSize())
			for i := range src {
				src[i] = byte(rnd.Uint32())
			}

			whole := make([]byte, len(src)/3*4)
			k.EncodeBlocks(whole, src, StdAlphabet)

			var joined []byte
			for u := range units {
				part := make([]byte, k.OutputSize())
				k.EncodeBlocks(part, src[u*k.BlockSize():(u+1)*k.BlockSize()], StdAlphabet)
				joined = append(joined, part...)
			}
			require.Equal(t, whole, joined)
		}
	})
}

func TestKernelPreconditions(t *testing.T) {
	forEachKernel(t, func(t *testing.T, k Kernel) {
		if k.BlockSize() > 3 {
			require.Panics(t, func() {
				k.EncodeBlocks(make([]byte, 4), make([]byte, 3), StdAlphabet)
			})
		}
		require.Panics(t, func() {
			k.EncodeBlocks(make([]byte, k.OutputSize()-1), make([]byte, k.BlockSize()), StdAlphabet)
		})
		require.NotPanics(t, func() {
			k.EncodeBlocks(nil, nil, StdAlphabet)
		})
	})

	require.Panics(t, func() {
		Kernel{Name: "bogus", Lanes: 1}.EncodeBlocks(nil, nil, StdAlphabet)
	})
}

func TestKernelRegistry(t *testing.T) {
	ks := Kernels()
	require.NotEmpty(t, ks)
	require.Equal(t, "generic", ks[len(ks)-1].Name)
	require.Equal(t, ks[0].Name, EncodeKernel())

	for i := 1; i < len(ks); i++ {
		require.GreaterOrEqual(t, ks[i-1].Lanes, ks[i].Lanes)
	}

	k, ok := LookupKernel("generic")
	require.True(t, ok)
	require.Equal(t, genericLanes, k.Lanes)
	require.Equal(t, 24, k.BlockSize())
	require.Equal(t, 32, k.OutputSize())

	_, ok = LookupKernel("nope")
	require.False(t, ok)

	require.Equal(t, "1.0.0", Version())
}

func TestNoSimdEnv(t *testing.T) {
	cases := []struct {
		value    string
		disabled bool
	}{
		{"1", true},
		{"true", true},
		{"0", false},
		{"false", false},
		{"garbage", true},
	}

	for _, tc := range cases {
		t.Run(tc.value, func(t *testing.T) {
			t.Setenv(noSimdEnvVar, tc.value)
			require.Equal(t, tc.disabled, noSimdEnv())
		})
	}
}

func TestGenericOffsets(t *testing.T) {
	requireOffsets(t, genericOffsets[:])
}

// requireOffsets checks an offset table is one group per lane, in order.
func requireOffsets(t *testing.T, offsets []uint32) {
	t.Helper()
	for i, off := range offsets {
		require.Zero(t, off%3)
		require.Equal(t, uint32(i*3), off)
	}
}

func TestGatherPermutation(t *testing.T) {
	offsets := []uint32{0, 3, 6, 9, 12, 15, 18, 21}

	perm := make([]byte, 32)
	gatherPermutation(perm, offsets, 4, 16)

	require.Equal(t, []byte{5, 4, 6, 5}, perm[0:4])
	require.Equal(t, []byte{14, 13, 15, 14}, perm[12:16])
	require.Equal(t, []byte{1, 0, 2, 1}, perm[16:20])
	require.Equal(t, []byte{10, 9, 11, 10}, perm[28:32])

	// Every lane must draw from the 16-byte group it sits in.
	for lane, off := range offsets {
		for _, b := range laneOrder {
			require.Equal(t, (lane*4)/16, int(off+4+b)/16, "lane %d crosses a group", lane)
		}
	}

	full := make([]byte, 64)
	gatherPermutation(full, []uint32{0, 3, 6, 9, 12, 15, 18, 21, 24, 27, 30, 33, 36, 39, 42, 45}, 0, 64)
	require.Equal(t, []byte{1, 0, 2, 1}, full[0:4])
	require.Equal(t, []byte{46, 45, 47, 46}, full[60:64])
}

func TestUnpackGeneric(t *testing.T) {
	// One lane per half of the word, both holding "Man".
	lane := uint64(gatherLane([]byte("Man")))
	r := unpackGeneric(swarRegister{lane | lane<<32})

	idx := []byte{19, 22, 5, 46}
	for i := range 8 {
		require.Equal(t, idx[i%4], byte(r[0]>>(8*i)), "index %d", i)
	}
}

func BenchmarkKernels(b *testing.B) {
	src := make([]byte, 1<<20/48*48)
	_, err := randv2.NewChaCha8([32]byte{}).Read(src)
	require.NoError(b, err)
	dst := make([]byte, len(src)/3*4)

	for _, k := range Kernels() {
		b.Run(k.Name, func(b *testing.B) {
			b.SetBytes(int64(len(src)))
			for b.Loop() {
				k.EncodeBlocks(dst, src, StdAlphabet)
			}
		})
	}

	b.Run("encoding/base64", func(b *testing.B) {
		b.SetBytes(int64(len(src)))
		for b.Loop() {
			base64.StdEncoding.Encode(dst, src)
		}
	})
}
