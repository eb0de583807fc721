package rapidbase64

import "encoding/binary"

// The generic kernel runs the vector pipeline on plain 64-bit words, two
// 32-bit lanes per word.
const (
	genericLanes = 8
	genericBlock = genericLanes * 3
	genericWords = genericLanes / 2
)

var genericOffsets = [genericLanes]uint32{0, 3, 6, 9, 12, 15, 18, 21}

var genericKernel = Kernel{
	Name:   "generic",
	Lanes:  genericLanes,
	encode: encodeGeneric,
}

// swarRegister holds one iteration worth of lanes.
type swarRegister [genericWords]uint64

func gatherGeneric(block []byte) (r swarRegister) {
	_ = block[genericBlock-1]
	for w := range r {
		lo, hi := genericOffsets[2*w], genericOffsets[2*w+1]
		r[w] = uint64(gatherLane(block[lo:lo+3])) | uint64(gatherLane(block[hi:hi+3]))<<32
	}
	return r
}

// gatherLane lays out one group as [b1 b0 b2 b1].
func gatherLane(g []byte) uint32 {
	_ = g[2]
	return uint32(g[laneOrder[0]]) | uint32(g[laneOrder[1]])<<8 | uint32(g[laneOrder[2]])<<16 | uint32(g[laneOrder[3]])<<24
}

// unpackGeneric turns every [b1 b0 b2 b1] lane into four 6-bit indices,
// one per byte. No bit crosses from one lane into its neighbour's mask.
func unpackGeneric(r swarRegister) swarRegister {
	for w, x := range r {
		r[w] = x>>10&0x0000003f0000003f |
			x<<4&0x00003f0000003f00 |
			x>>6&0x003f0000003f0000 |
			x<<8&0x3f0000003f000000
	}
	return r
}

func lookupGeneric(r swarRegister, a *Alphabet) swarRegister {
	for w, x := range r {
		r[w] = uint64(a[x&0x3f]) |
			uint64(a[x>>8&0x3f])<<8 |
			uint64(a[x>>16&0x3f])<<16 |
			uint64(a[x>>24&0x3f])<<24 |
			uint64(a[x>>32&0x3f])<<32 |
			uint64(a[x>>40&0x3f])<<40 |
			uint64(a[x>>48&0x3f])<<48 |
			uint64(a[x>>56&0x3f])<<56
	}
	return r
}

func storeGeneric(dst []byte, r swarRegister) {
	_ = dst[genericLanes*4-1]
	for w, x := range r {
		binary.LittleEndian.PutUint64(dst[w*8:], x)
	}
}

func encodeGeneric(dst, src []byte, a *Alphabet) {
	for len(src) >= genericBlock {
		storeGeneric(dst, lookupGeneric(unpackGeneric(gatherGeneric(src)), a))
		src = src[genericBlock:]
		dst = dst[genericLanes*4:]
	}
}
