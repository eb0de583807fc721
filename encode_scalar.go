package rapidbase64

// encodeScalar encodes src one group at a time and pads the final
// partial group with pad unless pad is NoPadding. It returns the number
// of bytes written to dst.
func encodeScalar(dst, src []byte, a *Alphabet, pad rune) int {
	di, si := 0, 0
	n := len(src) / 3 * 3
	for si < n {
		val := uint(src[si])<<16 | uint(src[si+1])<<8 | uint(src[si+2])

		dst[di+0] = a[val>>18&0x3f]
		dst[di+1] = a[val>>12&0x3f]
		dst[di+2] = a[val>>6&0x3f]
		dst[di+3] = a[val&0x3f]

		si += 3
		di += 4
	}

	remain := len(src) - si
	if remain == 0 {
		return di
	}

	val := uint(src[si]) << 16
	if remain == 2 {
		val |= uint(src[si+1]) << 8
	}

	dst[di+0] = a[val>>18&0x3f]
	dst[di+1] = a[val>>12&0x3f]

	switch remain {
	case 2:
		dst[di+2] = a[val>>6&0x3f]
		if pad != NoPadding {
			dst[di+3] = byte(pad)
			return di + 4
		}
		return di + 3
	default:
		if pad != NoPadding {
			dst[di+2] = byte(pad)
			dst[di+3] = byte(pad)
			return di + 4
		}
		return di + 2
	}
}
