package rapidbase64

// laneOrder is where a group's bytes land inside its 32-bit lane. With
// the lane read little endian as [b1 b0 b2 b1], every index is a fixed
// shift and mask away.
var laneOrder = [4]uint32{1, 0, 2, 1}

// gatherPermutation fills perm with byte indices that move each group
// named by offsets into its lane. window is the distance between the
// start of the loaded register and the block; group is the span a
// shuffle can address (16 for grouped shuffles, 64 for a full VPERMB).
func gatherPermutation(perm []byte, offsets []uint32, window, group uint32) {
	for lane, off := range offsets {
		for k, b := range laneOrder {
			pos := off + window + b
			perm[lane*4+k] = byte(pos % group)
		}
	}
}
