package rapidbase64

// MaxLength returns the length of the padded base64 encoding of length
// input bytes, including the CRLF separators an [Encoder] configured with
// lineLength writes. lineLength <= 0 means no wrapping.
func MaxLength(length, lineLength int) int {
	ret := (length + 2) / 3 * 4

	if lineLength <= 0 || ret == 0 {
		return ret
	}
	return ret + 2*((ret-1)/lineLength)
}
