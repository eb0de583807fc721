package rapidbase64

import (
	"fmt"
)

var version = 0x010000

// Version returns the version of the library.
func Version() string {
	return fmt.Sprintf("%d.%d.%d", version>>16&0xff, version>>8&0xff, version&0xff)
}

// EncodeKernel returns the name of the kernel used by encodings that were
// not given one with [Encoding.WithKernel].
func EncodeKernel() string {
	return activeKernel.Name
}
