//go:build !goexperiment.simd || !amd64

package rapidbase64

// Vector kernels need GOEXPERIMENT=simd on amd64.
func simdKernels() []Kernel {
	return nil
}
