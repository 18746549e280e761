package imaging

import (
	"fmt"
	"math"
)

// Kernel3x3 is a row-major 3x3 convolution matrix.
type Kernel3x3 [3][3]float64

// SharpenKernel returns the normalized sharpening kernel for amount.
//
// The center weight is |-48 + amount*0.38| rounded to two decimals and every
// other entry is -1:
//
//	-1  -1  -1
//	-1   c  -1
//	-1  -1  -1
//
// Each entry is then divided by the sum of all nine (c - 8), so the kernel
// sums to 1 and flat areas keep their brightness. Useful amounts lie roughly
// between 0 (subtle, c=48) and 100 (strong, c=10). The amount is not clamped;
// amounts that put c at exactly 8 have no valid normalization and fail with
// ErrDegenerateKernel.
func SharpenKernel(amount float64) (Kernel3x3, error) {
	center := math.Round(math.Abs(-48+amount*0.38)*100) / 100

	k := Kernel3x3{
		{-1, -1, -1},
		{-1, center, -1},
		{-1, -1, -1},
	}

	norm := k.Sum()
	if math.Abs(norm) < 1e-9 {
		return Kernel3x3{}, fmt.Errorf("%w: amount %.2f", ErrDegenerateKernel, amount)
	}

	for i := range k {
		for j := range k[i] {
			k[i][j] /= norm
		}
	}
	return k, nil
}

// Flat returns the kernel as nine values in row-major order.
func (k Kernel3x3) Flat() [9]float64 {
	var out [9]float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			out[i*3+j] = k[i][j]
		}
	}
	return out
}

// Sum returns the sum of all entries.
func (k Kernel3x3) Sum() float64 {
	var s float64
	for _, v := range k.Flat() {
		s += v
	}
	return s
}
