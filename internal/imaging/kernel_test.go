package imaging

import (
	"errors"
	"math"
	"testing"
)

func TestSharpenKernel(t *testing.T) {
	tests := []struct {
		amount     float64
		wantCenter float64
	}{
		// center = round(|-48 + 0.38a|, 2), divided by center-8
		{0, 48.0 / 40},
		{10, 44.2 / 36.2},
		{50, 29.0 / 21},
		{100, 10.0 / 2},
		{200, 28.0 / 20},
		{-50, 67.0 / 59},
	}

	for _, tt := range tests {
		k, err := SharpenKernel(tt.amount)
		if err != nil {
			t.Fatalf("SharpenKernel(%v) failed: %v", tt.amount, err)
		}
		if sum := k.Sum(); math.Abs(sum-1) > 1e-9 {
			t.Errorf("SharpenKernel(%v) sums to %v, want 1", tt.amount, sum)
		}
		if math.Abs(k[1][1]-tt.wantCenter) > 1e-9 {
			t.Errorf("SharpenKernel(%v) center: got %v, want %v", tt.amount, k[1][1], tt.wantCenter)
		}
		if k[0][0] >= 0 || k[0][0] != k[2][2] || k[0][1] != k[1][0] {
			t.Errorf("SharpenKernel(%v) outer entries not uniform negative: %v", tt.amount, k)
		}
	}
}

func TestSharpenKernel_Degenerate(t *testing.T) {
	// 0.38 * 105.26 = 39.9988, so the center rounds to exactly 8.
	_, err := SharpenKernel(105.26)
	if !errors.Is(err, ErrDegenerateKernel) {
		t.Errorf("got %v, want ErrDegenerateKernel", err)
	}
}

func TestKernel3x3_Flat(t *testing.T) {
	k := Kernel3x3{
		{1, 2, 3},
		{4, 5, 6},
		{7, 8, 9},
	}
	want := [9]float64{1, 2, 3, 4, 5, 6, 7, 8, 9}
	if got := k.Flat(); got != want {
		t.Errorf("Flat: got %v, want %v", got, want)
	}
	if got := k.Sum(); got != 45 {
		t.Errorf("Sum: got %v, want 45", got)
	}
}
