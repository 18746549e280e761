package engine

import (
	"errors"
	"testing"

	"github.com/ironsheep/image-transform/internal/imaging"
)

// fakeDetector reports the kinds it holds as available.
type fakeDetector map[Kind]bool

func (f fakeDetector) Available(k Kind) bool { return f[k] }

func TestResolve(t *testing.T) {
	both := fakeDetector{Bild: true, Imaging: true}
	onlyBild := fakeDetector{Bild: true}
	onlyImaging := fakeDetector{Imaging: true}

	tests := []struct {
		name      string
		detector  Detector
		requested string
		ext       string
		want      Kind
	}{
		{"default is bild", both, "", "jpg", Bild},
		{"bild", both, "bild", "jpg", Bild},
		{"imaging", both, "imaging", "jpg", Imaging},
		{"auto prefers imaging", both, "auto", "jpg", Imaging},
		{"case insensitive", both, " AUTO ", "jpg", Imaging},
		{"unknown retried as auto", both, "magick", "jpg", Imaging},
		{"imaging falls back to bild", onlyBild, "imaging", "png", Bild},
		{"auto falls back to bild", onlyBild, "auto", "png", Bild},
		{"bild falls back to imaging", onlyImaging, "bild", "png", Imaging},
		{"default falls back to imaging", onlyImaging, "", "png", Imaging},
		{"unknown with only bild", onlyBild, "gd", "png", Bild},
		{"gif without gate", both, "auto", "gif", Imaging},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(tt.detector, tt.requested, tt.ext)
			if err != nil {
				t.Fatalf("Resolve failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestResolve_GIFGate(t *testing.T) {
	both := fakeDetector{Bild: true, Imaging: true}

	tests := []struct {
		requested string
		ext       string
		want      Kind
	}{
		{"auto", "gif", Bild},
		{"imaging", ".GIF", Bild},
		{"auto", "png", Imaging},
		{"bild", "gif", Bild},
	}

	for _, tt := range tests {
		got, err := Resolve(both, tt.requested, tt.ext, WithGIFGate())
		if err != nil {
			t.Fatalf("Resolve(%q, %q) failed: %v", tt.requested, tt.ext, err)
		}
		if got != tt.want {
			t.Errorf("Resolve(%q, %q): got %v, want %v", tt.requested, tt.ext, got, tt.want)
		}
	}

	// With only imaging available the gate leaves nothing to pick.
	_, err := Resolve(fakeDetector{Imaging: true}, "auto", "gif", WithGIFGate())
	if !errors.Is(err, imaging.ErrUnsupportedLibrary) {
		t.Errorf("got %v, want ErrUnsupportedLibrary", err)
	}
}

func TestResolve_NothingAvailable(t *testing.T) {
	for _, requested := range []string{"", "bild", "imaging", "auto", "other"} {
		_, err := Resolve(fakeDetector{}, requested, "jpg")
		if !errors.Is(err, imaging.ErrUnsupportedLibrary) {
			t.Errorf("Resolve(%q): got %v, want ErrUnsupportedLibrary", requested, err)
		}
	}
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		name string
		want Kind
		ok   bool
	}{
		{"bild", Bild, true},
		{"Imaging", Imaging, true},
		{" bild ", Bild, true},
		{"auto", None, false},
		{"", None, false},
	}
	for _, tt := range tests {
		got, ok := ParseKind(tt.name)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseKind(%q): got (%v, %v), want (%v, %v)", tt.name, got, ok, tt.want, tt.ok)
		}
	}

	if Bild.String() != "bild" || Imaging.String() != "imaging" || None.String() != "none" {
		t.Error("unexpected Kind names")
	}
}
