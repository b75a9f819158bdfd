package buf

import (
	"bytes"
	"testing"
)

func TestFit(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		size int
		want []byte
	}{
		{"exact", []byte{1, 2}, 2, []byte{1, 2}},
		{"pad", []byte{1}, 3, []byte{1, 0, 0}},
		{"truncate", []byte{1, 2, 3}, 2, []byte{1, 2}},
		{"nil input", nil, 2, []byte{0, 0}},
		{"zero size", []byte{1}, 0, []byte{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Fit(tt.in, tt.size)
			if !bytes.Equal(got, tt.want) {
				t.Fatalf("Fit(% x, %d) = % x, want % x", tt.in, tt.size, got, tt.want)
			}
		})
	}
	if Fit([]byte{1}, -1) != nil {
		t.Fatal("negative size should return nil")
	}
}

func TestFitDoesNotAlias(t *testing.T) {
	in := []byte{1, 2}
	out := Fit(in, 2)
	out[0] = 9
	if in[0] != 1 {
		t.Fatal("Fit must return a copy")
	}
	if Clone(nil) != nil {
		t.Fatal("Clone(nil) should be nil")
	}
}
