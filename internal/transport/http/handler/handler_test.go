package handler

import (
	"testing"
)

func TestFormatConfidence(t *testing.T) {
	tests := map[float64]string{
		87:    "87.0",
		87.25: "87.25",
		100:   "100.0",
		0:     "0.0",
		33.3:  "33.3",
	}
	for in, want := range tests {
		if got := formatConfidence(in); got != want {
			t.Errorf("formatConfidence(%v) = %q, want %q", in, got, want)
		}
	}
}
