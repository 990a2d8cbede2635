package utils

import "testing"

func TestAtoiDefault(t *testing.T) {
	cases := []struct {
		s    string
		def  int
		want int
	}{
		// missing query param -> default page size
		{"", 20, 20},
		// valid ints
		{"3", 1, 3},
		{"-1", 1, -1},
		{"0007", 99, 7},
		// malformed -> default (no trimming is done)
		{"abc", 1, 1},
		{" 3", 1, 1},
		// overflow -> default
		{"999999999999999999999999", 0, 0},
	}

	for _, tc := range cases {
		if got := AtoiDefault(tc.s, tc.def); got != tc.want {
			t.Fatalf("AtoiDefault(%q, %d) = %d; want %d", tc.s, tc.def, got, tc.want)
		}
	}
}
