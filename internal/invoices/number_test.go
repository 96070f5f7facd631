package invoices

import "testing"

func TestNextAfter(t *testing.T) {
	cases := []struct {
		name string
		last string
		want string
	}{
		{name: "first order", last: "", want: "MKNIND1"},
		{name: "increments", last: "MKNIND41", want: "MKNIND42"},
		{name: "no padding", last: "MKNIND9", want: "MKNIND10"},
		{name: "non numeric suffix", last: "MKNINDabc", want: "MKNIND1"},
		{name: "bare prefix", last: "MKNIND", want: "MKNIND1"},
		{name: "foreign prefix", last: "INV7", want: "MKNIND1"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := NextAfter("MKNIND", tc.last); got != tc.want {
				t.Fatalf("NextAfter(%q) = %q, want %q", tc.last, got, tc.want)
			}
		})
	}
}

func TestParseSuffixFlagsAnomalies(t *testing.T) {
	if n, ok := ParseSuffix("MKNIND", "MKNIND12"); !ok || n != 12 {
		t.Fatalf("expected 12 ok, got %d %v", n, ok)
	}
	if n, ok := ParseSuffix("MKNIND", "MKNIND-3"); ok || n != 0 {
		t.Fatalf("negative suffix should be an anomaly, got %d %v", n, ok)
	}
}
