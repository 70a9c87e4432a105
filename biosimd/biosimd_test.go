package biosimd

import "testing"

func TestCleanASCIISeqInplace(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"acgt", "ACGT"},
		{"ACGT", "ACGT"},
		{"acgtn", "ACGTN"},
		{"NNNN", "NNNN"},
		{"xyz", "NNN"},
	}
	for _, c := range cases {
		b := []byte(c.in)
		CleanASCIISeqInplace(b)
		if got := string(b); got != c.want {
			t.Errorf("CleanASCIISeqInplace(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
