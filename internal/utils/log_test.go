package utils

import "testing"

func TestTruncateForLog(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		limit  int
		expect string
	}{
		{name: "non-positive limit", input: "Senior Go Engineer", limit: 0, expect: ""},
		{name: "fits", input: "Go Engineer", limit: 20, expect: "Go Engineer"},
		{name: "cut", input: "Senior Go Engineer", limit: 6, expect: "Senior..."},
		{name: "prompt on one line", input: "TARGET JOB:\n  Go Engineer\n\nPROFILE:\t{}", limit: 100, expect: "TARGET JOB: Go Engineer PROFILE: {}"},
		{name: "cut after flattening", input: "  Go\n\nEngineer  ", limit: 5, expect: "Go En..."},
		{name: "runes", input: "Zürich, Schweiz", limit: 6, expect: "Zürich..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := TruncateForLog(tt.input, tt.limit); got != tt.expect {
				t.Fatalf("expected %q, got %q", tt.expect, got)
			}
		})
	}
}
