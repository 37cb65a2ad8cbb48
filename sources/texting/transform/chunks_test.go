package transform

import (
	"testing"
)

func TestChunks(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		size     int
		expected []string
	}{
		{
			name:     "Short text stays whole",
			input:    "hello",
			size:     10,
			expected: []string{"hello"},
		},
		{
			name:     "Exact boundary",
			input:    "abcdef",
			size:     3,
			expected: []string{"abc", "def"},
		},
		{
			name:     "Remainder chunk",
			input:    "abcdefg",
			size:     3,
			expected: []string{"abc", "def", "g"},
		},
		{
			name:     "Multibyte runes are not split",
			input:    "привет",
			size:     4,
			expected: []string{"прив", "ет"},
		},
		{
			name:     "Empty input yields no chunks",
			input:    "",
			size:     3,
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Chunks(tt.input, tt.size)
			if len(got) != len(tt.expected) {
				t.Fatalf("expected %d chunks, got %d", len(tt.expected), len(got))
			}
			for i := range got {
				if got[i] != tt.expected[i] {
					t.Errorf("chunk %d: expected %q, got %q", i, tt.expected[i], got[i])
				}
			}
		})
	}
}
