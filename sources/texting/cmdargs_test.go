package texting

import (
	"reflect"
	"testing"
)

func TestParseCmdArgs(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "Empty input",
			input:    "",
			expected: nil,
		},
		{
			name:     "Blank input",
			input:    "   ",
			expected: nil,
		},
		{
			name:     "Plain words",
			input:    "block someuser",
			expected: []string{"block", "someuser"},
		},
		{
			name:     "Collapses repeated spaces",
			input:    "grant   someuser    manage_files",
			expected: []string{"grant", "someuser", "manage_files"},
		},
		{
			name:     "Single quotes group words",
			input:    "add 'My Channel'",
			expected: []string{"add", "My Channel"},
		},
		{
			name:     "Escaped single quote stays literal",
			input:    `it\'s fine`,
			expected: []string{"it's", "fine"},
		},
		{
			name:     "Escaped backslash stays literal",
			input:    `a\\b`,
			expected: []string{`a\b`},
		},
		{
			name:     "Other escapes keep the backslash",
			input:    `My\ Channel`,
			expected: []string{`My\ Channel`},
		},
		{
			name:     "Unterminated quote keeps the tail",
			input:    "add 'half open",
			expected: []string{"add", "half open"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseCmdArgs(tt.input)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("ParseCmdArgs(%q) = %#v, want %#v", tt.input, got, tt.expected)
			}
		})
	}
}
