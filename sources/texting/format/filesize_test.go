package format

import (
	"testing"
)

func TestFileSize(t *testing.T) {
	tests := []struct {
		name     string
		bytes    int64
		expected string
	}{
		{
			name:     "Bytes",
			bytes:    512,
			expected: "512 B",
		},
		{
			name:     "Kilobytes",
			bytes:    2048,
			expected: "2 KB",
		},
		{
			name:     "Rounded kilobytes",
			bytes:    1536,
			expected: "1.5 KB",
		},
		{
			name:     "Megabytes",
			bytes:    5 * 1024 * 1024,
			expected: "5 MB",
		},
		{
			name:     "Gigabytes cap",
			bytes:    3 * 1024 * 1024 * 1024,
			expected: "3 GB",
		},
		{
			name:     "Zero",
			bytes:    0,
			expected: "0 B",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FileSize(tt.bytes); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}
