package executor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTextSummaryParser(t *testing.T) {
	tests := []struct {
		name     string
		output   string
		expected Counts
	}{
		{
			name: "engine summary",
			output: `1 feature passed, 0 failed, 0 skipped
5 scenarios passed, 2 failed, 1 skipped
20 steps passed, 2 failed, 3 skipped, 0 undefined`,
			expected: Counts{Passed: 5, Failed: 2, Skipped: 1},
		},
		{name: "singular", output: "1 scenario passed, 0 failed, 0 skipped", expected: Counts{Passed: 1}},
		{name: "last summary wins", output: "1 scenario passed, 1 failed, 0 skipped\n3 scenarios passed, 0 failed, 0 skipped", expected: Counts{Passed: 3}},
		{name: "no summary", output: "Traceback (most recent call last):\n  boom", expected: Counts{}},
		{name: "empty", output: "", expected: Counts{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, TextSummaryParser{}.ParseSummary(tt.output))
		})
	}
}
