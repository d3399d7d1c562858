package executor

import (
	"regexp"
	"strconv"
	"strings"
)

// Counts are scenario totals reported by the engine.
type Counts struct {
	Passed  int
	Failed  int
	Skipped int
}

// SummaryParser extracts scenario counts from engine output. It must not
// fail; output it does not understand yields zero counts.
type SummaryParser interface {
	ParseSummary(text string) Counts
}

var scenarioSummary = regexp.MustCompile(`(\d+) scenarios? passed, (\d+) failed, (\d+) skipped`)

// TextSummaryParser reads the "N scenarios passed, N failed, N skipped"
// line printed by the engine. The last such line wins.
type TextSummaryParser struct{}

func (TextSummaryParser) ParseSummary(text string) Counts {
	var counts Counts
	for _, line := range strings.Split(text, "\n") {
		m := scenarioSummary.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		counts = Counts{Passed: atoi(m[1]), Failed: atoi(m[2]), Skipped: atoi(m[3])}
	}
	return counts
}

func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
