package cli

import (
	"io"
	"time"

	"github.com/briandowns/spinner"
)

// StartSpinner shows a spinner with suffix on out until the returned
// function is called. When enabled is false nothing is shown.
func StartSpinner(out io.Writer, enabled bool, suffix string) func() {
	if !enabled {
		return func() {}
	}
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(out))
	s.Suffix = " " + suffix
	s.Start()
	return s.Stop
}
