// Package cli provides the command-line interface for prmptr.
package cli

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// formatMode returns the execution mode name title-cased for display,
// e.g. "sequential" becomes "Sequential".
func formatMode(mode string) string {
	return cases.Title(language.English).String(mode)
}

// formatDuration converts milliseconds to a human-readable duration string.
// Sub-second runs keep millisecond precision so fast chains don't all
// display as "0s".
func formatDuration(ms int64) string {
	if ms < 1000 {
		return fmt.Sprintf("%dms", ms)
	}
	seconds := ms / 1000
	if seconds < 60 {
		return fmt.Sprintf("%ds", seconds)
	}
	minutes := seconds / 60
	secs := seconds % 60
	if secs == 0 {
		return fmt.Sprintf("%dm", minutes)
	}
	return fmt.Sprintf("%dm %ds", minutes, secs)
}

// formatFragmentList renders fragment names as a comma-separated list of
// [[name]] references.
func formatFragmentList(names []string) string {
	refs := make([]string, len(names))
	for i, name := range names {
		refs[i] = "[[" + name + "]]"
	}
	return strings.Join(refs, ", ")
}
