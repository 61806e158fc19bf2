package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
)

// Flow trend label constants.
const (
	GrowingValue   = "Growing"   // State is accumulating items
	ShrinkingValue = "Shrinking" // State is draining items
	SteadyValue    = "Steady"    // State count is unchanged
)

// Color variables for console output.
var (
	GrowingColor   = color.New(color.FgYellow, color.Bold) // growingColor flags queues that are piling up.
	ShrinkingColor = color.New(color.FgCyan)               // shrinkingColor marks states that are draining.
	SteadyColor    = color.New(color.FgGreen)              // steadyColor represents stable flow.
)

// GetPlainLabel returns a plain text label indicating the flow trend
// based on a state's net count change. This is the core logic used for
// CSV, JSON, and table printing.
func GetPlainLabel(net int) string {
	switch {
	case net > 0:
		return GrowingValue
	case net < 0:
		return ShrinkingValue
	default:
		return SteadyValue
	}
}

// GetColorLabel returns a colored text label for console output (table).
// It uses GetPlainLabel to determine the string, and then applies the appropriate color.
func GetColorLabel(net int) string {
	text := GetPlainLabel(net)

	switch text {
	case GrowingValue:
		return GrowingColor.Sprint(text)
	case ShrinkingValue:
		return ShrinkingColor.Sprint(text)
	default: // "Steady"
		return SteadyColor.Sprint(text)
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. It returns os.Stdout when no path is given.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// GetCacheDBFilePath returns the path to the SQLite DB file for event cache storage.
func GetCacheDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".taigaflow_cache.db"
	}
	return filepath.Join(homeDir, ".taigaflow_cache.db")
}

// GetSnapshotDBFilePath returns the path to the SQLite DB file for snapshot storage.
func GetSnapshotDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".taigaflow_snapshots.db"
	}
	return filepath.Join(homeDir, ".taigaflow_snapshots.db")
}

// TruncateLabel truncates a state label to a maximum width with ellipsis prefix.
// Requires maxWidth > 3 to ensure there's space for both the "..." prefix and at least one character of content.
// Without this check, small maxWidth values could cause slice bounds errors in the truncation calculation.
func TruncateLabel(label string, maxWidth int) string {
	runes := []rune(label)
	if len(runes) > maxWidth && maxWidth > 3 {
		return "..." + string(runes[len(runes)-maxWidth+3:])
	}
	return label
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
