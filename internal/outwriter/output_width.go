package outwriter

import (
	"os"
	"strconv"

	"github.com/taigaflow/taigaflow/internal/contract"
	"golang.org/x/term"
)

// GetMaxStateColWidth calculates the maximum width for state name columns in
// table output based on terminal width and the number of states shown.
func GetMaxStateColWidth(cfg *contract.Config, stateCount int) int {
	var termWidth int

	// Check for absolute width override from flag/env
	if cfg.Width > 0 {
		termWidth = cfg.Width
	}

	if termWidth == 0 { // Not set by override
		// Get terminal width
		detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detectedWidth <= 0 {
			// Not a terminal. Honor COLUMNS (set by CI and some shells)
			// before falling back to a conservative default.
			if cols, convErr := strconv.Atoi(os.Getenv("COLUMNS")); convErr == nil && cols > 0 {
				termWidth = cols
			} else {
				termWidth = 80
			}
		} else {
			termWidth = detectedWidth
		}
	}

	// Reserve space for the date and total columns with borders/padding
	baseWidth := 22

	if stateCount < 1 {
		stateCount = 1
	}

	// Each state column carries roughly 3 characters of borders and padding
	available := (termWidth-baseWidth)/stateCount - 3
	if available < 5 {
		// Minimum reasonable column width
		return 5
	}
	if available > 30 {
		// Maximum column width to prevent overly wide tables
		return 30
	}
	return available
}
