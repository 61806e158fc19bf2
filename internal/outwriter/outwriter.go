// Package outwriter has output and writer logic.
package outwriter

import (
	"fmt"

	"github.com/taigaflow/taigaflow/internal/contract"
)

// LogGenerateHeader prints a concise, 2-line header for each generation run.
func LogGenerateHeader(cfg *contract.Config) {
	prefix1, prefix2 := "", ""
	if cfg.UseEmojis {
		prefix1, prefix2 = "🔎 ", "📅 "
	}

	// Line 1: The generation summary (Project and Granularity)
	fmt.Printf("%sProject: %s (Granularity: %s)\n", prefix1, cfg.ProjectSlug, cfg.Granularity)

	// Line 2: The actual date range being covered
	fmt.Printf("%sRange: %s → %s\n", prefix2,
		cfg.GetWindowStartTime().Format(contract.DateTimeFormat),
		cfg.GetWindowEndTime().Format(contract.DateTimeFormat))
}
