// main is the entry point for the taigaflow CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/taigaflow/taigaflow/cmd"
	"github.com/taigaflow/taigaflow/internal/iocache"
)

func main() {
	// Local .env files carry auth tokens during development. Missing files are fine.
	_ = godotenv.Load()

	err := cmd.Execute()

	iocache.CloseStores()
	if profErr := cmd.StopProfiling(); profErr != nil {
		fmt.Fprintln(os.Stderr, "Warning: could not stop profiling:", profErr)
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
