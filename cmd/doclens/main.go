package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/doclens/doclens-cli/internal/adapters/driving/cli"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	// A missing .env is fine; variables may come from the shell.
	_ = godotenv.Load()

	if err := cli.Execute(version); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
