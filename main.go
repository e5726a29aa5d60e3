package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/giygas/drug-mentions/cli"
)

func main() {
	// A missing .env is fine, the environment is used as is
	_ = godotenv.Load()

	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
