package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/franoropeza/reportrunner/internal/cli"
)

var rootCmd = &cobra.Command{Use: "reportrunner"}

func main() {
	// Load .env if present; env vars may override config file values
	_ = godotenv.Load()

	cli.SetupCLI(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
