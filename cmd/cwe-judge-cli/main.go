// Package main provides the judging service CLI entry point.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "cwe-judge-cli",
		Short: "Remote code execution judge CLI",
		Long:  `Command-line interface for the BV-BRC remote code execution judging service`,
	}

	rootCmd.PersistentFlags().StringP("server", "s", "http://localhost:8080", "Judge service URL")

	rootCmd.AddCommand(newSubmitCmd())
	rootCmd.AddCommand(newCheckCmd())
	rootCmd.AddCommand(newLanguagesCmd())
	rootCmd.AddCommand(newHealthCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
