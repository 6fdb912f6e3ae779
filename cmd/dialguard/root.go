package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"veritel-hq/dialguard/pkg/cli"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "dialguard",
	Short: "DialGuard - pre-action compliance decision engine",
	Long: `DialGuard is a compliance decision engine that clears outbound contact
attempts before a dialer places them.

Each clearance request runs a fixed registry of compliance rules:
  - Account state (permanent hold, attorney representation, bankruptcy)
  - Consent revocation and legal holds
  - Do-not-contact suppression lists
  - Local calling window, frequency caps, and contact cooldowns
  - Jurisdiction notices and claim age warnings

Every rule evaluated leaves one entry in an append-only, hash-chained
decision record. When a dependency fails, DialGuard fails closed: the
attempt is denied, never waved through.

For more information, visit: https://github.com/veritel-hq/dialguard`,
	Version: Version,
}

// Execute runs the root command and maps typed errors to exit codes:
// 1 for command failures, 2 for config problems, 3 for a clearance
// check that denied the attempt.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)

		var coded cli.ExitCoder
		if errors.As(err, &coded) {
			os.Exit(coded.ExitCode())
		}
		os.Exit(cli.ExitFailure)
	}
}

func init() {
	// Global persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// cobra's built-in completion command covers bash/zsh/fish/pwsh
	rootCmd.CompletionOptions.DisableDefaultCmd = false
}
