package main

import (
	"fmt"
	"os"
	"runtime"

	errs "feedharvest/pkg/errors"
	"feedharvest/pkg/ui"

	"github.com/spf13/cobra"
)

var (
	// Version information
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"

	// Global flags
	configFile    string
	logLevel      string
	noColor       bool
	notifications bool
	quiet         bool
)

// rootCmd crawls by default when no subcommand is given
var rootCmd = &cobra.Command{
	Use:   "feedharvest",
	Short: "Harvest posts from a live search feed into JSON and CSV",
	Long: `feedharvest opens an authenticated browser session, runs a live search,
and scrolls the results feed until it has collected the requested number of
distinct posts, the feed stops growing, or the round cap is reached.

The first run opens a visible browser window for an interactive login. The
session cookies are cached and reused on later runs, which can then run
headless.`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if quiet {
			ui.SetQuietMode(true)
			if !cmd.Flags().Changed("log-level") {
				logLevel = "error"
			}
		}
		if noColor {
			ui.SetColor(false)
		}
	},
	Args: cobra.NoArgs,
	RunE: runCrawl,
}

// Execute runs the command tree and returns the process exit code
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return errs.ExitCode(err)
	}
	return 0
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default is ./feedharvest.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().BoolVar(&notifications, "notifications", false, "send a desktop notification when the crawl ends")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress all output except errors")

	rootCmd.SetVersionTemplate(`feedharvest {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.SetErr(os.Stderr)
}
