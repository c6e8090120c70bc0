package cli

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

const version = "0.1.0"

// Exit codes returned by Run.
const (
	ExitSuccess      = 0
	ExitUsageError   = 2
	ExitParseError   = 3
	ExitRuntimeError = 4
)

var rootCmd = &cobra.Command{
	Use:   "sift",
	Short: "SQL queries over JSON tables",
	Long:  "Sift runs a restricted SQL SELECT dialect against JSON tables declared in a YAML catalog and emits results as JSON, text, CSV, or Markdown.",
}

// Run executes the root command and returns an exit code.
func Run() int {
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(tablesCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(versionCmd)

	if err := rootCmd.Execute(); err != nil {
		// Cobra already prints the error
		return ExitUsageError
	}

	return exitCode
}

// exitCode is set by command handlers to control the process exit code.
var exitCode = ExitSuccess

var warnf = color.New(color.FgYellow).FprintfFunc()

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print sift version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(os.Stdout, "sift version %s\n", version)
	},
}
