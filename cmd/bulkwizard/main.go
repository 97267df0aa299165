package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:   "bulkwizard",
	Short: "Bulk employee change wizard",
	Long: `Bulk employee change wizard with simulated validation and execution.

Without a subcommand the HTTP server is started (same as "bulkwizard serve").`,
	Version:      version,
	SilenceUsage: true,
	RunE:         runServe,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	addServeFlags(rootCmd)
}

var (
	successColor = color.New(color.FgGreen)
	infoColor    = color.New(color.FgCyan)
	warnColor    = color.New(color.FgYellow, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
	headingColor = color.New(color.Bold)
)

func printSuccess(w io.Writer, format string, args ...any) {
	successColor.Fprint(w, "✓ ")
	fmt.Fprintf(w, format+"\n", args...)
}

func printInfo(w io.Writer, format string, args ...any) {
	infoColor.Fprint(w, "→ ")
	fmt.Fprintf(w, format+"\n", args...)
}

func printWarning(w io.Writer, format string, args ...any) {
	warnColor.Fprint(w, "! ")
	fmt.Fprintf(w, format+"\n", args...)
}

func printError(w io.Writer, format string, args ...any) {
	errorColor.Fprint(w, "✗ ")
	fmt.Fprintf(w, format+"\n", args...)
}

func printHeading(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w)
	headingColor.Fprintf(w, format+"\n", args...)
}
