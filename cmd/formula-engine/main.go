// Package main provides the CLI entry point for the formula engine.
package main

import (
	"fmt"
	"os"

	"github.com/oarkflow/log"
	"github.com/spf13/cobra"

	"github.com/test-perspective/excel-formula-engine/formula"
	"github.com/test-perspective/excel-formula-engine/loader"
	"github.com/test-perspective/excel-formula-engine/logger"
	"github.com/test-perspective/excel-formula-engine/viewer"
)

var (
	outputPath string
	pretty     bool
	verbose    bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "formula-engine",
		Short: "Evaluate spreadsheet formulas over a grid of tables",
		Long: `formula-engine loads a workbook (JSON or .xlsx), evaluates every
formula cell, and emits the resolved workbook plus a flat list of
formula cells.`,
		SilenceUsage: true,
	}

	resolveCmd := &cobra.Command{
		Use:   "resolve [input]",
		Short: "Resolve a workbook and write the result as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  runResolve,
	}
	resolveCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file path (default: stdout)")
	resolveCmd.Flags().BoolVar(&pretty, "pretty", false, "Pretty-print JSON output")
	resolveCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log resolution details to stderr")

	viewCmd := &cobra.Command{
		Use:   "view [input]",
		Short: "Resolve a workbook and browse it in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE:  runView,
	}

	rootCmd.AddCommand(resolveCmd, viewCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger() logger.Logger {
	if !verbose {
		return logger.NewNullLogger()
	}
	l := log.Logger{
		Level:  log.DebugLevel,
		Writer: &log.ConsoleWriter{Writer: os.Stderr},
	}
	return logger.NewDefaultLogger(&l)
}

func resolveWorkbook(path string) (*formula.Result, *formula.Workbook, error) {
	wb, err := loader.Load(path)
	if err != nil {
		return nil, nil, err
	}
	result := formula.NewResolver(newLogger()).ResolveWorkbook(wb)
	return result, wb, nil
}

func runResolve(cmd *cobra.Command, args []string) error {
	result, _, err := resolveWorkbook(args[0])
	if err != nil {
		return err
	}
	if err := loader.SaveResult(outputPath, result, pretty); err != nil {
		return fmt.Errorf("write result: %w", err)
	}
	return nil
}

func runView(cmd *cobra.Command, args []string) error {
	_, wb, err := resolveWorkbook(args[0])
	if err != nil {
		return err
	}
	return viewer.New(wb).Run()
}
