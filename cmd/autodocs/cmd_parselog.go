package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"autodocs/internal/fsio"
	"autodocs/internal/logparse"
)

var parseLogFlags struct {
	outputFile string
}

var parseLogCmd = &cobra.Command{
	Use:   "parse-log <build-log>",
	Short: "Extract missing-documentation findings from a dotnet build log",
	Long: `Parse a dotnet build log for ` + logparse.Marker + ` warnings and print the
affected files with their undocumented members as JSON, without
rewriting anything.`,
	Args: cobra.ExactArgs(1),
	RunE: runParseLog,
}

func init() {
	f := parseLogCmd.Flags()
	f.StringVarP(&parseLogFlags.outputFile, "output-file", "o", "", "Write the findings JSON here instead of stdout")
}

func runParseLog(cmd *cobra.Command, args []string) error {
	text, err := fsio.ReadText(args[0])
	if err != nil {
		return fmt.Errorf("read build log: %w", err)
	}

	findings := logparse.Parse(text)
	if findings.Skipped() > 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "skipped %d malformed %s lines\n", findings.Skipped(), logparse.Marker)
	}

	data, err := json.MarshalIndent(findings, "", "  ")
	if err != nil {
		return fmt.Errorf("encode findings: %w", err)
	}

	if parseLogFlags.outputFile != "" {
		return fsio.WriteText(parseLogFlags.outputFile, string(data)+"\n")
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}
