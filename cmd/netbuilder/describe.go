package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/dd0wney/cluso-netbuilder/pkg/editor"
	"github.com/dd0wney/cluso-netbuilder/pkg/specification"
)

// Report output formats of describe.
const (
	outputText = "text"
	outputJSON = "json"
	outputYAML = "yaml"
)

func newDescribeCmd(root *rootOptions) *cobra.Command {
	var (
		output string
		format string
		empty  bool
	)

	cmd := &cobra.Command{
		Use:   "describe [script]",
		Short: "Run a command script and print the resulting report",
		Long: `Runs a command script (a file, or stdin when omitted or "-") against a new
session and prints the report of the final network.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.load()
			if err != nil {
				return err
			}
			opts := sessionOptions(cfg)
			if empty {
				opts.Seed = false
			}
			if format != "" {
				f, err := specification.ParseFormat(format)
				if err != nil {
					return err
				}
				opts.Format = f
			}

			in := cmd.InOrStdin()
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}

			report, err := describe(cmd.Context(), opts, in)
			if err != nil {
				return err
			}
			return writeReport(cmd.OutOrStdout(), report, output)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", outputText, "Output format: text, json or yaml")
	cmd.Flags().StringVar(&format, "format", "", "Specification syntax: canonical or dsgrn (overrides editor.format)")
	cmd.Flags().BoolVar(&empty, "empty", false, "Start from an empty network instead of the seed")
	return cmd
}

func describe(ctx context.Context, opts editor.Options, in io.Reader) (editor.Report, error) {
	stmts, err := editor.ParseScript(in)
	if err != nil {
		return editor.Report{}, err
	}
	session := editor.NewSession(opts)
	defer session.Close()

	return editor.RunScript(ctx, session, stmts)
}

func writeReport(w io.Writer, report editor.Report, output string) error {
	switch output {
	case outputText:
		_, err := io.WriteString(w, report.Text())
		return err
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	case outputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(report); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown output format %q (want text, json or yaml)", output)
	}
}
