package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dd0wney/cluso-netbuilder/pkg/editor"
)

const replPrompt = "netbuilder> "

func newREPLCmd(root *rootOptions) *cobra.Command {
	var empty bool

	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Edit a network interactively, one command per line",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.load()
			if err != nil {
				return err
			}
			opts := sessionOptions(cfg)
			if empty {
				opts.Seed = false
			}
			session := editor.NewSession(opts)
			defer session.Close()

			r := newREPL(session, cmd.InOrStdin(), cmd.OutOrStdout())
			return r.run(cmd.Context())
		},
	}
	cmd.Flags().BoolVar(&empty, "empty", false, "Start from an empty network instead of the seed")
	return cmd
}

// REPL reads command lines and prints the recomputed report after each one.
type REPL struct {
	session *editor.Session
	scanner *bufio.Scanner
	out     io.Writer
}

func newREPL(session *editor.Session, in io.Reader, out io.Writer) *REPL {
	return &REPL{
		session: session,
		scanner: bufio.NewScanner(in),
		out:     out,
	}
}

func (r *REPL) run(ctx context.Context) error {
	fmt.Fprintln(r.out, "Type 'help' for available commands, 'exit' to quit")
	fmt.Fprintln(r.out)
	fmt.Fprint(r.out, r.session.Report().Text())

	for {
		fmt.Fprint(r.out, replPrompt)

		if !r.scanner.Scan() {
			fmt.Fprintln(r.out)
			return r.scanner.Err()
		}
		if err := ctx.Err(); err != nil {
			return nil
		}

		input := strings.TrimSpace(r.scanner.Text())
		if input == "" || strings.HasPrefix(input, "#") {
			continue
		}
		if input == "exit" || input == "quit" {
			fmt.Fprintln(r.out, "Goodbye!")
			return nil
		}

		r.execute(ctx, input)
		fmt.Fprintln(r.out)
	}
}

func (r *REPL) execute(ctx context.Context, input string) {
	switch strings.ToLower(input) {
	case "help":
		r.showHelp()
		return
	case "show", "report":
		fmt.Fprint(r.out, r.session.Report().Text())
		return
	case "spec":
		fmt.Fprint(r.out, r.session.Report().SpecificationText())
		return
	case "components":
		r.showComponents(r.session.Report())
		return
	case "json":
		data, err := json.MarshalIndent(r.session.Report(), "", "  ")
		if err != nil {
			fmt.Fprintf(r.out, "error: %v\n", err)
			return
		}
		fmt.Fprintln(r.out, string(data))
		return
	}

	cmd, err := editor.ParseCommand(input)
	if err != nil {
		fmt.Fprintf(r.out, "error: %v\n", err)
		return
	}
	report, err := r.session.Execute(ctx, cmd)
	if err != nil {
		fmt.Fprintf(r.out, "rejected: %v\n", err)
		return
	}
	fmt.Fprint(r.out, report.Text())
}

func (r *REPL) showComponents(report editor.Report) {
	for _, c := range report.Components {
		status := ""
		if !c.Classified {
			status = "  (unsupported)"
		}
		fmt.Fprintf(r.out, "%-5s %-10s key=%-12q factor=%d%s\n", c.Name, c.Role, c.Key, c.Factor, status)
	}
}

func (r *REPL) showHelp() {
	fmt.Fprint(r.out, `Network edits:
  node [x y]        add a node, optionally at a position
  link S T          add an activating link S -> T
  unlink S T        remove the link S -> T
  remove N          remove node N and everything attached to it
  toggle S T        switch S -> T between activating and repressing
  merge I J K       AND input I with input J in the logic of K
  detach I K        give input I its own group in the logic of K

Selection:
  select N | select S T | clear | flip | delete | selfloop | connect T
  pick I | root

Display:
  show | spec | components | json | help | exit

Node ids may be written 3 or X3.
`)
}
