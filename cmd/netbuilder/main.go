// Command netbuilder edits gene regulatory networks and reports their
// specification and parameter-graph sizes.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dd0wney/cluso-netbuilder/pkg/config"
	"github.com/dd0wney/cluso-netbuilder/pkg/editor"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(os.Stdin, os.Stdout).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}

// rootOptions are the flags shared by every subcommand.
type rootOptions struct {
	configPath string
}

func newRootCmd(in io.Reader, out io.Writer) *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "netbuilder",
		Short:         "Interactive gene regulatory network builder",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetIn(in)
	rootCmd.SetOut(out)
	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Config file path (YAML)")

	rootCmd.AddCommand(
		newServeCmd(opts),
		newTUICmd(opts),
		newREPLCmd(opts),
		newDescribeCmd(opts),
		newWatchCmd(opts),
	)
	return rootCmd
}

// load reads the configuration named by --config, NETBUILDER_* variables
// and the defaults.
func (o *rootOptions) load() (*config.Config, error) {
	return config.Load(o.configPath)
}

// sessionOptions builds local editing options from the editor section.
func sessionOptions(cfg *config.Config) editor.Options {
	return editor.Options{
		Seed:             cfg.Editor.Seed,
		Format:           cfg.SpecificationFormat(),
		VerifyInvariants: cfg.Editor.VerifyInvariants,
	}
}
