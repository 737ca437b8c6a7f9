package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"go.nanomsg.org/mangos/v3"

	"github.com/dd0wney/cluso-netbuilder/pkg/broadcast"
	"github.com/dd0wney/cluso-netbuilder/pkg/editor"
)

const watchPoll = time.Second

func newWatchCmd(root *rootOptions) *cobra.Command {
	var (
		addr    string
		session string
		count   int
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print reports broadcast by a running server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				cfg, err := root.load()
				if err != nil {
					return err
				}
				addr = cfg.Broadcast.Addr
			}

			sub, err := broadcast.Dial(addr, watchPoll)
			if err != nil {
				return err
			}
			defer sub.Close()

			fmt.Fprintf(cmd.ErrOrStderr(), "watching %s\n", addr)
			return watchReports(cmd.Context(), sub, cmd.OutOrStdout(), session, count)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Broadcast address (defaults to broadcast.addr)")
	cmd.Flags().StringVar(&session, "session", "", "Only print reports of this session")
	cmd.Flags().IntVarP(&count, "count", "n", 0, "Stop after this many reports (0 = until interrupted)")
	return cmd
}

// reportReceiver is the part of broadcast.Subscriber watch needs.
type reportReceiver interface {
	Recv(v any) error
}

// watchReports prints received reports until ctx is done or limit reports
// have been printed. Receive timeouts only poll ctx.
func watchReports(ctx context.Context, rx reportReceiver, out io.Writer, session string, limit int) error {
	printed := 0
	for limit <= 0 || printed < limit {
		if ctx.Err() != nil {
			return nil
		}

		var report editor.Report
		err := rx.Recv(&report)
		switch {
		case errors.Is(err, mangos.ErrRecvTimeout):
			continue
		case errors.Is(err, mangos.ErrClosed):
			return nil
		case err != nil:
			return fmt.Errorf("receive report: %w", err)
		}
		if session != "" && report.Session != session {
			continue
		}

		fmt.Fprintf(out, "== session %s revision %d\n", report.Session, report.Revision)
		fmt.Fprint(out, report.Text())
		printed++
	}
	return nil
}
