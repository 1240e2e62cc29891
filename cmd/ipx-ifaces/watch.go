package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	str2duration "github.com/xhit/go-str2duration/v2"

	"github.com/steveschnepp/ipxwrapper/tui"
)

var watchEvery string

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Render the interface table live, redrawing when it changes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		interval, err := str2duration.ParseDuration(watchEvery)
		if err != nil {
			return errors.Wrapf(err, "invalid --interval %q", watchEvery)
		}
		if interval <= 0 {
			return errors.Newf("interval must be positive, got %s", interval)
		}

		app, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer app.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		// The fingerprint moves exactly when the snapshot's content does, so
		// polls that find nothing new cost one hash comparison and no redraw.
		var last uint64
		for {
			if fp := app.cache.Fingerprint(ctx); fp != last {
				last = fp
				ifaces := app.cache.Interfaces(ctx)

				tui.ClearScreen()
				fmt.Println(tui.Title("IPX interfaces"))
				tui.Table(interfaceHeaders, interfaceRows(ifaces))
				fmt.Println(tui.Muted(fmt.Sprintf("%d interface(s) · %s · ctrl-c to quit",
					len(ifaces), time.Now().Format(time.TimeOnly))))
			}

			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
			}
		}
	},
}

func init() {
	watchCmd.Flags().StringVar(&watchEvery, "interval", "1s", "poll interval, e.g. 500ms, 2s")
	rootCmd.AddCommand(watchCmd)
}
