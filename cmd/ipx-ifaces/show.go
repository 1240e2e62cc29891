package main

import (
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/steveschnepp/ipxwrapper/ifcache"
)

var showCmd = &cobra.Command{
	Use:   "show INDEX",
	Short: "Show the interface at the given position, counting from zero",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		i, err := strconv.Atoi(args[0])
		if err != nil {
			return errors.Wrapf(err, "invalid index %q", args[0])
		}

		app, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer app.Close()

		iface, ok := app.cache.ByIndex(cmd.Context(), i)
		if !ok {
			return errors.Newf("no interface at index %d (count is %d)", i, app.cache.Count(cmd.Context()))
		}
		return renderInterfaces([]ifcache.Interface{iface})
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
}
