package main

import (
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/steveschnepp/ipxwrapper/ifcache"
	"github.com/steveschnepp/ipxwrapper/ipx"
)

var lookupCmd = &cobra.Command{
	Use:   "lookup NETWORK NODE",
	Short: "Find the interface with the given IPX network and node numbers",
	Example: `  ipx-ifaces lookup 00:00:00:01 00:11:22:33:44:55
  ipx-ifaces --store sqlite://ipx.db lookup 00-00-00-01 00-11-22-33-44-55 --json`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		network, err := ipx.ParseNetwork(args[0])
		if err != nil {
			return err
		}
		node, err := ipx.ParseNode(args[1])
		if err != nil {
			return err
		}

		app, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer app.Close()

		iface, ok := app.cache.ByAddress(cmd.Context(), network, node)
		if !ok {
			return errors.Newf("no interface with network %s and node %s", network, node)
		}
		return renderInterfaces([]ifcache.Interface{iface})
	},
}

func init() {
	rootCmd.AddCommand(lookupCmd)
}
