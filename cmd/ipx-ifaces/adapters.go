package main

import (
	"github.com/spf13/cobra"

	"github.com/steveschnepp/ipxwrapper/adapters"
)

var adaptersCmd = &cobra.Command{
	Use:   "adapters",
	Short: "Dump the raw adapter enumeration, before configuration is applied",
	Long: `adapters prints what the OS reports, one row per adapter, including
adapters that are disabled or unconfigured in the store. Useful to find the
hardware address to enable.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer app.Close()

		list, err := adapters.NewSystemSource(app.log).Enumerate(cmd.Context())
		if err != nil {
			return err
		}
		return renderAdapters(list)
	},
}

func init() {
	rootCmd.AddCommand(adaptersCmd)
}
