package main

import (
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the virtual IPX interfaces",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer app.Close()

		return renderInterfaces(app.cache.Interfaces(cmd.Context()))
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
