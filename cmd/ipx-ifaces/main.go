package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "ipx-ifaces",
	Short: "Inspect the virtual IPX interfaces exposed by this host",
	Long: `ipx-ifaces reads the host's network adapter table, fuses it with the
IPX configuration store and prints the resulting virtual interface list the
way the tunnel itself sees it: enabled adapters only, primary first, node
numbers corrected where drivers misreport them.

The tool is read-only. Point --store at the same backend the tunnel uses to
see live state, or leave it on the default in-process store to inspect bare
adapter enumeration.`,
	SilenceUsage: true,
}

type cliFlags struct {
	configPath string
	storeURL   string
	ttl        string
	logLevel   string
	logFormat  string
	otlpURL    string
	otlpToken  string
	jsonOut    bool
}

var flags cliFlags

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flags.configPath, "config", "c", "", "path to a YAML settings file")
	pf.StringVar(&flags.storeURL, "store", "", "configuration store URL: memory:, sqlite://PATH or redis://HOST (default memory:)")
	pf.StringVar(&flags.ttl, "ttl", "", "interface cache TTL, e.g. 500ms, 10s, 1m (default 5s)")
	pf.StringVar(&flags.logLevel, "log-level", "", "trace, debug, info, warn, error or none")
	pf.StringVar(&flags.logFormat, "log-format", "", "console or json (default console)")
	pf.StringVar(&flags.otlpURL, "otlp", "", "ship logs to this OpenTelemetry collector URL")
	pf.StringVar(&flags.otlpToken, "otlp-token", "", "bearer token for the OTLP collector")
	pf.BoolVar(&flags.jsonOut, "json", false, "print JSON instead of tables")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
