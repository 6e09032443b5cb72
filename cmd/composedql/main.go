// Command composedql parses composed queries and prints the resulting trees.
//
// Usage:
//
//	composedql parse 'name,address.city,~photos(url,caption).filter(recent)'
//	composedql parse --format compact '~activity(login.date)'
//	composedql field '~photo' 'profile,cover'
//	composedql check 'a,b' 'a,~b())'
//
// Settings may be read from a TOML file passed with --config:
//
//	[parser]
//	allow_missing = false
//	lenient = false
//
//	[output]
//	format = "yaml"
//
//	[log]
//	level = "debug"
package main

import (
	"os"

	logging "github.com/ipfs/go-log/v2"
	"github.com/relux-works/composedql/composedql"
	"github.com/relux-works/composedql/composedql/cobraext"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var (
		configPath string
		logLevel   string
	)
	settings := &cobraext.Settings{Parser: &composedql.ParserConfig{}}

	root := &cobra.Command{
		Use:          "composedql",
		Short:        "Parse composed field-selection queries",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig(configPath)
			if err != nil {
				return err
			}
			if logLevel != "" {
				cfg.Log.Level = logLevel
			}
			if err := logging.SetLogLevel("composedql", cfg.Log.Level); err != nil {
				return err
			}
			settings.Format = cfg.Output.Format
			settings.Lenient = cfg.Parser.Lenient
			settings.Parser.AllowMissing = cfg.Parser.AllowMissing
			return nil
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "Path to a TOML config file")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", `Log level ("debug", "info", "warn", "error")`)
	cobraext.AddCommands(root, settings)
	return root
}
