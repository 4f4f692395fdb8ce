package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/WhileEndless/go-reqresp/pkg/logging"
	"github.com/WhileEndless/go-reqresp/pkg/version"
)

type app struct {
	v       *viper.Viper
	cfgFile string
	cfg     *Config
}

// NewRootCmd builds the reqresp command tree
func NewRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:   "reqresp",
		Short: "Decode captured HTTP responses",
		Long: `reqresp parses a captured HTTP response (stacked status lines,
chunked transfer coding, gzip/deflate/br/zstd content coding) and prints
the final response with its body decoded to text.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "Config file (default ./reqresp.yaml if present)")
	flags.String("log-level", "warn", "Log level (debug, info, warn, error)")
	flags.String("log-format", "text", "Log format (text, json)")
	_ = a.v.BindPFlag("log.level", flags.Lookup("log-level"))
	_ = a.v.BindPFlag("log.format", flags.Lookup("log-format"))

	root.AddCommand(a.decodeCmd(), a.searchCmd(), a.sniffCmd(), versionCmd())
	return root
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}

// commandFlags maps config keys to the subcommand flags overriding them.
// Bound in setup for the command being run since subcommands share names.
var commandFlags = map[string]string{
	"source":           "source",
	"format":           "format",
	"sniff":            "sniff",
	"max_decoded_size": "max-size",
}

func (a *app) setup(cmd *cobra.Command, args []string) error {
	for key, name := range commandFlags {
		if fl := cmd.Flags().Lookup(name); fl != nil {
			if err := a.v.BindPFlag(key, fl); err != nil {
				return err
			}
		}
	}

	cfg, err := LoadConfig(a.v, a.cfgFile)
	if err != nil {
		return err
	}
	if err := logging.Configure(cfg.Log.Level, cfg.Log.Format); err != nil {
		return err
	}
	logging.SetOutput(cmd.ErrOrStderr())
	a.cfg = cfg
	return nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "reqresp %s\n", version.GetVersion())
		},
	}
}
