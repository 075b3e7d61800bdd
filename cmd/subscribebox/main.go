// Command subscribebox serves the Gmail subscription widget and offers
// one-shot helpers to validate and submit addresses from a terminal.
package main

import (
	"os"

	"github.com/ignite/subscribebox/internal/config"
	"github.com/ignite/subscribebox/internal/pkg/logger"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

// newRootCommand assembles the command tree. Subcommands read the
// configuration loaded by the root's pre-run hook.
func newRootCommand() *cobra.Command {
	var (
		configPath string
		cfg        = config.Default()
	)

	root := &cobra.Command{
		Use:          "subscribebox",
		Short:        "Gmail newsletter subscription widget",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.LoadFromEnv(configPath)
			if err != nil {
				return err
			}
			*cfg = *loaded

			logger.SetLevel(logger.ParseLevel(cfg.Logging.Level))
			logger.SetRedactPII(cfg.Logging.Redact())
			return nil
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", "config/config.yaml", "path to the YAML configuration file")

	root.AddCommand(
		serveCommand(cfg),
		sendCommand(cfg),
		checkCommand(),
	)
	return root
}
