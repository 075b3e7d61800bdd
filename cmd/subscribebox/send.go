package main

import (
	"fmt"

	"github.com/ignite/subscribebox/internal/config"
	"github.com/ignite/subscribebox/internal/form"
	"github.com/ignite/subscribebox/internal/newsletter"
	"github.com/ignite/subscribebox/internal/pkg/logger"
	"github.com/ignite/subscribebox/internal/ui"
	"github.com/spf13/cobra"
)

func sendCommand(cfg *config.Config) *cobra.Command {
	var (
		locale   string
		endpoint string
	)

	cmd := &cobra.Command{
		Use:   "send <email>",
		Short: "Submit one address through the same flow the widget uses",
		Long: `Submit one address exactly as the widget would: validate it, post it to
the newsletter endpoint and print the resulting feedback message.

Examples:
  subscribebox send user@gmail.com
  subscribebox send --locale=es --endpoint=http://localhost:9999/api/newEmail user@gmail.com`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			nc := cfg.Newsletter
			if endpoint != "" {
				nc.Endpoint = endpoint
			}
			if locale == "" {
				locale = cfg.Form.DefaultLocale
			}

			client := newsletter.NewClient(nc, newsletter.WithLogger(logger.Default()))
			c := form.New(client, form.Options{
				Messages:                 ui.MessagesFor(locale),
				ResetSubmittingOnFailure: cfg.Form.ResetSubmittingOnFailure,
				Logger:                   logger.Default(),
			})
			defer c.Close()

			c.OnEmailChange(args[0])
			outcome, err := c.OnSubmit(cmd.Context())

			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", outcome, c.State().Message)
			if err != nil {
				return fmt.Errorf("subscription %s: %w", outcome, err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&locale, "locale", "", "message locale (en, es); defaults to form.default_locale")
	cmd.Flags().StringVar(&endpoint, "endpoint", "", "override the newsletter endpoint")
	return cmd
}
