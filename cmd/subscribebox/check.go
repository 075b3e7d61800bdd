package main

import (
	"fmt"

	"github.com/ignite/subscribebox/internal/domain"
	"github.com/spf13/cobra"
)

func checkCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check <email>",
		Short: "Report whether an address would pass the widget's Gmail validation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !domain.IsGmailAddress(args[0]) {
				return fmt.Errorf("%q is not a valid Gmail address", args[0])
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: valid\n", args[0])
			return nil
		},
	}
}
