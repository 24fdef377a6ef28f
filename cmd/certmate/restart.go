package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRestartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restart",
		Short: "Restart the proxy container without touching the certificate",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}

			if err := app.runtime.Restart(cmd.Context(), app.cfg.ProxyContainer); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Restarted %s\n", app.cfg.ProxyContainer)
			return nil
		},
	}
}
