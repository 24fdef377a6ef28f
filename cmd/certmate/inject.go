package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newInjectCmd() *cobra.Command {
	var containerName string

	cmd := &cobra.Command{
		Use:   "inject",
		Short: "Push the stored certificate into the running proxy container",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}
			if containerName == "" {
				containerName = app.cfg.ProxyContainer
			}

			bundle, err := app.store.Read()
			if err != nil {
				return err
			}

			if err := app.injector().Inject(cmd.Context(), bundle, containerName); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Certificate injected into %s\n", containerName)
			return nil
		},
	}

	cmd.Flags().StringVar(&containerName, "container", "", "target container (default from config)")
	return cmd
}
