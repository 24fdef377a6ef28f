package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newBackupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "backup",
		Short: "Copy the current certificate bundle into the backup directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}

			if err := app.store.Lock(cmd.Context()); err != nil {
				return err
			}
			defer func() { _ = app.store.Unlock() }()

			record, err := app.store.Backup()
			if err != nil {
				return err
			}
			if record == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "No certificate bundle to back up.")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Backed up to %s\n", record.CertPath)
			return nil
		},
	}
}
