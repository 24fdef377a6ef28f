package main

import (
	"github.com/spf13/cobra"
)

var version = "dev"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "certmate",
		Short:   "TLS certificate lifecycle for a self-hosted application stack",
		Version: version,
		Long: `certmate manages the TLS certificate of a self-hosted stack: it decides
how the certificate should be obtained (preserved, self-signed, ACME, or
imported), rotates it with backup-before-overwrite semantics, and pushes it
into the running reverse-proxy container.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newSetupCmd(),
		newStatusCmd(),
		newValidateCmd(),
		newBackupCmd(),
		newInjectCmd(),
		newRestartCmd(),
	)

	return root
}
