package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/devmatic-io/certmate/core/certstore"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the stored certificate, its metadata, and validation state",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			bundle, err := app.store.Read()
			if err != nil {
				if errors.Is(err, certstore.ErrNotFound) {
					fmt.Fprintln(out, "No certificate bundle present.")
					return nil
				}
				return err
			}

			meta, metaErr := app.store.ReadMetadata()
			domain := app.cfg.Domain
			if metaErr == nil && meta.Domain != "" {
				domain = meta.Domain
			}

			result := app.checker.ValidateForDomain(bundle.CertPEM, bundle.KeyPEM, domain)

			fmt.Fprintf(out, "Certificate: %s\n", bundle.CertPath)
			fmt.Fprintf(out, "Private key: %s\n", bundle.KeyPath)
			if metaErr == nil {
				fmt.Fprintf(out, "Domain:      %s\n", meta.Domain)
				fmt.Fprintf(out, "Mode:        %s\n", meta.Mode)
				fmt.Fprintf(out, "Generated:   %s\n", meta.GeneratedAt.Format(time.RFC3339))
				fmt.Fprintf(out, "Key size:    %d bits\n", meta.KeySize)
			}
			fmt.Fprintf(out, "Valid:       %v\n", result.Valid())
			fmt.Fprintf(out, "Expiry:      %s (%d days remaining)\n", result.Expiry, result.DaysUntilExpiry)
			if len(result.DNSNames) > 0 {
				fmt.Fprintf(out, "SANs:        %s\n", strings.Join(result.DNSNames, ", "))
			}

			backups, err := app.store.ListBackups()
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Backups:     %d\n", len(backups))
			return nil
		},
	}
}
