package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/devmatic-io/certmate/core/certcheck"
	"github.com/devmatic-io/certmate/core/certstore"
)

func newValidateCmd() *cobra.Command {
	var domain string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the stored certificate/key pair",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}

			bundle, err := app.store.Read()
			if err != nil {
				if errors.Is(err, certstore.ErrNotFound) {
					return errors.New("no certificate bundle present")
				}
				return err
			}

			if domain == "" {
				if meta, err := app.store.ReadMetadata(); err == nil {
					domain = meta.Domain
				}
			}

			result := app.checker.ValidateForDomain(bundle.CertPEM, bundle.KeyPEM, domain)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Structurally valid: %v\n", result.StructurallyValid)
			fmt.Fprintf(out, "Key matches cert:   %v\n", result.KeyMatchesCert)
			if domain != "" {
				fmt.Fprintf(out, "Covers %q:          %v\n", domain, result.DomainMatches)
			}
			fmt.Fprintf(out, "Expiry:             %s (%d days remaining)\n", result.Expiry, result.DaysUntilExpiry)

			if !result.Valid() || result.Expiry == certcheck.ExpiryExpired {
				return errors.New("certificate failed validation")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&domain, "domain", "", "domain to check applicability against (default from metadata)")
	return cmd
}
