package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/devmatic-io/certmate/core/inject"
	"github.com/devmatic-io/certmate/core/logger"
	"github.com/devmatic-io/certmate/core/resolver"
	"github.com/devmatic-io/certmate/core/wizard"
)

func newSetupCmd() *cobra.Command {
	var (
		domain      string
		mode        string
		email       string
		importCert  string
		importKey   string
		force       bool
		interactive bool
		noInject    bool
	)

	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Acquire or rotate the certificate and push it to the proxy",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}

			var req resolver.Request
			if interactive {
				req, err = runWizard(cmd.InOrStdin(), cmd.OutOrStdout(), force)
				if err != nil {
					return err
				}
			} else {
				parsedMode, err := resolver.ParseMode(mode)
				if err != nil {
					return err
				}
				if domain == "" {
					domain = app.cfg.Domain
				}
				if email == "" {
					email = app.cfg.AcmeEmail
				}
				req = resolver.Request{
					Domain:         domain,
					Mode:           parsedMode,
					Email:          email,
					ImportCertPath: importCert,
					ImportKeyPath:  importKey,
					Force:          force,
				}
			}

			bundle, err := app.resolver().Resolve(cmd.Context(), req)
			if err != nil {
				return err
			}
			if bundle == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "TLS disabled, certificate removed.")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Certificate ready at %s\n", bundle.CertPath)

			if noInject {
				return nil
			}

			// Injection failure is deferred, not fatal: the bundle on disk
			// is valid even when the proxy has not picked it up yet.
			err = app.injector().Inject(cmd.Context(), bundle, app.cfg.ProxyContainer)
			switch {
			case err == nil:
				fmt.Fprintln(cmd.OutOrStdout(), "Certificate injected into the proxy.")
			case errors.Is(err, inject.ErrContainerNotRunning):
				fmt.Fprintln(cmd.OutOrStdout(), "Proxy is not running; run 'certmate inject' once it is up.")
			default:
				app.log.Warn("injection deferred",
					logger.Component("setup"),
					logger.Error(err),
				)
				fmt.Fprintf(cmd.OutOrStdout(), "Injection failed (%v); the certificate remains stored.\n", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&domain, "domain", "", "certificate domain (default from config)")
	cmd.Flags().StringVar(&mode, "mode", "", "acquisition mode: auto, preserve, self-signed, acme, import, disabled")
	cmd.Flags().StringVar(&email, "email", "", "ACME account email")
	cmd.Flags().StringVar(&importCert, "import-cert", "", "certificate file or directory to import")
	cmd.Flags().StringVar(&importKey, "import-key", "", "private key file to import")
	cmd.Flags().BoolVar(&force, "force", false, "replace the existing certificate even if it is still valid")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "gather inputs interactively")
	cmd.Flags().BoolVar(&noInject, "no-inject", false, "skip pushing the certificate into the proxy")

	return cmd
}

// runWizard drives the wizard state machine from an input stream, re-asking
// on invalid answers.
func runWizard(in io.Reader, out io.Writer, force bool) (resolver.Request, error) {
	w := wizard.New().WithForce(force)
	scanner := bufio.NewScanner(in)

	for !w.Done() {
		fmt.Fprint(out, w.Prompt())
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return resolver.Request{}, err
			}
			return resolver.Request{}, errors.New("input closed before setup completed")
		}
		if err := w.Next(scanner.Text()); err != nil {
			if errors.Is(err, wizard.ErrInvalidInput) {
				fmt.Fprintln(out, err)
				continue
			}
			return resolver.Request{}, err
		}
	}

	return w.Request()
}
