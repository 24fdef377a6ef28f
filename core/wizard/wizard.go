package wizard

import (
	"errors"
	"fmt"
	"strings"

	"github.com/devmatic-io/certmate/core/resolver"
	"github.com/devmatic-io/certmate/core/selfsigned"
)

// State identifies the wizard's current question.
type State int

const (
	// StateDomain asks for the certificate domain.
	StateDomain State = iota
	// StateMode asks for the acquisition mode.
	StateMode
	// StateEmail asks for the ACME account email.
	StateEmail
	// StateImportCert asks for the certificate path to import.
	StateImportCert
	// StateImportKey asks for the key path to import.
	StateImportKey
	// StateConfirm shows the summary and asks for confirmation.
	StateConfirm
	// StateDone means the wizard has a complete request.
	StateDone
)

var (
	// ErrNotComplete is returned by Request before the wizard reaches
	// StateDone.
	ErrNotComplete = errors.New("wizard is not complete")

	// ErrInvalidInput is returned when an answer cannot be accepted; the
	// wizard stays in the same state so the question can be re-asked.
	ErrInvalidInput = errors.New("invalid input")
)

// Wizard is the interactive setup decision tree as a pure state machine:
// inputs are answer strings, the output is a resolver.Request. It performs
// no I/O of its own, so the decision logic is testable without terminals.
type Wizard struct {
	state State

	domain     string
	mode       resolver.Mode
	email      string
	importCert string
	importKey  string
	force      bool
}

// New starts a wizard at the domain question.
func New() *Wizard {
	return &Wizard{state: StateDomain}
}

// WithForce marks the eventual request as forced, bypassing preservation.
func (w *Wizard) WithForce(force bool) *Wizard {
	w.force = force
	return w
}

// State returns the current state.
func (w *Wizard) State() State { return w.state }

// Done reports whether the wizard has collected a complete request.
func (w *Wizard) Done() bool { return w.state == StateDone }

// Prompt returns the question for the current state.
func (w *Wizard) Prompt() string {
	switch w.state {
	case StateDomain:
		return "Domain for the certificate [localhost]: "
	case StateMode:
		return "Acquisition mode (auto/preserve/self-signed/acme/import/disabled) [auto]: "
	case StateEmail:
		if w.mode == resolver.ModeACME {
			return "Email for the Let's Encrypt account: "
		}
		return "Email for the Let's Encrypt account (empty skips ACME): "
	case StateImportCert:
		return "Path to the certificate file (or directory with one pair): "
	case StateImportKey:
		return "Path to the private key file: "
	case StateConfirm:
		return fmt.Sprintf("Configure %s certificate for %q? [Y/n]: ", w.mode, w.domain)
	default:
		return ""
	}
}

// Next feeds one answer into the machine and advances it. On
// ErrInvalidInput the state does not change.
func (w *Wizard) Next(input string) error {
	input = strings.TrimSpace(input)

	switch w.state {
	case StateDomain:
		if input == "" {
			input = "localhost"
		}
		if strings.ContainsAny(input, " \t/") {
			return fmt.Errorf("%w: %q is not a hostname", ErrInvalidInput, input)
		}
		w.domain = strings.ToLower(input)
		w.state = StateMode
		return nil

	case StateMode:
		mode, err := resolver.ParseMode(input)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}
		w.mode = mode
		w.state = w.stateAfterMode()
		return nil

	case StateEmail:
		if input == "" && w.mode == resolver.ModeACME {
			return fmt.Errorf("%w: acme requires an account email", ErrInvalidInput)
		}
		if input != "" && !strings.Contains(input, "@") {
			return fmt.Errorf("%w: %q is not an email address", ErrInvalidInput, input)
		}
		w.email = input
		w.state = StateConfirm
		return nil

	case StateImportCert:
		if input == "" {
			return fmt.Errorf("%w: certificate path is required", ErrInvalidInput)
		}
		w.importCert = input
		w.state = StateImportKey
		return nil

	case StateImportKey:
		// Empty is allowed when the certificate answer was a directory.
		w.importKey = input
		w.state = StateConfirm
		return nil

	case StateConfirm:
		switch strings.ToLower(input) {
		case "", "y", "yes":
			w.state = StateDone
			return nil
		case "n", "no":
			*w = Wizard{state: StateDomain, force: w.force}
			return nil
		default:
			return fmt.Errorf("%w: answer y or n", ErrInvalidInput)
		}

	default:
		return fmt.Errorf("%w: wizard already complete", ErrInvalidInput)
	}
}

// stateAfterMode encodes the decision tree: acme always needs an email,
// auto needs one only for real domains (to try ACME first), import needs
// file paths, and everything else goes straight to confirmation.
func (w *Wizard) stateAfterMode() State {
	switch w.mode {
	case resolver.ModeACME:
		return StateEmail
	case resolver.ModeAuto:
		if !selfsigned.IsLocal(w.domain) {
			return StateEmail
		}
		return StateConfirm
	case resolver.ModeImport:
		return StateImportCert
	default:
		return StateConfirm
	}
}

// Request returns the collected resolver request once the wizard is done.
func (w *Wizard) Request() (resolver.Request, error) {
	if w.state != StateDone {
		return resolver.Request{}, ErrNotComplete
	}
	return resolver.Request{
		Domain:         w.domain,
		Mode:           w.mode,
		Email:          w.email,
		ImportCertPath: w.importCert,
		ImportKeyPath:  w.importKey,
		Force:          w.force,
	}, nil
}
