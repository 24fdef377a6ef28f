package resolver

import "fmt"

// Mode is the closed acquisition mode enumeration. Exactly one mode applies
// to a request; dispatch switches over it exhaustively so a new mode is a
// compile-visible change, not a stringly-typed one.
type Mode string

const (
	// ModeAuto picks the best available path: preserve a valid bundle,
	// otherwise ACME for real domains with fallback to self-signed.
	ModeAuto Mode = "auto"
	// ModePreserve keeps an existing valid bundle unmodified.
	ModePreserve Mode = "preserve"
	// ModeSelfSigned generates a locally-signed, browser-untrusted bundle.
	ModeSelfSigned Mode = "self-signed"
	// ModeACME obtains a publicly-trusted certificate via HTTP-01.
	ModeACME Mode = "acme"
	// ModeImport installs a caller-supplied certificate/key pair.
	ModeImport Mode = "import"
	// ModeDisabled removes TLS: the bundle is backed up and deleted.
	ModeDisabled Mode = "disabled"
)

// ParseMode converts a string into a Mode, defaulting empty input to auto.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case ModeAuto, ModePreserve, ModeSelfSigned, ModeACME, ModeImport, ModeDisabled:
		return m, nil
	}
	if s == "" {
		return ModeAuto, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidMode, s)
}

// String returns the mode's wire/metadata representation.
func (m Mode) String() string { return string(m) }
