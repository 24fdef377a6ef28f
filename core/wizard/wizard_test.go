package wizard_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devmatic-io/certmate/core/resolver"
	"github.com/devmatic-io/certmate/core/wizard"
)

func feed(t *testing.T, w *wizard.Wizard, answers ...string) {
	t.Helper()
	for _, answer := range answers {
		require.NoError(t, w.Next(answer), "answer %q", answer)
	}
}

func TestWizardLocalhostDefaults(t *testing.T) {
	t.Parallel()
	w := wizard.New()

	// Empty answers take the defaults: localhost, auto, confirmed.
	feed(t, w, "", "", "")
	require.True(t, w.Done())

	req, err := w.Request()
	require.NoError(t, err)
	assert.Equal(t, "localhost", req.Domain)
	assert.Equal(t, resolver.ModeAuto, req.Mode)
	assert.Empty(t, req.Email)
}

func TestWizardAutoRealDomainAsksEmail(t *testing.T) {
	t.Parallel()
	w := wizard.New()

	feed(t, w, "example.com", "auto")
	assert.Equal(t, wizard.StateEmail, w.State())

	feed(t, w, "ops@example.com", "y")
	req, err := w.Request()
	require.NoError(t, err)
	assert.Equal(t, "example.com", req.Domain)
	assert.Equal(t, "ops@example.com", req.Email)
}

func TestWizardAcmeRequiresEmail(t *testing.T) {
	t.Parallel()
	w := wizard.New()

	feed(t, w, "example.com", "acme")
	require.Equal(t, wizard.StateEmail, w.State())

	// Empty email is rejected and the state does not advance.
	err := w.Next("")
	assert.ErrorIs(t, err, wizard.ErrInvalidInput)
	assert.Equal(t, wizard.StateEmail, w.State())

	feed(t, w, "ops@example.com", "yes")
	req, err := w.Request()
	require.NoError(t, err)
	assert.Equal(t, resolver.ModeACME, req.Mode)
}

func TestWizardImportCollectsPaths(t *testing.T) {
	t.Parallel()
	w := wizard.New()

	feed(t, w, "example.com", "import", "/tmp/cert.crt", "/tmp/cert.key", "")
	req, err := w.Request()
	require.NoError(t, err)
	assert.Equal(t, resolver.ModeImport, req.Mode)
	assert.Equal(t, "/tmp/cert.crt", req.ImportCertPath)
	assert.Equal(t, "/tmp/cert.key", req.ImportKeyPath)
}

func TestWizardInvalidModeReasked(t *testing.T) {
	t.Parallel()
	w := wizard.New()
	feed(t, w, "example.com")

	err := w.Next("yolo")
	assert.ErrorIs(t, err, wizard.ErrInvalidInput)
	assert.Equal(t, wizard.StateMode, w.State())

	feed(t, w, "self-signed", "y")
	assert.True(t, w.Done())
}

func TestWizardRejectsBadDomain(t *testing.T) {
	t.Parallel()
	w := wizard.New()

	err := w.Next("not a domain")
	assert.ErrorIs(t, err, wizard.ErrInvalidInput)
	assert.Equal(t, wizard.StateDomain, w.State())
}

func TestWizardDeclineRestarts(t *testing.T) {
	t.Parallel()
	w := wizard.New()

	feed(t, w, "example.com", "self-signed")
	require.Equal(t, wizard.StateConfirm, w.State())

	require.NoError(t, w.Next("n"))
	assert.Equal(t, wizard.StateDomain, w.State())
	assert.False(t, w.Done())
}

func TestWizardForceCarriesThrough(t *testing.T) {
	t.Parallel()
	w := wizard.New().WithForce(true)

	feed(t, w, "localhost", "self-signed", "y")
	req, err := w.Request()
	require.NoError(t, err)
	assert.True(t, req.Force)
}

func TestWizardRequestBeforeDone(t *testing.T) {
	t.Parallel()
	w := wizard.New()

	_, err := w.Request()
	assert.ErrorIs(t, err, wizard.ErrNotComplete)
}

func TestWizardPromptsNonEmpty(t *testing.T) {
	t.Parallel()
	w := wizard.New()

	for !w.Done() {
		assert.NotEmpty(t, w.Prompt())
		var answer string
		switch w.State() {
		case wizard.StateDomain:
			answer = "example.com"
		case wizard.StateMode:
			answer = "acme"
		case wizard.StateEmail:
			answer = "ops@example.com"
		default:
			answer = "y"
		}
		require.NoError(t, w.Next(answer))
	}
}
