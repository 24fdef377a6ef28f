package certstore_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devmatic-io/certmate/core/certstore"
)

func newTestStore(t *testing.T) *certstore.Store {
	t.Helper()
	store, err := certstore.New(t.TempDir(), "server")
	require.NoError(t, err)
	return store
}

func TestNew(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		root    string
		bundle  string
		wantErr error
	}{
		{name: "valid", root: t.TempDir(), bundle: "server"},
		{name: "missing root", root: "", bundle: "server", wantErr: certstore.ErrRootRequired},
		{name: "missing name", root: t.TempDir(), bundle: "", wantErr: certstore.ErrNameRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			store, err := certstore.New(tt.root, tt.bundle)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, store)
			} else {
				require.NoError(t, err)
				assert.NotNil(t, store)
			}
		})
	}
}

func TestStoreReadEmpty(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)

	bundle, err := store.Read()
	assert.ErrorIs(t, err, certstore.ErrNotFound)
	assert.Nil(t, bundle)
	assert.False(t, store.Exists())
}

func TestStoreWriteAndRead(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)

	meta := certstore.NewMetadata("example.com", "self-signed", 365, 4096)
	require.NoError(t, store.Write([]byte("cert-pem"), []byte("key-pem"), meta))

	bundle, err := store.Read()
	require.NoError(t, err)
	assert.Equal(t, []byte("cert-pem"), bundle.CertPEM)
	assert.Equal(t, []byte("key-pem"), bundle.KeyPEM)
	assert.True(t, store.Exists())

	// Fixed permission policy: cert world-readable, key owner-only.
	certInfo, err := os.Stat(store.CertPath())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), certInfo.Mode().Perm())

	keyInfo, err := os.Stat(store.KeyPath())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), keyInfo.Mode().Perm())
}

func TestStoreWriteRejectsEmptyPayload(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)

	assert.ErrorIs(t, store.Write(nil, []byte("key"), nil), certstore.ErrWriteFailed)
	assert.ErrorIs(t, store.Write([]byte("cert"), nil, nil), certstore.ErrWriteFailed)

	// A failed write leaves no partial state behind.
	assert.False(t, store.Exists())
	_, err := store.Read()
	assert.ErrorIs(t, err, certstore.ErrNotFound)
}

func TestStoreWriteNeverExposesPartialBundle(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)

	require.NoError(t, store.Write([]byte("cert-v1"), []byte("key-v1"), nil))
	require.NoError(t, store.Write([]byte("cert-v2"), []byte("key-v2"), nil))

	bundle, err := store.Read()
	require.NoError(t, err)
	assert.Equal(t, []byte("cert-v2"), bundle.CertPEM)
	assert.Equal(t, []byte("key-v2"), bundle.KeyPEM)

	// No staging files remain after a successful write.
	entries, err := os.ReadDir(store.Root())
	require.NoError(t, err)
	for _, entry := range entries {
		assert.NotContains(t, entry.Name(), ".tmp")
	}
}

func TestStoreMetadataRoundTrip(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)

	meta := certstore.NewMetadata("example.com", "acme", 90, 2048)
	require.NoError(t, store.Write([]byte("cert"), []byte("key"), meta))

	loaded, err := store.ReadMetadata()
	require.NoError(t, err)
	assert.Equal(t, meta.RecordID, loaded.RecordID)
	assert.Equal(t, "example.com", loaded.Domain)
	assert.Equal(t, "acme", loaded.Mode)
	assert.Equal(t, 90, loaded.ValidityDays)
	assert.Equal(t, 2048, loaded.KeySize)
	assert.WithinDuration(t, meta.GeneratedAt, loaded.GeneratedAt, 0)
}

func TestStoreMetadataMissing(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)

	_, err := store.ReadMetadata()
	assert.ErrorIs(t, err, certstore.ErrNotFound)
}

func TestStoreRemove(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)

	require.NoError(t, store.Write([]byte("cert"), []byte("key"), certstore.NewMetadata("x", "self-signed", 1, 1)))
	require.NoError(t, store.Remove())

	assert.False(t, store.Exists())
	_, err := store.ReadMetadata()
	assert.ErrorIs(t, err, certstore.ErrNotFound)

	// Removing an already-empty store is not an error.
	require.NoError(t, store.Remove())
}

func TestStoreLock(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)

	ctx := context.Background()
	require.NoError(t, store.Lock(ctx))
	require.NoError(t, store.Unlock())
	require.NoError(t, store.Lock(ctx))
	require.NoError(t, store.Unlock())
}

func TestStoreBackup(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)

	// Backup with no bundle is a safe no-op.
	record, err := store.Backup()
	require.NoError(t, err)
	assert.Nil(t, record)

	require.NoError(t, store.Write([]byte("cert-v1"), []byte("key-v1"), nil))

	record, err = store.Backup()
	require.NoError(t, err)
	require.NotNil(t, record)

	backedCert, err := os.ReadFile(record.CertPath)
	require.NoError(t, err)
	assert.Equal(t, []byte("cert-v1"), backedCert)
	backedKey, err := os.ReadFile(record.KeyPath)
	require.NoError(t, err)
	assert.Equal(t, []byte("key-v1"), backedKey)

	// Backup is a copy, not a move: the live bundle is unchanged.
	bundle, err := store.Read()
	require.NoError(t, err)
	assert.Equal(t, []byte("cert-v1"), bundle.CertPEM)
	assert.Equal(t, []byte("key-v1"), bundle.KeyPEM)
}

func TestStoreBackupMonotonic(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)
	require.NoError(t, store.Write([]byte("cert"), []byte("key"), nil))

	var previous int
	for range 3 {
		_, err := store.Backup()
		require.NoError(t, err)

		records, err := store.ListBackups()
		require.NoError(t, err)
		assert.Greater(t, len(records), previous)
		previous = len(records)
	}
}

func TestStoreListBackupsEmpty(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)

	records, err := store.ListBackups()
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestStorePaths(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	store, err := certstore.New(root, "server")
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(root, "server.crt"), store.CertPath())
	assert.Equal(t, filepath.Join(root, "server.key"), store.KeyPath())
}
