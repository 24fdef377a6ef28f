package certstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

const lockRetryInterval = 100 * time.Millisecond

// Fixed permission policy: certificates are world-readable, private keys
// and everything else in the store are owner-only.
const (
	certFileMode  = 0o644
	keyFileMode   = 0o600
	dirMode       = 0o755
	backupDirMode = 0o700
	backupDir     = "backup"
	metadataFile = ".cert_info"
	lockFile     = ".lock"
)

// Bundle is the unit of truth: a PEM certificate and its matching PEM
// private key. A bundle is either absent entirely or both parts exist; a
// certificate without its key is an invalid intermediate state the store
// never exposes.
type Bundle struct {
	CertPEM  []byte
	KeyPEM   []byte
	CertPath string
	KeyPath  string
}

// Store owns the canonical certificate file locations under a configured
// SSL root, the metadata record, and the append-only backup directory.
// All components read and write certificate material through it.
type Store struct {
	root string
	name string
	lock *flock.Flock
}

// New creates a Store rooted at dir, managing files named after name
// (<dir>/<name>.crt, <dir>/<name>.key). The root directory is created if
// missing.
func New(dir, name string) (*Store, error) {
	if dir == "" {
		return nil, ErrRootRequired
	}
	if name == "" {
		return nil, ErrNameRequired
	}

	if err := os.MkdirAll(dir, dirMode); err != nil {
		return nil, fmt.Errorf("%w: create root %s: %w", ErrWriteFailed, dir, err)
	}

	return &Store{
		root: dir,
		name: name,
		lock: flock.New(filepath.Join(dir, lockFile)),
	}, nil
}

// Root returns the store's root directory.
func (s *Store) Root() string { return s.root }

// CertPath returns the canonical certificate path.
func (s *Store) CertPath() string { return filepath.Join(s.root, s.name+".crt") }

// KeyPath returns the canonical private key path.
func (s *Store) KeyPath() string { return filepath.Join(s.root, s.name+".key") }

func (s *Store) metadataPath() string { return filepath.Join(s.root, metadataFile) }

func (s *Store) backupRoot() string { return filepath.Join(s.root, backupDir) }

// Lock acquires the store's advisory file lock, blocking until it is held
// or the context is done. The lock guards the backup/write/remove sequence
// against concurrent invocations of this subsystem from other processes.
func (s *Store) Lock(ctx context.Context) error {
	ok, err := s.lock.TryLockContext(ctx, lockRetryInterval)
	if err != nil {
		return fmt.Errorf("acquire store lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("acquire store lock: not acquired")
	}
	return nil
}

// Unlock releases the advisory lock.
func (s *Store) Unlock() error {
	return s.lock.Unlock()
}

// Exists reports whether a complete bundle (both files) is present.
func (s *Store) Exists() bool {
	if _, err := os.Stat(s.CertPath()); err != nil {
		return false
	}
	if _, err := os.Stat(s.KeyPath()); err != nil {
		return false
	}
	return true
}

// Read loads the current bundle. A missing or incomplete pair is reported
// as ErrNotFound; an incomplete pair is never handed to callers.
func (s *Store) Read() (*Bundle, error) {
	certPEM, certErr := os.ReadFile(s.CertPath())
	keyPEM, keyErr := os.ReadFile(s.KeyPath())
	if certErr != nil || keyErr != nil {
		return nil, ErrNotFound
	}

	return &Bundle{
		CertPEM:  certPEM,
		KeyPEM:   keyPEM,
		CertPath: s.CertPath(),
		KeyPath:  s.KeyPath(),
	}, nil
}

// Write atomically replaces the stored bundle and its metadata. Both files
// are staged under temporary names and only exposed under the canonical
// names together; on any failure the previous state is preserved.
func (s *Store) Write(certPEM, keyPEM []byte, meta *Metadata) error {
	if len(certPEM) == 0 || len(keyPEM) == 0 {
		return fmt.Errorf("%w: empty certificate or key payload", ErrWriteFailed)
	}

	certPath := s.CertPath()
	keyPath := s.KeyPath()
	certTmp := certPath + ".tmp"
	keyTmp := keyPath + ".tmp"

	// Remember the previous key so the key rename can be rolled back if the
	// certificate rename fails, keeping the pair consistent.
	prevKey, _ := os.ReadFile(keyPath)

	if err := os.WriteFile(certTmp, certPEM, certFileMode); err != nil {
		return fmt.Errorf("%w: stage certificate: %w", ErrWriteFailed, err)
	}
	if err := os.WriteFile(keyTmp, keyPEM, keyFileMode); err != nil {
		_ = os.Remove(certTmp)
		return fmt.Errorf("%w: stage private key: %w", ErrWriteFailed, err)
	}

	if err := os.Rename(keyTmp, keyPath); err != nil {
		_ = os.Remove(certTmp)
		_ = os.Remove(keyTmp)
		return fmt.Errorf("%w: commit private key: %w", ErrWriteFailed, err)
	}
	if err := os.Rename(certTmp, certPath); err != nil {
		if prevKey != nil {
			_ = os.WriteFile(keyPath, prevKey, keyFileMode)
		} else {
			_ = os.Remove(keyPath)
		}
		_ = os.Remove(certTmp)
		return fmt.Errorf("%w: commit certificate: %w", ErrWriteFailed, err)
	}

	if meta != nil {
		if err := s.writeMetadata(meta); err != nil {
			return err
		}
	}

	return nil
}

// Remove deletes the bundle files and metadata. Missing files are not an
// error; the store ends up empty either way.
func (s *Store) Remove() error {
	for _, path := range []string{s.CertPath(), s.KeyPath(), s.metadataPath()} {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("%w: remove %s: %w", ErrWriteFailed, path, err)
		}
	}
	return nil
}
