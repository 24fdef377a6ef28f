package certstore

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

const backupTimestampFormat = "20060102-150405"

// BackupRecord describes one timestamped copy of a superseded bundle.
type BackupRecord struct {
	Timestamp string
	CertPath  string
	KeyPath   string
}

// Backup copies the current bundle into the append-only backup directory.
// It is a copy, never a move: the live bundle is untouched, and calling it
// with no bundle present is a no-op returning (nil, nil). Backups are never
// deleted by this package; cleanup is the operator's responsibility.
func (s *Store) Backup() (*BackupRecord, error) {
	if !s.Exists() {
		return nil, nil
	}

	if err := os.MkdirAll(s.backupRoot(), backupDirMode); err != nil {
		return nil, fmt.Errorf("%w: create backup directory: %w", ErrWriteFailed, err)
	}

	ts := time.Now().UTC().Format(backupTimestampFormat)
	certDst := filepath.Join(s.backupRoot(), fmt.Sprintf("%s.crt.%s", s.name, ts))
	if _, err := os.Stat(certDst); err == nil {
		// Same-second collision; disambiguate rather than overwrite.
		ts = ts + "-" + uuid.NewString()[:8]
		certDst = filepath.Join(s.backupRoot(), fmt.Sprintf("%s.crt.%s", s.name, ts))
	}
	keyDst := filepath.Join(s.backupRoot(), fmt.Sprintf("%s.key.%s", s.name, ts))

	if err := copyFile(s.CertPath(), certDst, certFileMode); err != nil {
		return nil, fmt.Errorf("%w: backup certificate: %w", ErrWriteFailed, err)
	}
	if err := copyFile(s.KeyPath(), keyDst, keyFileMode); err != nil {
		_ = os.Remove(certDst)
		return nil, fmt.Errorf("%w: backup private key: %w", ErrWriteFailed, err)
	}

	return &BackupRecord{Timestamp: ts, CertPath: certDst, KeyPath: keyDst}, nil
}

// ListBackups returns all backup records, oldest first.
func (s *Store) ListBackups() ([]BackupRecord, error) {
	entries, err := os.ReadDir(s.backupRoot())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list backups: %w", err)
	}

	certPrefix := s.name + ".crt."
	var records []BackupRecord
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), certPrefix) {
			continue
		}
		ts := strings.TrimPrefix(entry.Name(), certPrefix)
		records = append(records, BackupRecord{
			Timestamp: ts,
			CertPath:  filepath.Join(s.backupRoot(), entry.Name()),
			KeyPath:   filepath.Join(s.backupRoot(), fmt.Sprintf("%s.key.%s", s.name, ts)),
		})
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].Timestamp < records[j].Timestamp
	})

	return records, nil
}

func copyFile(src, dst string, mode os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		_ = os.Remove(dst)
		return err
	}
	if err := out.Sync(); err != nil {
		_ = out.Close()
		_ = os.Remove(dst)
		return err
	}
	return out.Close()
}
