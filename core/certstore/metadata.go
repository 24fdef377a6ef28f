package certstore

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Metadata is the display/diagnostic record persisted alongside a bundle.
// It is never authoritative for validation; the certificate file itself is
// always re-inspected.
type Metadata struct {
	RecordID     string
	Domain       string
	Mode         string
	GeneratedAt  time.Time
	ValidityDays int
	KeySize      int
}

// NewMetadata builds a metadata record stamped with a fresh record ID and
// the current time.
func NewMetadata(domain, mode string, validityDays, keySize int) *Metadata {
	return &Metadata{
		RecordID:     uuid.NewString(),
		Domain:       domain,
		Mode:         mode,
		GeneratedAt:  time.Now().UTC(),
		ValidityDays: validityDays,
		KeySize:      keySize,
	}
}

// ReadMetadata loads the persisted metadata record, or ErrNotFound when no
// record exists. Unknown keys are ignored for forward compatibility.
func (s *Store) ReadMetadata() (*Metadata, error) {
	f, err := os.Open(s.metadataPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read metadata: %w", err)
	}
	defer func() { _ = f.Close() }()

	meta := &Metadata{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)

		switch strings.TrimSpace(key) {
		case "record_id":
			meta.RecordID = value
		case "domain":
			meta.Domain = value
		case "mode":
			meta.Mode = value
		case "generated":
			if ts, err := time.Parse(time.RFC3339, value); err == nil {
				meta.GeneratedAt = ts
			}
		case "validity_days":
			if n, err := strconv.Atoi(value); err == nil {
				meta.ValidityDays = n
			}
		case "key_size":
			if n, err := strconv.Atoi(value); err == nil {
				meta.KeySize = n
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read metadata: %w", err)
	}

	return meta, nil
}

func (s *Store) writeMetadata(meta *Metadata) error {
	var b strings.Builder
	fmt.Fprintf(&b, "record_id=%s\n", meta.RecordID)
	fmt.Fprintf(&b, "domain=%s\n", meta.Domain)
	fmt.Fprintf(&b, "mode=%s\n", meta.Mode)
	fmt.Fprintf(&b, "generated=%s\n", meta.GeneratedAt.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "validity_days=%d\n", meta.ValidityDays)
	fmt.Fprintf(&b, "key_size=%d\n", meta.KeySize)

	path := s.metadataPath()
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(b.String()), certFileMode); err != nil {
		return fmt.Errorf("%w: stage metadata: %w", ErrWriteFailed, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("%w: commit metadata: %w", ErrWriteFailed, err)
	}
	return nil
}
