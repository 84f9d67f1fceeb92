// Package credentials persists the exchange API credential pair.
package credentials

import (
	"encoding/json"
	"sync"

	"github.com/pkg/errors"
	"github.com/vadiminshakov/gowal"
	"github.com/vadiminshakov/tally/internal/domain"
)

const (
	defaultDir          = "./data/credentials"
	walSegmentThreshold = 1000
	walMaxSegments      = 100
	credentialsKey      = "credentials"
)

// WALStore persists credentials in a WAL. Every save appends a record and the
// most recent record wins on read, so older key pairs stay recoverable.
type WALStore struct {
	wal *gowal.Wal
	mu  sync.RWMutex
}

// NewWALStore initializes a WAL-backed credential store under the provided directory.
func NewWALStore(dir string) (*WALStore, error) {
	if dir == "" {
		dir = defaultDir
	}

	cfg := gowal.Config{
		Dir:              dir,
		Prefix:           "creds_",
		SegmentThreshold: walSegmentThreshold,
		MaxSegments:      walMaxSegments,
		IsInSyncDiskMode: true,
	}

	wal, err := gowal.NewWAL(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "init credential WAL")
	}

	return &WALStore{wal: wal}, nil
}

// Save appends the credential pair to the WAL.
func (s *WALStore) Save(creds domain.Credentials) error {
	if s == nil || s.wal == nil {
		return errors.New("credential store is not initialized")
	}

	payload, err := json.Marshal(creds)
	if err != nil {
		return errors.Wrap(err, "marshal credentials")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	nextIndex := s.wal.CurrentIndex() + 1
	return s.wal.Write(nextIndex, credentialsKey, payload)
}

// Credentials scans the WAL backward and returns the last stored pair.
// Absent or undecodable records surface as zero-value credentials, never as
// an error: validation is the caller's concern.
func (s *WALStore) Credentials() (domain.Credentials, error) {
	if s == nil || s.wal == nil {
		return domain.Credentials{}, errors.New("credential store is not initialized")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for idx := s.wal.CurrentIndex(); idx >= 1; idx-- {
		key, payload, err := s.wal.Get(idx)
		if err != nil || key != credentialsKey {
			continue
		}
		var stored domain.Credentials
		if err := json.Unmarshal(payload, &stored); err != nil {
			continue
		}
		return stored, nil
	}

	return domain.Credentials{}, nil
}

// Close closes the underlying WAL.
func (s *WALStore) Close() error {
	if s == nil || s.wal == nil {
		return errors.New("credential store is not initialized")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.wal.Close()
}
