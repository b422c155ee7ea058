// Package localstore persists small client-side state (presets, flags, the
// selected network, the session) as JSON values in an embedded badger database.
package localstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/dgraph-io/badger/v2"
	"go.uber.org/zap"

	"github.com/worldland/netstats/internal/logs"
)

// Fixed storage keys
const (
	KeyFeedbackDismissed = "feedback-dismissed"
	KeyAnalyticsConsent  = "analytics-consent"
	KeySelectedNetwork   = "selected-network"
	KeyFilterPresets     = "filter-presets"
	KeyAuthSession       = "auth-session"
)

// ErrNotFound is returned by Get when the key has never been written
var ErrNotFound = errors.New("localstore: key not found")

var logger = logs.Logger("store")

// Store is a JSON key-value store owned by a single process
type Store struct {
	db *badger.DB
}

// Open opens (creating if needed) the database directory at path.
// An empty path opens a throwaway in-memory database.
func Open(path string) (*Store, error) {
	var opts badger.Options
	if path == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(path, 0700); err != nil {
			return nil, fmt.Errorf("create store dir %s: %w", path, err)
		}
		opts = badger.DefaultOptions(path)
	}
	opts = opts.WithLogger(badgerLogger{logger}).WithLoggingLevel(badger.WARNING)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open store %s: %w", path, err)
	}
	logger.Debugw("store opened", "path", path)
	return &Store{db: db}, nil
}

// Get decodes the value stored under key into v
func (s *Store) Get(key string, v any) error {
	var raw []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		raw, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("get %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

// Put stores v as JSON under key
func (s *Store) Put(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), raw)
	})
	if err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

// Delete removes key; deleting a missing key is not an error
func (s *Store) Delete(key string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
	if err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// badgerLogger routes badger's internal logging through zap
type badgerLogger struct {
	l *zap.SugaredLogger
}

func (b badgerLogger) Errorf(format string, args ...interface{})   { b.l.Errorf(format, args...) }
func (b badgerLogger) Warningf(format string, args ...interface{}) { b.l.Warnf(format, args...) }
func (b badgerLogger) Infof(format string, args ...interface{})    { b.l.Infof(format, args...) }
func (b badgerLogger) Debugf(format string, args ...interface{})   { b.l.Debugf(format, args...) }
