package auth

import (
	"errors"

	"github.com/worldland/netstats/internal/localstore"
)

// SessionKV is the subset of the local store used to persist the session
type SessionKV interface {
	Get(key string, v any) error
	Put(key string, v any) error
	Delete(key string) error
}

// Sessions persists the current session under a fixed key
type Sessions struct {
	kv SessionKV
}

func NewSessions(kv SessionKV) *Sessions {
	return &Sessions{kv: kv}
}

// Load returns the stored session, or nil when signed out
func (s *Sessions) Load() (*Session, error) {
	var sess Session
	err := s.kv.Get(localstore.KeyAuthSession, &sess)
	if errors.Is(err, localstore.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sess, nil
}

func (s *Sessions) Save(sess *Session) error {
	return s.kv.Put(localstore.KeyAuthSession, sess)
}

// Clear signs out
func (s *Sessions) Clear() error {
	return s.kv.Delete(localstore.KeyAuthSession)
}
