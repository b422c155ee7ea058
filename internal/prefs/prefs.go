// Package prefs holds the persisted client preferences: the selected API
// network, the feedback dialog flag and the analytics consent.
package prefs

import (
	"errors"
	"fmt"

	"github.com/worldland/netstats/internal/localstore"
)

var ErrUnknownNetwork = errors.New("unknown network")

// KV is the subset of the local store used for persistence
type KV interface {
	Get(key string, v any) error
	Put(key string, v any) error
}

// Settings is the flag snapshot exposed to clients.
// A nil AnalyticsConsent means the user has not answered yet.
type Settings struct {
	FeedbackDismissed bool  `json:"feedback_dismissed"`
	AnalyticsConsent  *bool `json:"analytics_consent"`
}

type Prefs struct {
	kv       KV
	networks []string
}

// New creates preferences restricted to the given network names; the first
// one is selected until the user picks another.
func New(kv KV, networks []string) *Prefs {
	return &Prefs{kv: kv, networks: networks}
}

// Networks lists the selectable network names
func (p *Prefs) Networks() []string {
	out := make([]string, len(p.networks))
	copy(out, p.networks)
	return out
}

// SelectedNetwork returns the persisted network, falling back to the first
// configured one when nothing valid is stored.
func (p *Prefs) SelectedNetwork() (string, error) {
	var name string
	err := p.kv.Get(localstore.KeySelectedNetwork, &name)
	if err != nil && !errors.Is(err, localstore.ErrNotFound) {
		return "", err
	}
	if err == nil && p.known(name) {
		return name, nil
	}
	if len(p.networks) == 0 {
		return "", ErrUnknownNetwork
	}
	return p.networks[0], nil
}

// SelectNetwork persists the chosen network
func (p *Prefs) SelectNetwork(name string) error {
	if !p.known(name) {
		return fmt.Errorf("%w: %s", ErrUnknownNetwork, name)
	}
	return p.kv.Put(localstore.KeySelectedNetwork, name)
}

func (p *Prefs) FeedbackDismissed() (bool, error) {
	return p.flag(localstore.KeyFeedbackDismissed)
}

func (p *Prefs) DismissFeedback() error {
	return p.kv.Put(localstore.KeyFeedbackDismissed, true)
}

// AnalyticsConsent returns nil when the user has not answered
func (p *Prefs) AnalyticsConsent() (*bool, error) {
	var v bool
	err := p.kv.Get(localstore.KeyAnalyticsConsent, &v)
	if errors.Is(err, localstore.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (p *Prefs) SetAnalyticsConsent(v bool) error {
	return p.kv.Put(localstore.KeyAnalyticsConsent, v)
}

// Settings returns the current flags
func (p *Prefs) Settings() (Settings, error) {
	dismissed, err := p.FeedbackDismissed()
	if err != nil {
		return Settings{}, err
	}
	consent, err := p.AnalyticsConsent()
	if err != nil {
		return Settings{}, err
	}
	return Settings{FeedbackDismissed: dismissed, AnalyticsConsent: consent}, nil
}

// ApplySettings persists the given flags. A nil consent leaves it unchanged,
// and a dismissed feedback dialog stays dismissed.
func (p *Prefs) ApplySettings(s Settings) error {
	if s.FeedbackDismissed {
		if err := p.DismissFeedback(); err != nil {
			return err
		}
	}
	if s.AnalyticsConsent != nil {
		if err := p.SetAnalyticsConsent(*s.AnalyticsConsent); err != nil {
			return err
		}
	}
	return nil
}

func (p *Prefs) flag(key string) (bool, error) {
	var v bool
	err := p.kv.Get(key, &v)
	if errors.Is(err, localstore.ErrNotFound) {
		return false, nil
	}
	return v, err
}

func (p *Prefs) known(name string) bool {
	for _, n := range p.networks {
		if n == name {
			return true
		}
	}
	return false
}
