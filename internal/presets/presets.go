// Package presets manages named filter snapshots persisted in the local store
// as an ordered array of {...criteria, "name": ...} objects.
package presets

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/worldland/netstats/internal/domain"
	"github.com/worldland/netstats/internal/localstore"
	"github.com/worldland/netstats/internal/logs"
)

var (
	ErrPresetNotFound = errors.New("preset not found")
	ErrPresetExists   = errors.New("preset already exists")
	ErrEmptyName      = errors.New("preset name is empty")
)

var logger = logs.Logger("presets")

const nameKey = "name"

// KV is the subset of the local store used for persistence
type KV interface {
	Get(key string, v any) error
	Put(key string, v any) error
}

// Preset is a named filter snapshot
type Preset struct {
	Name     string
	Criteria domain.FilterCriteria
}

// MarshalJSON flattens the criteria next to the name
func (p Preset) MarshalJSON() ([]byte, error) {
	m := p.Criteria.ToMap()
	m[nameKey] = p.Name
	return json.Marshal(m)
}

// UnmarshalJSON implements json.Unmarshaler
func (p *Preset) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	var name string
	if v, ok := raw[nameKey]; ok {
		if err := json.Unmarshal(v, &name); err != nil {
			return fmt.Errorf("preset name: %w", err)
		}
	}
	c, err := domain.CriteriaFromRaw(raw, map[string]bool{nameKey: true})
	if err != nil {
		return fmt.Errorf("preset %q: %w", name, err)
	}
	p.Name = name
	p.Criteria = c
	return nil
}

// Manager reads and writes the preset array. Every operation rewrites the
// whole array under one lock.
type Manager struct {
	mu sync.Mutex
	kv KV
}

func NewManager(kv KV) *Manager {
	return &Manager{kv: kv}
}

// List returns the stored presets in creation order
func (m *Manager) List() ([]Preset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.load()
}

// Get returns the preset with the given name
func (m *Manager) Get(name string) (Preset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	list, err := m.load()
	if err != nil {
		return Preset{}, err
	}
	i := indexOf(list, name)
	if i < 0 {
		return Preset{}, fmt.Errorf("%w: %s", ErrPresetNotFound, name)
	}
	return list[i], nil
}

// Create appends a new preset holding a copy of the criteria
func (m *Manager) Create(name string, c domain.FilterCriteria) (Preset, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Preset{}, ErrEmptyName
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	list, err := m.load()
	if err != nil {
		return Preset{}, err
	}
	if indexOf(list, name) >= 0 {
		return Preset{}, fmt.Errorf("%w: %s", ErrPresetExists, name)
	}

	p := Preset{Name: name, Criteria: c.Clone()}
	list = append(list, p)
	if err := m.save(list); err != nil {
		return Preset{}, err
	}
	logger.Infow("preset created", "name", name)
	return p, nil
}

// Update overwrites the stored criteria of the active preset
func (m *Manager) Update(active string, c domain.FilterCriteria) (Preset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	list, err := m.load()
	if err != nil {
		return Preset{}, err
	}
	i := indexOf(list, active)
	if i < 0 {
		return Preset{}, fmt.Errorf("%w: %s", ErrPresetNotFound, active)
	}

	list[i].Criteria = c.Clone()
	if err := m.save(list); err != nil {
		return Preset{}, err
	}
	logger.Infow("preset updated", "name", active)
	return list[i], nil
}

// Remove deletes the named preset and returns the criteria to activate next
// when it was the active one: the first remaining preset, or the default
// criteria when none remain.
func (m *Manager) Remove(active string) (next domain.FilterCriteria, nextName string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	list, err := m.load()
	if err != nil {
		return domain.FilterCriteria{}, "", err
	}
	i := indexOf(list, active)
	if i < 0 {
		return domain.FilterCriteria{}, "", fmt.Errorf("%w: %s", ErrPresetNotFound, active)
	}

	list = append(list[:i], list[i+1:]...)
	if err := m.save(list); err != nil {
		return domain.FilterCriteria{}, "", err
	}
	logger.Infow("preset removed", "name", active, "remaining", len(list))

	if len(list) == 0 {
		return domain.DefaultCriteria(), "", nil
	}
	return list[0].Criteria.Clone(), list[0].Name, nil
}

// Apply returns the criteria stored in the named preset
func (m *Manager) Apply(name string) (domain.FilterCriteria, error) {
	p, err := m.Get(name)
	if err != nil {
		return domain.FilterCriteria{}, err
	}
	return p.Criteria.Clone(), nil
}

// load reads the array (caller must hold lock); a missing key is an empty list
func (m *Manager) load() ([]Preset, error) {
	var list []Preset
	err := m.kv.Get(localstore.KeyFilterPresets, &list)
	if errors.Is(err, localstore.ErrNotFound) {
		return []Preset{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load presets: %w", err)
	}
	if list == nil {
		list = []Preset{}
	}
	return list, nil
}

func (m *Manager) save(list []Preset) error {
	if err := m.kv.Put(localstore.KeyFilterPresets, list); err != nil {
		return fmt.Errorf("save presets: %w", err)
	}
	return nil
}

func indexOf(list []Preset, name string) int {
	for i := range list {
		if list[i].Name == name {
			return i
		}
	}
	return -1
}
