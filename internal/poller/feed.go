package poller

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/worldland/netstats/internal/domain"
	"github.com/worldland/netstats/internal/providers"
)

// Source is the statistics API as seen by the feeds
type Source interface {
	OnlineProviders(ctx context.Context) ([]domain.ProviderRecord, error)
	HistoricalStats(ctx context.Context) ([]domain.HistoricalStat, error)
}

// Selector returns the network currently selected by the user
type Selector func() (string, error)

// guard orders fetch results: each fetch takes a generation number and only
// a result newer than the last applied one may be committed.
type guard struct {
	mu      sync.Mutex
	issued  uint64
	applied uint64
}

func (g *guard) begin() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.issued++
	return g.issued
}

// commit runs apply if gen is newer than every committed generation
func (g *guard) commit(gen uint64, apply func()) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if gen <= g.applied {
		return false
	}
	g.applied = gen
	apply()
	return true
}

type feedBase struct {
	guard
	sources  map[string]Source
	selected Selector
}

func (f *feedBase) source() (string, Source, error) {
	network, err := f.selected()
	if err != nil {
		return "", nil, err
	}
	src, ok := f.sources[network]
	if !ok {
		return "", nil, fmt.Errorf("no statistics API configured for network %q", network)
	}
	return network, src, nil
}

// stillSelected reports whether network is still the user's choice
func (f *feedBase) stillSelected(network string) bool {
	current, err := f.selected()
	return err == nil && current == network
}

// ProviderFeed fetches the online provider list into a view, dropping
// responses that arrive out of order or for a network no longer selected.
type ProviderFeed struct {
	feedBase
	view *providers.View
}

func NewProviderFeed(view *providers.View, sources map[string]Source, selected Selector) *ProviderFeed {
	return &ProviderFeed{
		feedBase: feedBase{sources: sources, selected: selected},
		view:     view,
	}
}

// Fetch loads the provider list of the selected network
func (f *ProviderFeed) Fetch(ctx context.Context) error {
	network, src, err := f.source()
	if err != nil {
		return err
	}
	gen := f.begin()

	list, err := src.OnlineProviders(ctx)
	if err != nil {
		return fmt.Errorf("fetch providers from %s: %w", network, err)
	}

	if !f.stillSelected(network) {
		logger.Debugw("dropping providers for deselected network", "network", network, "generation", gen)
		return nil
	}
	if !f.commit(gen, func() { f.view.SetProviders(list) }) {
		logger.Debugw("dropping stale providers", "network", network, "generation", gen)
		return nil
	}
	logger.Debugw("providers updated", "network", network, "count", len(list))
	return nil
}

// Reset empties the view and invalidates every fetch still in flight
func (f *ProviderFeed) Reset() {
	f.commit(f.begin(), f.view.Reset)
}

// Job wraps Fetch for the poller
func (f *ProviderFeed) Job(interval time.Duration) Job {
	return Job{Name: "providers", Interval: interval, Run: f.Fetch}
}

// HistoryFeed keeps the latest network history series
type HistoryFeed struct {
	feedBase

	mu        sync.RWMutex
	stats     []domain.HistoricalStat
	network   string
	updatedAt time.Time
}

func NewHistoryFeed(sources map[string]Source, selected Selector) *HistoryFeed {
	return &HistoryFeed{
		feedBase: feedBase{sources: sources, selected: selected},
	}
}

// Fetch loads the history of the selected network
func (f *HistoryFeed) Fetch(ctx context.Context) error {
	network, src, err := f.source()
	if err != nil {
		return err
	}
	gen := f.begin()

	stats, err := src.HistoricalStats(ctx)
	if err != nil {
		return fmt.Errorf("fetch history from %s: %w", network, err)
	}

	if !f.stillSelected(network) {
		return nil
	}
	f.commit(gen, func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.stats = stats
		f.network = network
		f.updatedAt = time.Now()
	})
	return nil
}

// Stats returns a copy of the latest series; ok is false until a fetch for
// the selected network has succeeded
func (f *HistoryFeed) Stats() (stats []domain.HistoricalStat, updatedAt time.Time, ok bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.updatedAt.IsZero() || !f.stillSelected(f.network) {
		return nil, time.Time{}, false
	}
	out := make([]domain.HistoricalStat, len(f.stats))
	copy(out, f.stats)
	return out, f.updatedAt, true
}

// Reset forgets the series and invalidates every fetch still in flight
func (f *HistoryFeed) Reset() {
	f.commit(f.begin(), func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.stats = nil
		f.network = ""
		f.updatedAt = time.Time{}
	})
}

// Job wraps Fetch for the poller
func (f *HistoryFeed) Job(interval time.Duration) Job {
	return Job{Name: "history", Interval: interval, Run: f.Fetch}
}
