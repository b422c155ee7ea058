package providers

import (
	"sync"
	"time"

	"github.com/worldland/netstats/internal/domain"
)

// View holds the raw provider list and filter state and derives the visible
// page from them. The filtered, sorted list is recomputed on the first read
// after any input changes.
type View struct {
	mu        sync.Mutex
	pageSize  int
	raw       []domain.ProviderRecord
	criteria  domain.FilterCriteria
	page      int
	updatedAt time.Time

	dirty   bool
	derived []domain.ProviderRecord
}

// NewView creates a view paginated by pageSize with default criteria
func NewView(pageSize int) *View {
	if pageSize <= 0 {
		pageSize = OnlinePageSize
	}
	return &View{
		pageSize: pageSize,
		criteria: domain.DefaultCriteria(),
		page:     1,
		dirty:    true,
	}
}

// SetProviders replaces the raw list, typically after a poll tick
func (v *View) SetProviders(list []domain.ProviderRecord) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.raw = list
	v.updatedAt = time.Now()
	v.dirty = true
}

// Reset drops the raw list, as after switching to another network
func (v *View) Reset() {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.raw = nil
	v.updatedAt = time.Time{}
	v.page = 1
	v.dirty = true
}

// Providers returns a copy of the raw list
func (v *View) Providers() []domain.ProviderRecord {
	v.mu.Lock()
	defer v.mu.Unlock()

	out := make([]domain.ProviderRecord, len(v.raw))
	copy(out, v.raw)
	return out
}

// UpdatedAt returns when the raw list was last replaced (zero if never)
func (v *View) UpdatedAt() time.Time {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.updatedAt
}

// Loaded reports whether a provider list has been received
func (v *View) Loaded() bool {
	return !v.UpdatedAt().IsZero()
}

// SetCriteria replaces the filters and resets the page to 1
func (v *View) SetCriteria(c domain.FilterCriteria) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.criteria = c.Clone()
	v.page = 1
	v.dirty = true
}

// Criteria returns a copy of the active filters
func (v *View) Criteria() domain.FilterCriteria {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.criteria.Clone()
}

// SetPage moves to the given 1-indexed page
func (v *View) SetPage(page int) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if page < 1 {
		page = 1
	}
	v.page = page
}

// Current returns the page currently selected
func (v *View) Current() Page[domain.ProviderRecord] {
	v.mu.Lock()
	defer v.mu.Unlock()
	return Paginate(v.filteredLocked(), v.page, v.pageSize)
}

// PageOf returns an arbitrary page without changing the selected one
func (v *View) PageOf(page int) Page[domain.ProviderRecord] {
	v.mu.Lock()
	defer v.mu.Unlock()
	return Paginate(v.filteredLocked(), page, v.pageSize)
}

// Filtered returns the full filtered and sorted list
func (v *View) Filtered() []domain.ProviderRecord {
	v.mu.Lock()
	defer v.mu.Unlock()

	derived := v.filteredLocked()
	out := make([]domain.ProviderRecord, len(derived))
	copy(out, derived)
	return out
}

// Summary aggregates the unfiltered list
func (v *View) Summary() domain.NetworkSummary {
	v.mu.Lock()
	defer v.mu.Unlock()
	return Summarize(v.raw)
}

// filteredLocked recomputes the derived list if an input changed (caller must hold lock)
func (v *View) filteredLocked() []domain.ProviderRecord {
	if v.dirty {
		v.derived = Filter(v.raw, v.criteria)
		SortByEarnings(v.derived)
		v.dirty = false
	}
	return v.derived
}
