package providers

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/worldland/netstats/internal/domain"
)

func providerList(n int) []domain.ProviderRecord {
	list := make([]domain.ProviderRecord, n)
	for i := range list {
		list[i] = domain.ProviderRecord{
			NodeID:        fmt.Sprintf("0x%03d", i),
			Online:        i%2 == 0,
			EarningsTotal: float64(i),
			Runtimes: map[string]domain.RuntimeInfo{
				domain.RuntimeVM: {Properties: domain.Properties{
					domain.PropCPUThreads: float64(4 + i%3*4),
				}},
			},
		}
	}
	return list
}

func TestView_FilterChangeResetsPage(t *testing.T) {
	v := NewView(10)
	v.SetProviders(providerList(100))
	v.SetPage(3)
	require.Equal(t, 3, v.Current().Page)

	v.SetCriteria(domain.FilterCriteria{CPUThreads: domain.Ptr("8")})

	assert.Equal(t, 1, v.Current().Page)
}

func TestView_RecomputesAfterProvidersChange(t *testing.T) {
	v := NewView(30)
	assert.False(t, v.Loaded())
	assert.Empty(t, v.Current().Items)

	v.SetProviders(providerList(10))
	first := v.Current()
	assert.True(t, v.Loaded())
	assert.Equal(t, 5, first.Total)
	assert.Equal(t, "0x008", first.Items[0].NodeID)

	v.SetProviders(providerList(4))
	assert.Equal(t, 2, v.Current().Total)
	// earlier page is untouched by the recompute
	assert.Equal(t, 5, len(first.Items))
}

func TestView_ShowOfflineSortsOnlineFirst(t *testing.T) {
	v := NewView(30)
	v.SetProviders(providerList(6))
	v.SetCriteria(domain.FilterCriteria{ShowOffline: domain.Ptr(true)})

	items := v.Current().Items
	require.Len(t, items, 6)
	ids := make([]string, len(items))
	for i := range items {
		ids[i] = items[i].NodeID
	}
	assert.Equal(t, []string{"0x004", "0x002", "0x000", "0x005", "0x003", "0x001"}, ids)
}

func TestView_PageOfDoesNotMoveSelection(t *testing.T) {
	v := NewView(2)
	v.SetProviders(providerList(10))

	p := v.PageOf(2)

	assert.Equal(t, 2, p.Page)
	assert.Equal(t, 1, v.Current().Page)
	assert.Equal(t, 3, p.LastPage)
}

func TestView_CriteriaIsCopied(t *testing.T) {
	v := NewView(2)
	c := domain.FilterCriteria{Hardware: []string{"RTX 4090"}}
	v.SetCriteria(c)

	c.Hardware[0] = "changed"

	assert.Equal(t, []string{"RTX 4090"}, v.Criteria().Hardware)
}

func TestSummarize(t *testing.T) {
	list := []domain.ProviderRecord{
		{
			NodeID: "a", Online: true, ComputingNow: true, Version: "0.15.2", Uptime: 100,
			Runtimes: map[string]domain.RuntimeInfo{
				domain.RuntimeVM: {Properties: domain.Properties{
					domain.PropCPUThreads: float64(8), domain.PropMemoryGiB: 16.0, domain.PropStorageGiB: 100.0,
				}},
				domain.RuntimeVMNvidia: {Properties: domain.Properties{
					domain.PropGPUModel: []any{"RTX 3090", "RTX 3090"},
				}},
			},
		},
		{NodeID: "b", Online: true, Version: "0.15.2", Uptime: 50},
		{NodeID: "c", Online: false, Uptime: 0, Runtimes: map[string]domain.RuntimeInfo{
			domain.RuntimeVM: {Properties: domain.Properties{domain.PropCPUThreads: float64(64)}},
		}},
	}

	s := Summarize(list)

	assert.Equal(t, 3, s.Total)
	assert.Equal(t, 2, s.Online)
	assert.Equal(t, 1, s.Offline)
	assert.Equal(t, 1, s.Computing)
	assert.Equal(t, 8, s.CPUThreads)
	assert.Equal(t, 16.0, s.MemoryGiB)
	assert.Equal(t, 100.0, s.StorageGiB)
	assert.Equal(t, 2, s.GPUs)
	assert.Equal(t, 50.0, s.AverageUptime)
	assert.Equal(t, map[string]int{"0.15.2": 2, "Unknown": 1}, s.Versions)
}

func TestView_Reset(t *testing.T) {
	v := NewView(2)
	v.SetProviders(providerList(10))
	v.SetPage(2)

	v.Reset()

	assert.False(t, v.Loaded())
	assert.Empty(t, v.Current().Items)
	assert.Equal(t, 1, v.Current().Page)
}
