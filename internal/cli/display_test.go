package cli

import (
	"bytes"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"

	"github.com/worldland/netstats/internal/domain"
	"github.com/worldland/netstats/internal/presets"
	"github.com/worldland/netstats/internal/pricing"
	"github.com/worldland/netstats/internal/providers"
)

func init() {
	color.NoColor = true
}

func TestPrintProviders(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)
	list := []domain.ProviderRecord{{
		NodeID:        "0x1234567890abcdef1234",
		Online:        true,
		EarningsTotal: 12.5,
		Runtimes: map[string]domain.RuntimeInfo{
			domain.RuntimeVM: {Properties: domain.Properties{
				domain.PropNodeName:   "alpha",
				domain.PropCPUThreads: float64(16),
			}},
		},
	}}

	p.PrintProviders(providers.Paginate(list, 1, 30))

	out := buf.String()
	assert.Contains(t, out, "Providers (1)")
	assert.Contains(t, out, "alpha")
	assert.Contains(t, out, "0x123456...1234")
	assert.Contains(t, out, "online")
	assert.Contains(t, out, "12.50")
	assert.NotContains(t, out, "page")
}

func TestPrintProviders_EmptyAndPager(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintProviders(providers.Paginate([]domain.ProviderRecord{}, 1, 30))
	assert.Contains(t, buf.String(), "no providers match")

	buf.Reset()
	list := make([]domain.ProviderRecord, 100)
	p.PrintProviders(providers.Paginate(list, 2, 10))
	assert.Contains(t, buf.String(), "page 1 [2] 3 4 5 of 10")
}

func TestPrintPricing_MissingPrices(t *testing.T) {
	var buf bytes.Buffer
	cpu := 0.1
	NewPrinter(&buf).PrintPricing([]pricing.RuntimePricing{
		{Runtime: "vm", CPUPerHour: &cpu, HourlyPriceUSD: 0.02},
	})

	out := buf.String()
	assert.Contains(t, out, "vm")
	assert.Contains(t, out, "0.1")
	assert.Contains(t, out, "-")
}

func TestPrintPresets_MarksActive(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintPresets([]presets.Preset{
		{Name: "gpu", Criteria: domain.FilterCriteria{Runtime: domain.Ptr("vm-nvidia")}},
		{Name: "empty"},
	}, "gpu")

	out := buf.String()
	assert.Contains(t, out, "* ")
	assert.Contains(t, out, "runtime=vm-nvidia")
	assert.Contains(t, out, "(none)")
}

func TestDescribeCriteria(t *testing.T) {
	c := domain.FilterCriteria{
		ShowOffline: domain.Ptr(true),
		CPUThreads:  domain.Ptr("8"),
		Hardware:    []string{},
	}

	assert.Equal(t, "golem.inf.cpu.threads=8 showOffline=true", describeCriteria(c))
	assert.Equal(t, "(none)", describeCriteria(domain.FilterCriteria{}))
}

func TestPrintHealthcheck(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintHealthcheck(&domain.HealthcheckTask{TaskID: "t1", NodeID: "0x1", Status: domain.HealthcheckFailed, Detail: "timeout"})

	out := buf.String()
	assert.Contains(t, out, "failed")
	assert.Contains(t, out, "timeout")
}
