package pricing

import (
	"sort"

	"github.com/worldland/netstats/internal/domain"
)

// RuntimePricing is one row of a node's pricing table.
// Nil prices are unavailable in the offer.
type RuntimePricing struct {
	Runtime        string   `json:"runtime"`
	CPUPerHour     *float64 `json:"cpu_per_hour"`
	EnvPerHour     *float64 `json:"env_per_hour"`
	StartPrice     *float64 `json:"start_price"`
	HourlyPriceUSD float64  `json:"hourly_price_usd"`
	UpdatedAt      string   `json:"updated_at"`
}

// Summarize extracts the pricing row of a single runtime
func Summarize(kind string, rt domain.RuntimeInfo) RuntimePricing {
	row := RuntimePricing{
		Runtime:        kind,
		HourlyPriceUSD: rt.HourlyPriceUSD,
		UpdatedAt:      rt.UpdatedAt,
	}
	if v, ok := Price(rt.Properties, domain.UsageCPUSec); ok {
		row.CPUPerHour = &v
	}
	if v, ok := Price(rt.Properties, domain.UsageDurationSec); ok {
		row.EnvPerHour = &v
	}
	if v, ok := StartPrice(rt.Properties); ok {
		row.StartPrice = &v
	}
	return row
}

// Table builds pricing rows for every runtime of a provider, ordered by runtime name
func Table(p *domain.ProviderRecord) []RuntimePricing {
	kinds := make([]string, 0, len(p.Runtimes))
	for kind := range p.Runtimes {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)

	rows := make([]RuntimePricing, 0, len(kinds))
	for _, kind := range kinds {
		rows = append(rows, Summarize(kind, p.Runtimes[kind]))
	}
	return rows
}

// ProviderPricing is one row of the network-wide pricing table
type ProviderPricing struct {
	NodeID string `json:"node_id"`
	Name   string `json:"name"`
	RuntimePricing
}

// NetworkTable lists the pricing of every online provider offering runtime,
// cheapest hourly USD price first. Ties keep input order.
func NetworkTable(list []domain.ProviderRecord, runtime string) []ProviderPricing {
	rows := make([]ProviderPricing, 0, len(list))
	for i := range list {
		p := &list[i]
		if !p.Online {
			continue
		}
		rt, ok := p.Runtime(runtime)
		if !ok {
			continue
		}
		rows = append(rows, ProviderPricing{
			NodeID:         p.NodeID,
			Name:           p.Name(),
			RuntimePricing: Summarize(runtime, rt),
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].HourlyPriceUSD < rows[j].HourlyPriceUSD
	})
	return rows
}
