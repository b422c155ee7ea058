// Package providers derives the filtered, sorted and paginated provider views
// shown on the dashboard from the raw list returned by the statistics API.
package providers

import (
	"math"
	"strconv"
	"strings"

	"github.com/worldland/netstats/internal/domain"
)

// numericTolerance is the allowed distance for memory and storage filters
const numericTolerance = 0.5

// Matches reports whether a provider satisfies every active filter.
// Nil filters are ignored; a filter whose property is missing fails closed.
func Matches(p *domain.ProviderRecord, c domain.FilterCriteria) bool {
	if !p.Online && (c.ShowOffline == nil || !*c.ShowOffline) {
		return false
	}

	props := p.VMProperties()

	if c.NodeName != nil {
		name, ok := props.String(domain.PropNodeName)
		if !ok || !containsFold(name, *c.NodeName) {
			return false
		}
	}
	if c.ProviderID != nil && !containsFold(p.NodeID, *c.ProviderID) {
		return false
	}
	if c.WalletAddress != nil && !matchWallet(p, *c.WalletAddress) {
		return false
	}
	if c.CPUThreads != nil && !matchExactInt(props, domain.PropCPUThreads, *c.CPUThreads) {
		return false
	}
	if c.MemoryGiB != nil && !matchNear(props, domain.PropMemoryGiB, *c.MemoryGiB) {
		return false
	}
	if c.StorageGiB != nil && !matchNear(props, domain.PropStorageGiB, *c.StorageGiB) {
		return false
	}
	if c.Network != nil && !matchNetwork(p, *c.Network) {
		return false
	}
	if c.Runtime != nil && !matchRuntime(p, *c.Runtime) {
		return false
	}
	if c.Price != nil && !matchPrice(p, c.Runtime, *c.Price) {
		return false
	}
	if len(c.Hardware) > 0 && !matchHardware(p, c.Hardware) {
		return false
	}
	for key, value := range c.Extra {
		if value == nil {
			continue
		}
		field, ok := p.Field(key)
		if !ok || !containsFold(field, *value) {
			return false
		}
	}
	return true
}

// Filter returns the providers matching the criteria, preserving order
func Filter(list []domain.ProviderRecord, c domain.FilterCriteria) []domain.ProviderRecord {
	out := make([]domain.ProviderRecord, 0, len(list))
	for i := range list {
		if Matches(&list[i], c) {
			out = append(out, list[i])
		}
	}
	return out
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func matchWallet(p *domain.ProviderRecord, want string) bool {
	if p.Wallet != "" {
		return containsFold(p.Wallet, want)
	}
	for _, addr := range p.PaymentAddresses() {
		if containsFold(addr, want) {
			return true
		}
	}
	return false
}

// matchExactInt compares against the integer part of raw, so "8.0" and
// "8 " both ask for 8.
func matchExactInt(props domain.Properties, key, raw string) bool {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return false
	}
	have, ok := props.Float(key)
	return ok && have == math.Trunc(f)
}

func matchNear(props domain.Properties, key, raw string) bool {
	want, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return false
	}
	have, ok := props.Float(key)
	return ok && math.Abs(have-want) <= numericTolerance
}

func matchNetwork(p *domain.ProviderRecord, network string) bool {
	switch network {
	case domain.NetworkMainnet:
		return p.IsMainnet()
	case domain.NetworkTestnet:
		return !p.IsMainnet()
	}
	return false
}

func matchRuntime(p *domain.ProviderRecord, runtime string) bool {
	if runtime == "" || runtime == domain.RuntimeAll {
		return true
	}
	_, ok := p.Runtime(runtime)
	return ok
}

// matchPrice keeps providers offering at least one considered runtime at or
// below the maximum hourly USD price.
func matchPrice(p *domain.ProviderRecord, runtime *string, raw string) bool {
	limit, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return false
	}
	for kind, rt := range p.Runtimes {
		if runtime != nil && *runtime != "" && *runtime != domain.RuntimeAll && kind != *runtime {
			continue
		}
		if rt.HourlyPriceUSD <= limit {
			return true
		}
	}
	return false
}

func matchHardware(p *domain.ProviderRecord, wanted []string) bool {
	var available []string
	for _, rt := range p.Runtimes {
		if brand, ok := rt.Properties.String(domain.PropCPUBrand); ok {
			available = append(available, brand)
		}
		if models, ok := rt.Properties.Strings(domain.PropGPUModel); ok {
			available = append(available, models...)
		}
	}
	for _, want := range wanted {
		for _, have := range available {
			if strings.EqualFold(strings.TrimSpace(have), strings.TrimSpace(want)) {
				return true
			}
		}
	}
	return false
}
