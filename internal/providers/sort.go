package providers

import (
	"sort"

	"github.com/worldland/netstats/internal/domain"
)

// SortByEarnings orders providers online first, then by total earnings descending.
// Exact ties keep their original relative order.
func SortByEarnings(list []domain.ProviderRecord) {
	sort.SliceStable(list, func(i, j int) bool {
		a, b := &list[i], &list[j]
		if a.Online != b.Online {
			return a.Online
		}
		return a.EarningsTotal > b.EarningsTotal
	})
}

// Sorted returns a sorted copy, leaving the input untouched
func Sorted(list []domain.ProviderRecord) []domain.ProviderRecord {
	out := make([]domain.ProviderRecord, len(list))
	copy(out, list)
	SortByEarnings(out)
	return out
}
