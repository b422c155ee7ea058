// Package pricing evaluates linear pricing models advertised in runtime offers.
//
// A linear model is a coefficient vector paired positionally with a usage
// vector. Usage coefficients are quoted per second; the trailing coefficient
// is the fixed start price.
package pricing

import (
	"math"

	"github.com/worldland/netstats/internal/domain"
)

const (
	secondsPerHour = 3600
	roundPlaces    = 1e10
)

// Round10 rounds to 10 decimal places
func Round10(v float64) float64 {
	return math.Round(v*roundPlaces) / roundPlaces
}

// HourlyPrices maps each usage-vector entry to its hourly price.
// Returns nil when the model is missing or inconsistent.
func HourlyPrices(props domain.Properties) map[string]float64 {
	coeffs, usage, ok := model(props)
	if !ok {
		return nil
	}
	prices := make(map[string]float64, len(usage))
	for i, name := range usage {
		prices[name] = Round10(coeffs[i] * secondsPerHour)
	}
	return prices
}

// Price returns the hourly price for one usage unit.
// ok is false when the unit is not priced; callers render that as unavailable.
func Price(props domain.Properties, usage string) (float64, bool) {
	price, ok := HourlyPrices(props)[usage]
	return price, ok
}

// StartPrice returns the fixed start price, which is not time based
func StartPrice(props domain.Properties) (float64, bool) {
	coeffs, usage, ok := model(props)
	if !ok || len(coeffs) != len(usage)+1 {
		return 0, false
	}
	return Round10(coeffs[len(coeffs)-1]), true
}

func model(props domain.Properties) ([]float64, []string, bool) {
	coeffs, ok := props.Floats(domain.PropPricingCoeffs)
	if !ok || len(coeffs) == 0 {
		return nil, nil, false
	}
	usage, ok := props.Strings(domain.PropUsageVector)
	if !ok || len(coeffs) < len(usage) {
		return nil, nil, false
	}
	return coeffs, usage, true
}
