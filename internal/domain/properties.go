package domain

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Property keys advertised in runtime offers
const (
	PropNodeName      = "golem.node.id.name"
	PropCPUThreads    = "golem.inf.cpu.threads"
	PropCPUCores      = "golem.inf.cpu.cores"
	PropCPUBrand      = "golem.inf.cpu.brand"
	PropCPUVendor     = "golem.inf.cpu.vendor"
	PropMemoryGiB     = "golem.inf.mem.gib"
	PropStorageGiB    = "golem.inf.storage.gib"
	PropGPUModel      = "golem.!exp.gap-35.v1.inf.gpu.model"
	PropGPUMemoryGiB  = "golem.!exp.gap-35.v1.inf.gpu.memory.total.gib"
	PropPricingCoeffs = "golem.com.pricing.model.linear.coeffs"
	PropUsageVector   = "golem.com.usage.vector"

	UsageCPUSec      = "golem.usage.cpu_sec"
	UsageDurationSec = "golem.usage.duration_sec"

	paymentPlatformPrefix = "golem.com.payment.platform."
)

// MainnetPlatforms lists payment platforms that settle on mainnet chains
var MainnetPlatforms = []string{
	"erc20-mainnet-glm",
	"erc20-polygon-glm",
	"erc20next-mainnet-glm",
	"erc20next-polygon-glm",
}

// PaymentAddressKey returns the property key holding the address for a payment platform
func PaymentAddressKey(platform string) string {
	return paymentPlatformPrefix + platform + ".address"
}

// Properties is the namespaced property map of a runtime offer.
// Lookups never fail loudly: a missing or mistyped key reports ok=false.
type Properties map[string]any

// Has reports whether the key is present with a non-null value
func (p Properties) Has(key string) bool {
	v, ok := p[key]
	return ok && v != nil
}

// String returns the value as a string. Numbers are formatted.
func (p Properties) String(key string) (string, bool) {
	switch v := p[key].(type) {
	case string:
		return v, true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case json.Number:
		return v.String(), true
	case bool:
		return strconv.FormatBool(v), true
	}
	return "", false
}

// Float returns the value as a float64. Numeric strings are parsed.
func (p Properties) Float(key string) (float64, bool) {
	return toFloat(p[key])
}

// Int returns the value as an int, truncating fractional numbers
func (p Properties) Int(key string) (int, bool) {
	f, ok := toFloat(p[key])
	if !ok {
		return 0, false
	}
	return int(f), true
}

// Floats returns the value as an ordered sequence of numbers.
// Any non-numeric element makes the whole value unavailable.
func (p Properties) Floats(key string) ([]float64, bool) {
	switch v := p[key].(type) {
	case []float64:
		return v, true
	case []any:
		out := make([]float64, 0, len(v))
		for _, item := range v {
			f, ok := toFloat(item)
			if !ok {
				return nil, false
			}
			out = append(out, f)
		}
		return out, true
	}
	return nil, false
}

// Strings returns the value as an ordered sequence of strings
func (p Properties) Strings(key string) ([]string, bool) {
	switch v := p[key].(type) {
	case []string:
		return v, true
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	case string:
		// single GPU offers sometimes collapse the list to a scalar
		return []string{v}, true
	}
	return nil, false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	}
	return 0, false
}
