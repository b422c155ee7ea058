package domain

import (
	"strconv"
	"strings"
)

// Runtime kinds observed on the network
const (
	RuntimeVM        = "vm"
	RuntimeVMNvidia  = "vm-nvidia"
	RuntimeWasmtime  = "wasmtime"
	RuntimeAutomatic = "automatic"
)

// ProviderRecord represents one network node as returned by the statistics API
type ProviderRecord struct {
	NodeID        string                 `json:"node_id"`
	Online        bool                   `json:"online"`
	ComputingNow  bool                   `json:"computing_now"`
	Version       string                 `json:"version"`
	Wallet        string                 `json:"wallet"`
	EarningsTotal float64                `json:"earnings_total"`
	Uptime        float64                `json:"uptime"`
	Runtimes      map[string]RuntimeInfo `json:"runtimes"`
}

// RuntimeInfo is a per-runtime capability and pricing snapshot
type RuntimeInfo struct {
	Properties     Properties `json:"properties"`
	HourlyPriceUSD float64    `json:"hourly_price_usd"`
	UpdatedAt      string     `json:"updated_at"`
}

// Runtime returns the runtime of the given kind
func (p *ProviderRecord) Runtime(kind string) (RuntimeInfo, bool) {
	rt, ok := p.Runtimes[kind]
	return rt, ok
}

// VMRuntime returns the runtime carrying the node's VM properties.
// GPU-only providers advertise those under vm-nvidia.
func (p *ProviderRecord) VMRuntime() (RuntimeInfo, bool) {
	if rt, ok := p.Runtimes[RuntimeVM]; ok {
		return rt, true
	}
	if rt, ok := p.Runtimes[RuntimeVMNvidia]; ok {
		return rt, true
	}
	return RuntimeInfo{}, false
}

// VMProperties returns the VM runtime properties, or nil
func (p *ProviderRecord) VMProperties() Properties {
	rt, ok := p.VMRuntime()
	if !ok {
		return nil
	}
	return rt.Properties
}

// Name returns the advertised node name, "Unknown" when absent
func (p *ProviderRecord) Name() string {
	if name, ok := p.VMProperties().String(PropNodeName); ok && name != "" {
		return name
	}
	return "Unknown"
}

// Field returns the string form of a top-level field addressed by its JSON name.
// The runtimes map is not addressable this way.
func (p *ProviderRecord) Field(name string) (string, bool) {
	switch name {
	case "node_id":
		return p.NodeID, true
	case "online":
		return strconv.FormatBool(p.Online), true
	case "computing_now":
		return strconv.FormatBool(p.ComputingNow), true
	case "version":
		return p.Version, true
	case "wallet":
		return p.Wallet, true
	case "earnings_total":
		return strconv.FormatFloat(p.EarningsTotal, 'f', -1, 64), true
	case "uptime":
		return strconv.FormatFloat(p.Uptime, 'f', -1, 64), true
	}
	return "", false
}

// IsMainnet reports whether the VM runtime advertises a mainnet payment platform address
func (p *ProviderRecord) IsMainnet() bool {
	props := p.VMProperties()
	for _, platform := range MainnetPlatforms {
		if addr, ok := props.String(PaymentAddressKey(platform)); ok && addr != "" {
			return true
		}
	}
	return false
}

// PaymentAddresses returns every payment platform address the VM runtime advertises
func (p *ProviderRecord) PaymentAddresses() []string {
	var out []string
	for key, v := range p.VMProperties() {
		if !strings.HasPrefix(key, paymentPlatformPrefix) || !strings.HasSuffix(key, ".address") {
			continue
		}
		if s, ok := v.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}
