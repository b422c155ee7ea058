package providers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/worldland/netstats/internal/domain"
)

func newProvider(id string, online bool, props domain.Properties) domain.ProviderRecord {
	return domain.ProviderRecord{
		NodeID:  id,
		Online:  online,
		Version: "0.15.2",
		Wallet:  "0xA1B2c3D4e5F6a7B8c9D0e1F2a3B4c5D6e7F8a9B0",
		Uptime:  99.5,
		Runtimes: map[string]domain.RuntimeInfo{
			domain.RuntimeVM: {Properties: props, HourlyPriceUSD: 0.04},
		},
	}
}

func vmProps() domain.Properties {
	return domain.Properties{
		domain.PropNodeName:   "golem-provider-Alpha",
		domain.PropCPUThreads: float64(16),
		domain.PropMemoryGiB:  8.4,
		domain.PropStorageGiB: 120.2,
		domain.PropCPUBrand:   "AMD Ryzen 9 5950X 16-Core Processor",
	}
}

func TestMatches_OfflineRejectedByDefault(t *testing.T) {
	p := newProvider("0x01", false, vmProps())

	assert.False(t, Matches(&p, domain.FilterCriteria{ShowOffline: domain.Ptr(false)}))
	assert.False(t, Matches(&p, domain.FilterCriteria{}))
	// other criteria matching does not rescue an offline node
	assert.False(t, Matches(&p, domain.FilterCriteria{ProviderID: domain.Ptr("0x01")}))
}

func TestMatches_OfflineAcceptedWhenShown(t *testing.T) {
	p := newProvider("0x01", false, vmProps())

	assert.True(t, Matches(&p, domain.FilterCriteria{ShowOffline: domain.Ptr(true)}))
}

func TestMatches_AllNullCriteria(t *testing.T) {
	list := []domain.ProviderRecord{
		newProvider("0x01", true, vmProps()),
		newProvider("0x02", false, vmProps()),
		newProvider("0x03", true, nil),
		{NodeID: "0x04", Online: true},
		{NodeID: "0x05", Online: false},
	}

	for i := range list {
		assert.Equal(t, list[i].Online, Matches(&list[i], domain.FilterCriteria{}), list[i].NodeID)
	}
}

func TestMatches_NodeNameCaseInsensitiveSubstring(t *testing.T) {
	p := newProvider("0x01", true, vmProps())

	assert.True(t, Matches(&p, domain.FilterCriteria{NodeName: domain.Ptr("ALPHA")}))
	assert.False(t, Matches(&p, domain.FilterCriteria{NodeName: domain.Ptr("beta")}))

	noName := newProvider("0x02", true, domain.Properties{})
	assert.False(t, Matches(&noName, domain.FilterCriteria{NodeName: domain.Ptr("alpha")}))
}

func TestMatches_ProviderIDAndWallet(t *testing.T) {
	p := newProvider("0xDeadBeef", true, vmProps())

	assert.True(t, Matches(&p, domain.FilterCriteria{ProviderID: domain.Ptr("deadbeef")}))
	assert.False(t, Matches(&p, domain.FilterCriteria{ProviderID: domain.Ptr("cafe")}))
	assert.True(t, Matches(&p, domain.FilterCriteria{WalletAddress: domain.Ptr("0xa1b2")}))
	assert.False(t, Matches(&p, domain.FilterCriteria{WalletAddress: domain.Ptr("0xffff")}))
}

func TestMatches_WalletFallsBackToPaymentAddress(t *testing.T) {
	props := vmProps()
	props[domain.PaymentAddressKey("erc20-holesky-tglm")] = "0x1234abcd"
	p := newProvider("0x01", true, props)
	p.Wallet = ""

	assert.True(t, Matches(&p, domain.FilterCriteria{WalletAddress: domain.Ptr("1234AB")}))
}

func TestMatches_CPUThreadsExact(t *testing.T) {
	p := newProvider("0x01", true, vmProps())

	assert.True(t, Matches(&p, domain.FilterCriteria{CPUThreads: domain.Ptr("16")}))
	assert.False(t, Matches(&p, domain.FilterCriteria{CPUThreads: domain.Ptr("15")}))
	assert.False(t, Matches(&p, domain.FilterCriteria{CPUThreads: domain.Ptr("sixteen")}))
	assert.True(t, Matches(&p, domain.FilterCriteria{CPUThreads: domain.Ptr("16.0")}))
	assert.True(t, Matches(&p, domain.FilterCriteria{CPUThreads: domain.Ptr("16.7")}))
	assert.True(t, Matches(&p, domain.FilterCriteria{CPUThreads: domain.Ptr(" 16 ")}))
}

func TestMatches_MemoryTolerance(t *testing.T) {
	near := newProvider("0x01", true, domain.Properties{domain.PropMemoryGiB: 8.4})
	far := newProvider("0x02", true, domain.Properties{domain.PropMemoryGiB: 8.6})
	missing := newProvider("0x03", true, domain.Properties{})
	c := domain.FilterCriteria{MemoryGiB: domain.Ptr("8")}

	assert.True(t, Matches(&near, c))
	assert.False(t, Matches(&far, c))
	assert.False(t, Matches(&missing, c))
}

func TestMatches_StorageTolerance(t *testing.T) {
	p := newProvider("0x01", true, vmProps())

	assert.True(t, Matches(&p, domain.FilterCriteria{StorageGiB: domain.Ptr("120")}))
	assert.False(t, Matches(&p, domain.FilterCriteria{StorageGiB: domain.Ptr("121")}))
}

func TestMatches_Network(t *testing.T) {
	mainnetProps := vmProps()
	mainnetProps[domain.PaymentAddressKey("erc20-polygon-glm")] = "0xabc"
	mainnet := newProvider("0x01", true, mainnetProps)
	testnet := newProvider("0x02", true, vmProps())

	assert.True(t, Matches(&mainnet, domain.FilterCriteria{Network: domain.Ptr(domain.NetworkMainnet)}))
	assert.False(t, Matches(&mainnet, domain.FilterCriteria{Network: domain.Ptr(domain.NetworkTestnet)}))
	assert.True(t, Matches(&testnet, domain.FilterCriteria{Network: domain.Ptr(domain.NetworkTestnet)}))
	assert.False(t, Matches(&testnet, domain.FilterCriteria{Network: domain.Ptr(domain.NetworkMainnet)}))
}

func TestMatches_RuntimeAndPrice(t *testing.T) {
	p := newProvider("0x01", true, vmProps())
	p.Runtimes[domain.RuntimeVMNvidia] = domain.RuntimeInfo{Properties: domain.Properties{}, HourlyPriceUSD: 1.5}

	assert.True(t, Matches(&p, domain.DefaultCriteria()))
	assert.True(t, Matches(&p, domain.FilterCriteria{Runtime: domain.Ptr(domain.RuntimeVMNvidia)}))
	assert.False(t, Matches(&p, domain.FilterCriteria{Runtime: domain.Ptr(domain.RuntimeWasmtime)}))

	assert.True(t, Matches(&p, domain.FilterCriteria{Price: domain.Ptr("0.05")}))
	assert.False(t, Matches(&p, domain.FilterCriteria{
		Runtime: domain.Ptr(domain.RuntimeVMNvidia),
		Price:   domain.Ptr("1"),
	}))
}

func TestMatches_Hardware(t *testing.T) {
	p := newProvider("0x01", true, vmProps())
	p.Runtimes[domain.RuntimeVMNvidia] = domain.RuntimeInfo{Properties: domain.Properties{
		domain.PropGPUModel: []any{"NVIDIA GeForce RTX 4090"},
	}}

	assert.True(t, Matches(&p, domain.FilterCriteria{Hardware: []string{"nvidia geforce rtx 4090"}}))
	assert.True(t, Matches(&p, domain.FilterCriteria{Hardware: []string{"Intel", "AMD Ryzen 9 5950X 16-Core Processor"}}))
	assert.False(t, Matches(&p, domain.FilterCriteria{Hardware: []string{"NVIDIA A100"}}))
	assert.True(t, Matches(&p, domain.FilterCriteria{Hardware: []string{}}))
}

func TestMatches_FallbackTopLevelField(t *testing.T) {
	p := newProvider("0x01", true, vmProps())
	c := domain.FilterCriteria{}
	_ = c.Set("version", domain.Ptr("0.15"))

	assert.True(t, Matches(&p, c))

	_ = c.Set("version", domain.Ptr("0.16"))
	assert.False(t, Matches(&p, c))

	// nested runtime properties are not reachable through the fallback
	other := domain.FilterCriteria{}
	_ = other.Set(domain.PropCPUBrand, domain.Ptr("AMD"))
	assert.False(t, Matches(&p, other))

	cleared := domain.FilterCriteria{}
	_ = cleared.Set("version", nil)
	assert.True(t, Matches(&p, cleared))
}

func TestFilter_PreservesOrder(t *testing.T) {
	list := []domain.ProviderRecord{
		newProvider("0x01", true, vmProps()),
		newProvider("0x02", false, vmProps()),
		newProvider("0x03", true, vmProps()),
	}

	out := Filter(list, domain.FilterCriteria{})

	assert.Len(t, out, 2)
	assert.Equal(t, "0x01", out[0].NodeID)
	assert.Equal(t, "0x03", out[1].NodeID)
}
