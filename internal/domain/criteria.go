package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// Filter keys recognised by the provider filter
const (
	FilterNodeName      = "nodeName"
	FilterProviderID    = "providerId"
	FilterWalletAddress = "walletAddress"
	FilterNetwork       = "network"
	FilterCPUThreads    = PropCPUThreads
	FilterMemoryGiB     = PropMemoryGiB
	FilterStorageGiB    = PropStorageGiB
	FilterShowOffline   = "showOffline"
	FilterRuntime       = "runtime"
	FilterPrice         = "price"
	FilterHardware      = "hardware"

	NetworkMainnet = "Mainnet"
	NetworkTestnet = "Testnet"

	RuntimeAll = "all"
)

// FilterCriteria holds the active provider filters.
// A nil field means the filter is ignored. Numeric filters keep the raw
// input text and are parsed at match time so a bad value fails closed.
type FilterCriteria struct {
	NodeName      *string
	ProviderID    *string
	WalletAddress *string
	Network       *string
	CPUThreads    *string
	MemoryGiB     *string
	StorageGiB    *string
	ShowOffline   *bool
	Runtime       *string
	Price         *string
	Hardware      []string

	// Extra holds keys without a dedicated rule, matched against top-level provider fields
	Extra map[string]*string
}

// DefaultCriteria is the filter state used when no preset is active
func DefaultCriteria() FilterCriteria {
	return FilterCriteria{Runtime: Ptr(RuntimeAll)}
}

// Ptr returns a pointer to v
func Ptr[T any](v T) *T {
	return &v
}

// IsZero reports whether every filter is ignored
func (c FilterCriteria) IsZero() bool {
	return c.NodeName == nil && c.ProviderID == nil && c.WalletAddress == nil &&
		c.Network == nil && c.CPUThreads == nil && c.MemoryGiB == nil &&
		c.StorageGiB == nil && c.ShowOffline == nil && c.Runtime == nil &&
		c.Price == nil && c.Hardware == nil && len(c.Extra) == 0
}

// Clone returns a deep copy
func (c FilterCriteria) Clone() FilterCriteria {
	out := c
	if c.Hardware != nil {
		out.Hardware = append([]string(nil), c.Hardware...)
	}
	if c.Extra != nil {
		out.Extra = make(map[string]*string, len(c.Extra))
		for k, v := range c.Extra {
			out.Extra[k] = v
		}
	}
	return out
}

// ToMap renders the criteria as the flat key/value object used on the wire.
// Unset recognised keys are rendered as null.
func (c FilterCriteria) ToMap() map[string]any {
	m := map[string]any{
		FilterNodeName:      c.NodeName,
		FilterProviderID:    c.ProviderID,
		FilterWalletAddress: c.WalletAddress,
		FilterNetwork:       c.Network,
		FilterCPUThreads:    c.CPUThreads,
		FilterMemoryGiB:     c.MemoryGiB,
		FilterStorageGiB:    c.StorageGiB,
		FilterShowOffline:   c.ShowOffline,
		FilterRuntime:       c.Runtime,
		FilterPrice:         c.Price,
		FilterHardware:      c.Hardware,
	}
	for k, v := range c.Extra {
		m[k] = v
	}
	return m
}

// MarshalJSON implements json.Marshaler
func (c FilterCriteria) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.ToMap())
}

// UnmarshalJSON implements json.Unmarshaler
func (c *FilterCriteria) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := CriteriaFromRaw(raw, nil)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// CriteriaFromRaw builds criteria from a decoded JSON object. Keys listed in
// skip are ignored, which lets wrappers such as presets carry their own fields.
func CriteriaFromRaw(raw map[string]json.RawMessage, skip map[string]bool) (FilterCriteria, error) {
	var c FilterCriteria
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if skip[key] {
			continue
		}
		val := raw[key]
		var err error
		switch key {
		case FilterShowOffline:
			c.ShowOffline, err = decodeBool(val)
		case FilterHardware:
			c.Hardware, err = decodeStrings(val)
		default:
			var s *string
			s, err = decodeText(val)
			if err == nil {
				c.setText(key, s)
			}
		}
		if err != nil {
			return FilterCriteria{}, fmt.Errorf("filter %q: %w", key, err)
		}
	}
	return c, nil
}

// Set assigns a textual filter value by key; nil clears it
func (c *FilterCriteria) Set(key string, value *string) error {
	switch key {
	case FilterShowOffline:
		if value == nil {
			c.ShowOffline = nil
			return nil
		}
		b, err := strconv.ParseBool(*value)
		if err != nil {
			return fmt.Errorf("filter %q: %w", key, err)
		}
		c.ShowOffline = &b
	case FilterHardware:
		if value == nil {
			c.Hardware = nil
			return nil
		}
		c.Hardware = append(c.Hardware, *value)
	default:
		c.setText(key, value)
	}
	return nil
}

func (c *FilterCriteria) setText(key string, s *string) {
	switch key {
	case FilterNodeName:
		c.NodeName = s
	case FilterProviderID:
		c.ProviderID = s
	case FilterWalletAddress:
		c.WalletAddress = s
	case FilterNetwork:
		c.Network = s
	case FilterCPUThreads:
		c.CPUThreads = s
	case FilterMemoryGiB:
		c.MemoryGiB = s
	case FilterStorageGiB:
		c.StorageGiB = s
	case FilterRuntime:
		c.Runtime = s
	case FilterPrice:
		c.Price = s
	default:
		if s == nil {
			delete(c.Extra, key)
			return
		}
		if c.Extra == nil {
			c.Extra = make(map[string]*string)
		}
		c.Extra[key] = s
	}
}

func isNull(val json.RawMessage) bool {
	return len(val) == 0 || bytes.Equal(bytes.TrimSpace(val), []byte("null"))
}

func decodeBool(val json.RawMessage) (*bool, error) {
	if isNull(val) {
		return nil, nil
	}
	var b bool
	if err := json.Unmarshal(val, &b); err == nil {
		return &b, nil
	}
	var s string
	if err := json.Unmarshal(val, &s); err != nil {
		return nil, err
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// decodeText accepts strings, numbers and booleans and keeps their text form
func decodeText(val json.RawMessage) (*string, error) {
	if isNull(val) {
		return nil, nil
	}
	var s string
	if err := json.Unmarshal(val, &s); err == nil {
		return &s, nil
	}
	var n json.Number
	if err := json.Unmarshal(val, &n); err == nil {
		str := n.String()
		return &str, nil
	}
	var b bool
	if err := json.Unmarshal(val, &b); err == nil {
		str := strconv.FormatBool(b)
		return &str, nil
	}
	return nil, fmt.Errorf("unsupported value %s", string(val))
}

func decodeStrings(val json.RawMessage) ([]string, error) {
	if isNull(val) {
		return nil, nil
	}
	var list []string
	if err := json.Unmarshal(val, &list); err == nil {
		return list, nil
	}
	var single string
	if err := json.Unmarshal(val, &single); err != nil {
		return nil, err
	}
	return []string{single}, nil
}
