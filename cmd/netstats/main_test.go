package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/worldland/netstats/internal/domain"
)

func TestParseFilters(t *testing.T) {
	c, err := parseFilters(domain.DefaultCriteria(), []string{
		"golem.inf.cpu.threads=8",
		"showOffline=true",
		"hardware=RTX 4090",
		"runtime=",
	})

	require.NoError(t, err)
	assert.Equal(t, "8", *c.CPUThreads)
	assert.True(t, *c.ShowOffline)
	assert.Equal(t, []string{"RTX 4090"}, c.Hardware)
	assert.Nil(t, c.Runtime)
}

func TestParseFilters_DoesNotModifyBase(t *testing.T) {
	base := domain.FilterCriteria{Hardware: []string{"A100"}}

	c, err := parseFilters(base, []string{"hardware=H100"})

	require.NoError(t, err)
	assert.Equal(t, []string{"A100", "H100"}, c.Hardware)
	assert.Equal(t, []string{"A100"}, base.Hardware)
}

func TestParseFilters_Invalid(t *testing.T) {
	_, err := parseFilters(domain.FilterCriteria{}, []string{"no-separator"})
	assert.Error(t, err)

	_, err = parseFilters(domain.FilterCriteria{}, []string{"showOffline=perhaps"})
	assert.Error(t, err)
}
