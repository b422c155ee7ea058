package logs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogger_FollowsReplacedCore(t *testing.T) {
	logger := Logger("poller")

	core, recorded := observer.New(zap.DebugLevel)
	restore := Replace(core)
	defer restore()

	logger.With("network", "Testnet").Infow("tick", "count", 3)

	entries := recorded.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "poller", entries[0].LoggerName)
	assert.Equal(t, "tick", entries[0].Message)
	ctx := entries[0].ContextMap()
	assert.Equal(t, "Testnet", ctx["network"])
	assert.EqualValues(t, 3, ctx["count"])
}

func TestLogger_LevelRespected(t *testing.T) {
	core, recorded := observer.New(zap.WarnLevel)
	restore := Replace(core)
	defer restore()

	Logger("api").Info("hidden")
	Logger("api").Warn("shown")

	require.Equal(t, 1, recorded.Len())
	assert.Equal(t, "shown", recorded.All()[0].Message)
}

func TestSetup_WritesRotatedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "netstats.log")
	prev := active.Load()
	defer active.Store(prev)

	require.NoError(t, Setup(Options{Level: "debug", JSON: true, File: path, MaxSizeMB: 1}))
	Logger("store").Debugw("opened", "path", "/tmp/x")
	_ = Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"opened"`)
	assert.Contains(t, string(data), `"logger":"store"`)
}

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("WARNING")
	require.NoError(t, err)
	assert.Equal(t, zap.WarnLevel, lvl)

	_, err = ParseLevel("loud")
	assert.Error(t, err)
}
