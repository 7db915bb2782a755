package daemon

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig(t *testing.T) *Config {
	t.Helper()
	return &Config{
		Source:   t.TempDir(),
		Replica:  t.TempDir(),
		Interval: DefaultInterval,
	}
}

func TestConfigValidate_OK(t *testing.T) {
	cfg := validConfig(t)
	require.NoError(t, cfg.Validate())

	assert.True(t, filepath.IsAbs(cfg.Source))
	assert.True(t, filepath.IsAbs(cfg.Replica))
	assert.Equal(t, DefaultLogFile, cfg.LogFile)
}

func TestConfigValidate_MissingPaths(t *testing.T) {
	cfg := validConfig(t)
	cfg.Source = ""
	assert.Error(t, cfg.Validate())

	cfg = validConfig(t)
	cfg.Replica = ""
	assert.Error(t, cfg.Validate())
}

func TestConfigValidate_SourceMustExist(t *testing.T) {
	cfg := validConfig(t)
	cfg.Source = filepath.Join(cfg.Source, "does-not-exist")

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "source root does not exist")
}

func TestConfigValidate_MissingReplicaIsFine(t *testing.T) {
	cfg := validConfig(t)
	cfg.Replica = filepath.Join(cfg.Replica, "not-yet-created")
	assert.NoError(t, cfg.Validate())
}

func TestConfigValidate_IntervalMustBePositive(t *testing.T) {
	cfg := validConfig(t)
	cfg.Interval = 0
	assert.Error(t, cfg.Validate())

	cfg = validConfig(t)
	cfg.Interval = -5 * time.Second
	assert.Error(t, cfg.Validate())
}

func TestConfigValidate_RejectsNestedTrees(t *testing.T) {
	cfg := validConfig(t)
	cfg.Replica = filepath.Join(cfg.Source, "replica")
	assert.Error(t, cfg.Validate())

	cfg = validConfig(t)
	cfg.Source = filepath.Join(cfg.Replica, "source")
	require.NoError(t, os.MkdirAll(cfg.Source, 0o755))
	assert.Error(t, cfg.Validate())

	cfg = validConfig(t)
	cfg.Replica = cfg.Source
	assert.Error(t, cfg.Validate())
}
