package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default("/dev/ttyUSB0")

	assert.Equal(t, "/dev/ttyUSB0", cfg.Serial.Device)
	assert.Equal(t, 9600, cfg.Serial.Baud)
	assert.Equal(t, 5, cfg.MaxRetries)
	assert.Equal(t, 100*time.Millisecond, time.Duration(cfg.RetryInterval))
	assert.Equal(t, 10*time.Millisecond, time.Duration(cfg.RetryLoopInterval))
	assert.Equal(t, 500*time.Millisecond, time.Duration(cfg.DedupWindow))
	assert.Equal(t, 2*time.Second, time.Duration(cfg.ShutdownGrace))
}

func TestLoadOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "llap.yaml")
	yamlContent := []byte(`
serial:
  device: /dev/ttyACM1
  baud: 19200
max_retries: 3
retry_interval: 50ms
`)
	require.NoError(t, os.WriteFile(path, yamlContent, 0o644))

	cfg, err := Load(path, "/dev/ttyUSB0")
	require.NoError(t, err)

	assert.Equal(t, "/dev/ttyACM1", cfg.Serial.Device)
	assert.Equal(t, 19200, cfg.Serial.Baud)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, 50*time.Millisecond, time.Duration(cfg.RetryInterval))
	// Fields the file omits keep their Default(device) values.
	assert.Equal(t, 10*time.Millisecond, time.Duration(cfg.RetryLoopInterval))
	assert.Equal(t, 500*time.Millisecond, time.Duration(cfg.DedupWindow))
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), "/dev/ttyUSB0")
	require.Error(t, err)

	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Contains(t, loadErr.Error(), "missing.yaml")
}

func TestLoadMalformedYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("not: [valid yaml"), 0o644))

	_, err := Load(path, "/dev/ttyUSB0")
	require.Error(t, err)

	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
}
