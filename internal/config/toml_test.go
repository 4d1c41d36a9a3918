package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Perdok-cat/Woodcal/internal/model"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)

	sheet, err := cfg.SheetSettings()
	require.NoError(t, err)
	assert.Equal(t, DefaultSettleDelay, sheet.SettleDelay)
	assert.Equal(t, DefaultNotes, sheet.Notes)
	assert.Empty(t, cfg.Prices())
}

func TestLoadConfigValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[sheet]
settle-delay = "50ms"
notes = ["cong", "  ", "nứt"]

[payment]
h100 = 120000.0
h3 = 15000.0

[log]
level = "debug"
path = "/tmp/woodcal.log"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	sheet, err := cfg.SheetSettings()
	require.NoError(t, err)
	assert.Equal(t, 50*time.Millisecond, sheet.SettleDelay)
	assert.Equal(t, []string{"cong", "nứt"}, sheet.Notes)

	assert.Equal(t, model.Prices{model.HeadHundreds: 120000, model.Head3: 15000}, cfg.Prices())
	assert.Equal(t, model.LogConfig{Level: "debug", Path: "/tmp/woodcal.log"}, cfg.LogSettings())
}

func TestSheetSettingsRejectsBadDelay(t *testing.T) {
	bad := "soon"
	cfg := FileConfig{Sheet: SheetConfig{SettleDelay: &bad}}
	_, err := cfg.SheetSettings()
	assert.Error(t, err)
}

func TestDefaultTemplateDecodes(t *testing.T) {
	t.Setenv("XDG_STATE_HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(DefaultTemplate()), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, FileConfig{}, cfg)
}

func TestXDGPaths(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_DATA_HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", dir)
	assert.Equal(t, filepath.Join(dir, "woodcal", "woodcal.db"), DefaultDBPath())
	assert.Equal(t, filepath.Join(dir, "woodcal", "config.toml"), DefaultConfigPath())
}
