package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Perdok-cat/Woodcal/internal/model"
)

func setupHome(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(dir, "state"))
	t.Setenv("NO_COLOR", "1")
	return dir
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestNewShowAndRemove(t *testing.T) {
	setupHome(t)

	out, err := run(t, "new", "--name", "Ông 5", "--note", "Nợ 50tr")
	require.NoError(t, err)
	id := strings.TrimSpace(out)
	require.NotEmpty(t, id)

	out, err = run(t, "files")
	require.NoError(t, err)
	assert.Contains(t, out, "Ông 5")
	assert.Contains(t, out, id)

	out, err = run(t, "show", id)
	require.NoError(t, err)
	assert.Contains(t, out, "Total")

	out, err = run(t, "rm", id)
	require.NoError(t, err)
	assert.Equal(t, "Deleted Ông 5\n", out)

	_, err = run(t, "show", id)
	assert.Error(t, err)
}

func TestNewRequiresName(t *testing.T) {
	setupHome(t)
	_, err := run(t, "new", "--name", "  ")
	assert.Error(t, err)
}

func TestCalcPrintsBucket(t *testing.T) {
	setupHome(t)
	out, err := run(t, "calc", "--round", "80", "--length", "10")
	require.NoError(t, err)
	assert.Contains(t, out, "H789")
	assert.Contains(t, out, "51")
}

func TestPayUsesConfigPrices(t *testing.T) {
	dir := setupHome(t)
	cfgPath := filepath.Join(dir, "config", "woodcal", "config.toml")
	require.NoError(t, os.MkdirAll(filepath.Dir(cfgPath), 0o755))
	require.NoError(t, os.WriteFile(cfgPath, []byte("[payment]\nh3 = 4\n"), 0o644))

	out, err := run(t, "new", "--name", "Ông 6")
	require.NoError(t, err)
	id := strings.TrimSpace(out)

	out, err = run(t, "pay", id)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "Ông 6\n"), out)
	assert.Contains(t, out, "Total")

	out, err = run(t, "pay", id, "--h3", "-1")
	assert.Error(t, err, out)
}

func TestExportImportRoundTrip(t *testing.T) {
	dir := setupHome(t)

	out, err := run(t, "new", "--name", "Ông 7", "--note", "Nợ 10tr")
	require.NoError(t, err)
	id := strings.TrimSpace(out)

	path := filepath.Join(dir, "backups", "ong7.yaml")
	_, err = run(t, "export", id, "-o", path)
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "name: Ông 7")

	out, err = run(t, "import", path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "Imported Ông 7 ("), out)
	assert.NotContains(t, out, id)

	out, err = run(t, "files")
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(out, "Ông 7"))
}

func TestLowerBucketMatchesFlagNames(t *testing.T) {
	cmd := newPayCmd()
	for _, b := range model.BucketsDescending {
		assert.NotNil(t, cmd.Flags().Lookup(lowerBucket(b)), "missing flag for %s", b)
	}
}
