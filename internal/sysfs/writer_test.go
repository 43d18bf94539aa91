package sysfs_test

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"codeberg.org/mutker/raplsim/internal/rapl"
	"codeberg.org/mutker/raplsim/internal/sysfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCeiling = int64(1) << 28

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(b)
}

// requireSysfsFormat checks the file contract: single line, exactly one
// trailing newline, numeric content parses as a non-negative integer.
func requireSysfsFormat(t *testing.T, content string, numeric bool) {
	t.Helper()
	require.True(t, strings.HasSuffix(content, "\n"), "missing trailing newline")
	require.False(t, strings.HasSuffix(content, "\n\n"), "more than one trailing newline")
	require.NotContains(t, strings.TrimSuffix(content, "\n"), "\n", "more than one line")

	if numeric {
		v, err := strconv.ParseInt(strings.TrimSpace(content), 10, 64)
		require.NoError(t, err)
		require.GreaterOrEqual(t, v, int64(0))
	}
}

func TestEnsureDomainCreatesStructure(t *testing.T) {
	base := t.TempDir()
	w := sysfs.NewWriter(base)
	d := &rapl.Domain{Index: 0, NominalPower: 15.0}

	require.NoError(t, w.EnsureDomain(d, testCeiling))

	dir := filepath.Join(base, "intel-rapl:0")
	name := readFile(t, filepath.Join(dir, "name"))
	ceiling := readFile(t, filepath.Join(dir, "max_energy_range_uj"))

	assert.Equal(t, "Domain 0\n", name)
	assert.Equal(t, "268435456\n", ceiling)
	requireSysfsFormat(t, name, false)
	requireSysfsFormat(t, ceiling, true)
}

func TestEnsureDomainIdempotent(t *testing.T) {
	base := t.TempDir()
	w := sysfs.NewWriter(base)
	d := &rapl.Domain{Index: 1}

	require.NoError(t, w.EnsureDomain(d, testCeiling))

	dir := filepath.Join(base, "intel-rapl:1")
	nameBefore := readFile(t, filepath.Join(dir, "name"))
	ceilingBefore := readFile(t, filepath.Join(dir, "max_energy_range_uj"))

	require.NoError(t, w.EnsureDomain(d, testCeiling))

	assert.Equal(t, nameBefore, readFile(t, filepath.Join(dir, "name")))
	assert.Equal(t, ceilingBefore, readFile(t, filepath.Join(dir, "max_energy_range_uj")))
}

func TestEnsureDomainSurvivesExistingTree(t *testing.T) {
	// A fresh writer over a tree left by a previous run recreates the
	// static files with identical content instead of failing.
	base := t.TempDir()
	d := &rapl.Domain{Index: 0}

	require.NoError(t, sysfs.NewWriter(base).EnsureDomain(d, testCeiling))
	require.NoError(t, sysfs.NewWriter(base).EnsureDomain(d, testCeiling))

	name := readFile(t, filepath.Join(base, "intel-rapl:0", "name"))
	assert.Equal(t, "Domain 0\n", name)
}

func TestWriteEnergyOverwrites(t *testing.T) {
	base := t.TempDir()
	w := sysfs.NewWriter(base)
	d := &rapl.Domain{Index: 0}
	require.NoError(t, w.EnsureDomain(d, testCeiling))

	path := filepath.Join(base, "intel-rapl:0", "energy_uj")

	d.Energy = 15_000_000
	require.NoError(t, w.WriteEnergy(d))
	assert.Equal(t, "15000000\n", readFile(t, path))

	d.Energy = 30_000_000
	require.NoError(t, w.WriteEnergy(d))
	content := readFile(t, path)
	assert.Equal(t, "30000000\n", content)
	requireSysfsFormat(t, content, true)
}

func TestResetClearsStaleDomains(t *testing.T) {
	base := filepath.Join(t.TempDir(), "intel-rapl")
	stale := filepath.Join(base, "intel-rapl:7")
	require.NoError(t, os.MkdirAll(stale, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(stale, "energy_uj"), []byte("123\n"), 0o644))

	w := sysfs.NewWriter(base)
	require.NoError(t, w.Reset())

	entries, err := os.ReadDir(base)
	require.NoError(t, err)
	assert.Empty(t, entries, "reset leaves an empty root")
}

func TestResetOnMissingBase(t *testing.T) {
	base := filepath.Join(t.TempDir(), "does", "not", "exist")
	w := sysfs.NewWriter(base)

	require.NoError(t, w.Reset())

	info, err := os.Stat(base)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
