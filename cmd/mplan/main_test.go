package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/seaplan/mplan/internal/maneuver"
	"github.com/seaplan/mplan/internal/wire"
	"github.com/seaplan/mplan/pkg/core"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupCLI(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	viper.Set("logsDir", filepath.Join(dir, "logs"))
	t.Cleanup(viper.Reset)
	return dir
}

func writeGoto(t *testing.T, dir string) string {
	t.Helper()
	g := maneuver.NewGoto(nil)
	g.SetLocation(core.NewLocation(41, -8).WithZ(10, core.ZDepth))
	data, err := maneuver.ExportDocument(g)
	require.NoError(t, err)
	path := filepath.Join(dir, "goto.xml")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestRun_Commands(t *testing.T) {
	assert.Error(t, run(nil))
	assert.ErrorContains(t, run([]string{"launch"}), "unknown command")
	assert.NoError(t, run([]string{"version"}))
}

func TestConvert_RoundTrip(t *testing.T) {
	dir := setupCLI(t)
	doc := writeGoto(t, dir)
	frames := filepath.Join(dir, "plan.frames")
	back := filepath.Join(dir, "plan.xml")

	require.NoError(t, run([]string{"convert", "--config", dir, "-o", frames, doc, doc}))

	f, err := os.Open(frames)
	require.NoError(t, err)
	got, err := readFrames(f, false)
	f.Close()
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Goto", got[0].Abbrev)

	require.NoError(t, run([]string{"convert", "--config", dir, "--to-document", "-o", back, frames}))
	data, err := os.ReadFile(back)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<Goto")
}

func TestConvert_Batch(t *testing.T) {
	dir := setupCLI(t)
	doc := writeGoto(t, dir)
	out := filepath.Join(dir, "plan.zst")

	require.NoError(t, run([]string{"convert", "--config", dir, "--batch", "--vehicle", "auv-1", "--plan", "harbour", "-o", out, doc}))

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	b, err := wire.ReadBatch(f)
	require.NoError(t, err)
	assert.Equal(t, "auv-1", b.Vehicle)
	assert.Equal(t, "harbour", b.Plan)
	assert.Len(t, b.Frames, 1)
}

func TestTemplate_Local(t *testing.T) {
	dir := setupCLI(t)
	doc := writeGoto(t, dir)
	viper.Set("storage.type", "sqlite")
	viper.Set("storage.sqlite.path", filepath.Join(dir, "mplan.db"))

	require.NoError(t, run([]string{"template", "--config", dir, "--tag", "survey", "put", "harbour", doc}))
	require.NoError(t, run([]string{"template", "--config", dir, "list"}))
	require.NoError(t, run([]string{"template", "--config", dir, "get", "harbour"}))
	require.NoError(t, run([]string{"template", "--config", dir, "delete", "harbour"}))
	assert.Error(t, run([]string{"template", "--config", dir, "get", "harbour"}))
	assert.Error(t, run([]string{"template", "--config", dir, "rename", "harbour"}))
}

func TestPattern_Formats(t *testing.T) {
	dir := setupCLI(t)
	for _, format := range []string{"json", "wkt", "mercator"} {
		assert.NoError(t, run([]string{"pattern", "--config", dir, "--format", format, "RowsPattern"}), format)
	}
	assert.Error(t, run([]string{"pattern", "--config", dir, "Goto"}))
	assert.Error(t, run([]string{"pattern", "--config", dir, "--format", "svg", "RowsPattern"}))
}
