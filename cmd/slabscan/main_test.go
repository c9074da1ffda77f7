package main

import (
	"bytes"
	"context"
	"encoding/json"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/kiranshivaraju/slabscan/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func readScan(t *testing.T, dir string) scanFile {
	t.Helper()
	f, err := readScanFile(filepath.Join(dir, scanFileName))
	require.NoError(t, err)
	return f
}

func TestScanCommand_WritesOutputs(t *testing.T) {
	dir := t.TempDir()

	out, err := execute(t, "scan", "--grid", "8", "--seed", "42", "--out", dir, "--width", "160", "--height", "120")
	require.NoError(t, err)
	assert.Contains(t, out, "flatness score")

	f := readScan(t, dir)
	assert.Equal(t, 8, f.Scan.GridSize)
	assert.Len(t, f.Scan.Points, 64)
	assert.GreaterOrEqual(t, f.Metrics.FlatnessScore, 0.0)
	assert.LessOrEqual(t, f.Metrics.FlatnessScore, 100.0)

	img, err := os.ReadFile(filepath.Join(dir, "heatmap.png"))
	require.NoError(t, err)
	cfg, err := png.DecodeConfig(bytes.NewReader(img))
	require.NoError(t, err)
	assert.Equal(t, 160, cfg.Width)
	assert.Equal(t, 120, cfg.Height)

	page, err := os.ReadFile(filepath.Join(dir, "heatmap.html"))
	require.NoError(t, err)
	assert.Contains(t, string(page), "echarts")
}

func TestScanCommand_SeedIsReproducible(t *testing.T) {
	a, b := t.TempDir(), t.TempDir()

	_, err := execute(t, "scan", "--grid", "5", "--seed", "7", "--out", a)
	require.NoError(t, err)
	_, err = execute(t, "scan", "--grid", "5", "--seed", "7", "--out", b)
	require.NoError(t, err)

	if diff := cmp.Diff(readScan(t, a).Scan.Points, readScan(t, b).Scan.Points); diff != "" {
		t.Errorf("points differ for the same seed (-a +b):\n%s", diff)
	}
}

func TestScanCommand_InvalidGrid(t *testing.T) {
	_, err := execute(t, "scan", "--grid", "0", "--out", t.TempDir())
	assert.Error(t, err)
}

func TestReportCommand(t *testing.T) {
	t.Setenv("AI_PROVIDER", "mock")
	dir := t.TempDir()
	_, err := execute(t, "scan", "--grid", "6", "--seed", "3", "--out", dir)
	require.NoError(t, err)

	out, err := execute(t, "report", "--in", filepath.Join(dir, scanFileName), "--lang", "zh")
	require.NoError(t, err)
	assert.Contains(t, out, "provider mock")

	data, err := os.ReadFile(filepath.Join(dir, "report.json"))
	require.NoError(t, err)
	var r models.ReportData
	require.NoError(t, json.Unmarshal(data, &r))
	assert.Equal(t, readScan(t, dir).Scan.ID, r.ScanID)
	assert.Equal(t, models.LanguageZH, r.Language)
	assert.Contains(t, r.Analysis, "模拟评估")
	assert.Len(t, r.Recommendations, 3)

	pdf, err := os.ReadFile(filepath.Join(dir, "report.pdf"))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF-")))

	page, err := os.ReadFile(filepath.Join(dir, "report.html"))
	require.NoError(t, err)
	assert.Contains(t, string(page), `lang="zh-CN"`)
}

func TestReportCommand_ProviderFlagAndOutDir(t *testing.T) {
	dir, out := t.TempDir(), t.TempDir()
	_, err := execute(t, "scan", "--grid", "4", "--seed", "1", "--out", dir)
	require.NoError(t, err)

	_, err = execute(t, "report", "--in", filepath.Join(dir, scanFileName), "--provider", "mock", "--out", out)
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(out, "report.json"))
	assert.FileExists(t, filepath.Join(out, "report.pdf"))
	assert.FileExists(t, filepath.Join(out, "report.html"))
}

func TestReportCommand_InvalidLanguage(t *testing.T) {
	_, err := execute(t, "report", "--in", "scan.json", "--lang", "FR", "--provider", "mock")
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestReportCommand_MissingScan(t *testing.T) {
	_, err := execute(t, "report", "--in", filepath.Join(t.TempDir(), "nope.json"), "--provider", "mock")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read scan")
}

func TestReadScanFile_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), scanFileName)
	require.NoError(t, os.WriteFile(path, []byte(`{"scan":{"points":[]}}`), 0o644))

	_, err := readScanFile(path)
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}
