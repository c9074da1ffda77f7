package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/kiranshivaraju/slabscan/internal/analysis"
	"github.com/kiranshivaraju/slabscan/internal/heatmap"
	"github.com/kiranshivaraju/slabscan/internal/i18n"
	"github.com/kiranshivaraju/slabscan/internal/metrics"
	"github.com/kiranshivaraju/slabscan/internal/scan"
	"github.com/kiranshivaraju/slabscan/pkg/models"
	"github.com/spf13/cobra"
)

const scanFileName = "scan.json"

// scanFile is the on-disk result of a scan, read back by the report command.
type scanFile struct {
	Scan    *models.Scan             `json:"scan"`
	Metrics models.AnalysisMetrics   `json:"metrics"`
	Regions []models.DeviationRegion `json:"regions"`
}

type scanOptions struct {
	grid   int
	seed   uint64
	seeded bool
	out    string
	width  int
	height int
}

func scanCmd() *cobra.Command {
	var opts scanOptions

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Capture a simulated scan and render its heatmap",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts.seeded = cmd.Flags().Changed("seed")
			return runScan(cmd, opts)
		},
	}

	cmd.Flags().IntVar(&opts.grid, "grid", models.DefaultGridSize, "grid side length in cells")
	cmd.Flags().Uint64Var(&opts.seed, "seed", 0, "random seed for a reproducible scan")
	cmd.Flags().StringVarP(&opts.out, "out", "o", ".", "output directory")
	cmd.Flags().IntVar(&opts.width, "width", 300, "heatmap width in pixels")
	cmd.Flags().IntVar(&opts.height, "height", 300, "heatmap height in pixels")
	return cmd
}

func runScan(cmd *cobra.Command, opts scanOptions) error {
	var scanner *scan.Scanner
	if opts.seeded {
		scanner = scan.NewScanner(opts.grid, 0, scan.NewSeededRand(opts.seed))
	} else {
		scanner = scan.NewScanner(opts.grid, 0, nil)
	}

	sc, err := scanner.Capture(cmd.Context(), nil)
	if err != nil {
		return fmt.Errorf("capture: %w", err)
	}
	m, err := metrics.Aggregate(sc.Points, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}
	regions, err := analysis.FindRegions(sc.Points)
	if err != nil {
		return fmt.Errorf("regions: %w", err)
	}
	hm, err := heatmap.Layout(sc.Points, opts.width, opts.height)
	if err != nil {
		return fmt.Errorf("heatmap: %w", err)
	}

	if err := os.MkdirAll(opts.out, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	if err := writeJSON(filepath.Join(opts.out, scanFileName), scanFile{Scan: sc, Metrics: m, Regions: regions}); err != nil {
		return err
	}

	var png bytes.Buffer
	if err := heatmap.RenderPNG(&png, hm); err != nil {
		return fmt.Errorf("render heatmap: %w", err)
	}
	if err := os.WriteFile(filepath.Join(opts.out, "heatmap.png"), png.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write heatmap.png: %w", err)
	}

	var page bytes.Buffer
	title := i18n.MustLoad().T(models.LanguageEN, i18n.KeyDeviationMap)
	if err := heatmap.RenderHTML(&page, hm, title); err != nil {
		return fmt.Errorf("render heatmap page: %w", err)
	}
	if err := os.WriteFile(filepath.Join(opts.out, "heatmap.html"), page.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write heatmap.html: %w", err)
	}

	printMetrics(cmd.OutOrStdout(), sc, m, regions)
	return nil
}

func printMetrics(w io.Writer, sc *models.Scan, m models.AnalysisMetrics, regions []models.DeviationRegion) {
	fmt.Fprintf(w, "scan %s (%dx%d)\n", sc.ID, sc.GridSize, sc.GridSize)
	fmt.Fprintf(w, "  average deviation  %.2f mm\n", m.AverageDeviation)
	fmt.Fprintf(w, "  max deviation      %.2f mm\n", m.MaxDeviation)
	fmt.Fprintf(w, "  min deviation      %.2f mm\n", m.MinDeviation)
	fmt.Fprintf(w, "  flatness score     %.1f/100\n", m.FlatnessScore)
	fmt.Fprintf(w, "  out-of-tolerance regions  %d\n", len(regions))
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}

func readScanFile(path string) (scanFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return scanFile{}, fmt.Errorf("read scan: %w", err)
	}
	var f scanFile
	if err := json.Unmarshal(data, &f); err != nil {
		return scanFile{}, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	if f.Scan == nil || len(f.Scan.Points) == 0 {
		return scanFile{}, fmt.Errorf("%w: %s holds no scan points", models.ErrInvalidInput, path)
	}
	return f, nil
}
