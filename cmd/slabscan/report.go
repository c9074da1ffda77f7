package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kiranshivaraju/slabscan/internal/cache"
	"github.com/kiranshivaraju/slabscan/internal/config"
	"github.com/kiranshivaraju/slabscan/internal/i18n"
	"github.com/kiranshivaraju/slabscan/internal/narrative"
	"github.com/kiranshivaraju/slabscan/internal/report"
	"github.com/kiranshivaraju/slabscan/pkg/models"
	"github.com/spf13/cobra"
)

type reportOptions struct {
	in       string
	lang     string
	out      string
	provider string
	font     string
}

func reportCmd() *cobra.Command {
	var opts reportOptions

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Generate the AI-assisted quality report for a saved scan",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runReport(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.in, "in", "i", scanFileName, "scan file written by the scan command")
	cmd.Flags().StringVar(&opts.lang, "lang", "EN", "report language (EN or ZH)")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "output directory (defaults to the scan file's directory)")
	cmd.Flags().StringVar(&opts.provider, "provider", "", "narrative provider, overriding AI_PROVIDER")
	cmd.Flags().StringVar(&opts.font, "font", "", "TTF font for the PDF, overriding SLABSCAN_PDF_FONT")
	return cmd
}

func runReport(cmd *cobra.Command, opts reportOptions) error {
	lang := models.Language(strings.ToUpper(opts.lang))
	if !lang.Valid() {
		return fmt.Errorf("%w: unsupported language %q", models.ErrInvalidInput, opts.lang)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if opts.provider != "" {
		cfg.AI.Provider = opts.provider
	}
	font := cfg.Server.PDFFont
	if opts.font != "" {
		font = opts.font
	}

	f, err := readScanFile(opts.in)
	if err != nil {
		return err
	}

	catalog, err := i18n.Load()
	if err != nil {
		return fmt.Errorf("load string tables: %w", err)
	}
	provider, err := narrative.NewProvider(cfg.AI)
	if err != nil {
		return fmt.Errorf("create narrative provider: %w", err)
	}

	svc := narrative.NewService(provider, cache.NewMemoryCache(), catalog, cfg.AI.InferenceTimeout)
	n := svc.Analyze(cmd.Context(), narrative.Request{
		ScanID:   f.Scan.ID,
		Metrics:  f.Metrics,
		Regions:  f.Regions,
		Language: lang,
	})

	r, err := report.Assemble(f.Metrics, f.Scan.Points, f.Scan.ID, n, f.Regions, lang, time.Now())
	if err != nil {
		return fmt.Errorf("assemble report: %w", err)
	}

	out := opts.out
	if out == "" {
		out = filepath.Dir(opts.in)
	}
	if err := os.MkdirAll(out, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	if err := writeJSON(filepath.Join(out, "report.json"), r); err != nil {
		return err
	}

	var pdfOpts []report.PDFOption
	if font != "" {
		pdfOpts = append(pdfOpts, report.WithUTF8Font(font))
	}
	pdf, err := report.PDF(r, catalog, pdfOpts...)
	if err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	if err := os.WriteFile(filepath.Join(out, "report.pdf"), pdf, 0o644); err != nil {
		return fmt.Errorf("write report.pdf: %w", err)
	}

	page, err := report.Printable(r, catalog)
	if err != nil {
		return fmt.Errorf("render printable report: %w", err)
	}
	if err := os.WriteFile(filepath.Join(out, "report.html"), page, 0o644); err != nil {
		return fmt.Errorf("write report.html: %w", err)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "report %s for scan %s (%s, provider %s)\n", r.ID, r.ScanID, r.Language, r.Provider)
	if r.Fallback {
		fmt.Fprintln(w, "  narrative unavailable, fallback text used")
	}
	fmt.Fprintln(w, r.Analysis)
	for i, rec := range r.Recommendations {
		fmt.Fprintf(w, "  %d. %s\n", i+1, rec)
	}
	return nil
}
