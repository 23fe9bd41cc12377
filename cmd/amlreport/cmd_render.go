package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	pdfapi "github.com/pdfcpu/pdfcpu/pkg/api"
	"golang.org/x/sync/errgroup"

	"github.com/amlscreen/amlreport/pkg/archive"
	"github.com/amlscreen/amlreport/pkg/defaults"
	"github.com/amlscreen/amlreport/pkg/pipeline"
	"github.com/amlscreen/amlreport/pkg/ui"
)

func (e env) cmdRender(args []string) error {
	fs := e.flagSet("render", "[flags] input.json...")
	var cf commonFlags
	cf.register(fs)
	format := fs.String("format", "pdf", "Output format: pdf or md")
	output := fs.String("o", "", "Output file for a single input (\"-\" for stdout)")
	outDir := fs.String("out-dir", ".", "Output directory when -o is not set")
	derive := fs.Bool("derive", false, "Derive absent compliance records from the report")
	archivePath := fs.String("archive", "", "Archive rendered PDFs in this SQLite database")
	validate := fs.Bool("validate", false, "Validate rendered PDFs with pdfcpu")
	concurrency := fs.Int("j", defaults.ConcurrencyRender, "Parallel renders")
	quiet := fs.Bool("q", false, "Suppress the per-report summary")
	if err := parse(fs, args); err != nil {
		return err
	}

	inputs := fs.Args()
	if len(inputs) == 0 {
		return usageErrorf("render: at least one input is required")
	}
	if *output != "" && len(inputs) > 1 {
		return usageErrorf("render: -o accepts a single input; use -out-dir for several")
	}
	f, err := pipeline.ParseFormat(*format)
	if err != nil || f == pipeline.FormatBlocks {
		return usageErrorf("render: invalid -format %q (want pdf or md)", *format)
	}
	if *concurrency < 1 {
		*concurrency = 1
	}

	logger, err := cf.setup(e.stderr)
	if err != nil {
		return err
	}
	th, err := cf.theme()
	if err != nil {
		return err
	}

	var store *archive.Store
	if *archivePath != "" {
		if store, err = archive.Open(*archivePath); err != nil {
			return err
		}
		defer store.Close()
	}

	p := pipeline.New(pipeline.Options{Theme: th, Archive: store, Logger: logger})

	var mu sync.Mutex
	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(*concurrency)
	for _, in := range inputs {
		g.Go(func() error {
			data, err := e.readInput(in)
			if err != nil {
				return err
			}
			res, err := p.Run(ctx, pipeline.Request{Input: data, Format: f, Derive: *derive, Archive: store != nil})
			if err != nil {
				return fmt.Errorf("%s: %w", in, err)
			}
			if *validate && f == pipeline.FormatPDF {
				if err := pdfapi.Validate(bytes.NewReader(res.Output), nil); err != nil {
					return fmt.Errorf("%s: validate pdf: %w", in, err)
				}
			}

			dest := *output
			if dest == "" {
				dest = filepath.Join(*outDir, res.Filename(f))
			}

			mu.Lock()
			defer mu.Unlock()
			if err := e.writeOutput(dest, res.Output); err != nil {
				return err
			}
			if !*quiet {
				s := ui.Summary{
					ReportID:       res.Document.Decoration.ReportID,
					Level:          res.Payload.Report.Decision.Level,
					Score:          res.Payload.Report.Decision.Score,
					Recommendation: res.Payload.Report.Decision.Recommendation,
					Sections:       len(res.Stats.Sections),
					Output:         dest,
				}
				if res.Record != nil {
					s.Record = res.Record.ID
				}
				ui.PrintSummary(e.stderr, th, s)
			}
			return nil
		})
	}
	return g.Wait()
}

// writeOutput writes data to path, or stdout for "-".
func (e env) writeOutput(path string, data []byte) error {
	if path == "-" {
		_, err := e.stdout.Write(data)
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
