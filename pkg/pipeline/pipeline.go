// Package pipeline runs one screening payload through decode, optional
// compliance derivation, assembly, rendering and archiving. It is shared by
// the CLI and the HTTP server.
package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/amlscreen/amlreport/pkg/archive"
	"github.com/amlscreen/amlreport/pkg/compliance"
	"github.com/amlscreen/amlreport/pkg/defaults"
	"github.com/amlscreen/amlreport/pkg/document"
	"github.com/amlscreen/amlreport/pkg/jsonutil"
	"github.com/amlscreen/amlreport/pkg/model"
	"github.com/amlscreen/amlreport/pkg/render/markdown"
	"github.com/amlscreen/amlreport/pkg/render/pdf"
	"github.com/amlscreen/amlreport/pkg/report"
	"github.com/amlscreen/amlreport/pkg/telemetry"
	"github.com/amlscreen/amlreport/pkg/theme"
)

// Format selects the output representation.
type Format string

// Output formats.
const (
	FormatPDF      Format = "pdf"
	FormatMarkdown Format = "md"
	FormatBlocks   Format = "json"
)

// ErrUnknownFormat is returned for a format outside the list above.
var ErrUnknownFormat = errors.New("unknown output format")

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatPDF, FormatMarkdown, FormatBlocks:
		return f, nil
	case "markdown":
		return FormatMarkdown, nil
	case "blocks":
		return FormatBlocks, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	switch f {
	case FormatPDF:
		return defaults.ContentTypePDF
	case FormatMarkdown:
		return defaults.ContentTypeMD
	}
	return defaults.ContentTypeJSON
}

// Ext returns the file extension of the format.
func (f Format) Ext() string { return string(f) }

// Options configures a Pipeline. Every field is optional.
type Options struct {
	Theme   *theme.Theme
	PDF     pdf.Config
	Metrics *telemetry.Metrics
	Tracer  *telemetry.Tracer
	Archive *archive.Store
	Logger  *slog.Logger
	Clock   func() time.Time
}

// Pipeline is safe for concurrent use.
type Pipeline struct {
	assembler *report.Assembler
	pdf       *pdf.Renderer
	metrics   *telemetry.Metrics
	tracer    *telemetry.Tracer
	archive   *archive.Store
	logger    *slog.Logger
}

// New returns a Pipeline.
func New(opts Options) *Pipeline {
	th := opts.Theme
	if th == nil {
		th = theme.Default()
	}
	var ropts []report.Option
	if opts.Clock != nil {
		ropts = append(ropts, report.WithClock(opts.Clock))
	}
	return &Pipeline{
		assembler: report.New(th, ropts...),
		pdf:       pdf.New(th, opts.PDF),
		metrics:   opts.Metrics,
		tracer:    opts.Tracer,
		archive:   opts.Archive,
		logger:    orDefault(opts.Logger),
	}
}

func orDefault(l *slog.Logger) *slog.Logger {
	if l != nil {
		return l
	}
	return slog.Default()
}

// Request is one build.
type Request struct {
	// Input is the JSON payload
	Input []byte

	Format Format

	// Derive fills absent compliance sub-records from the report
	Derive bool

	// Archive stores a PDF result when the pipeline has an archive
	Archive bool
}

// Result is the output of Run.
type Result struct {
	Payload  *model.Payload
	Document document.Document
	Stats    report.Stats
	Output   []byte
	Record   *archive.Record
}

// Filename is the suggested attachment name of the output.
func (r *Result) Filename(f Format) string {
	return defaults.AttachmentName(r.Document.Decoration.ReportID, f.Ext())
}

// Run builds and renders one payload.
func (p *Pipeline) Run(ctx context.Context, req Request) (res *Result, err error) {
	if req.Format == "" {
		req.Format = FormatPDF
	}
	ctx, span := p.tracer.Start(ctx, "report.run",
		attribute.String("report.format", string(req.Format)),
		attribute.Bool("report.derive", req.Derive),
	)
	defer func() {
		telemetry.End(span, err)
		p.metrics.ObserveBuild(string(req.Format), outcome(err))
	}()

	payload, err := p.decode(ctx, req.Input)
	if err != nil {
		return nil, err
	}
	if req.Derive {
		payload.Compliance = compliance.Fill(payload)
	}
	span.SetAttributes(
		attribute.String("report.id", payload.Report.ID),
		attribute.String("report.level", payload.Report.Decision.Level),
	)

	start := time.Now()
	doc, st := p.assembler.Build(payload)
	p.metrics.ObserveStage("build", time.Since(start))
	p.metrics.ObserveStats(payload.Report.Decision.Level, st)
	if st.Unmapped > 0 || st.MalformedTimestamps > 0 {
		p.logger.Warn("report built with fallbacks",
			slog.String("report_id", doc.Decoration.ReportID),
			slog.Int("unmapped", st.Unmapped),
			slog.Int("malformed_timestamps", st.MalformedTimestamps),
		)
	}

	out, err := p.render(ctx, req.Format, doc)
	if err != nil {
		return nil, err
	}

	res = &Result{Payload: payload, Document: doc, Stats: st, Output: out}
	if req.Archive && req.Format == FormatPDF && p.archive != nil {
		rec, err := p.store(ctx, payload, req.Input, out)
		if err != nil {
			return nil, err
		}
		res.Record = rec
	}

	p.logger.Debug("report built",
		slog.String("report_id", doc.Decoration.ReportID),
		slog.String("format", string(req.Format)),
		slog.Int("blocks", st.Blocks),
		slog.Int("bytes", len(out)),
	)
	return res, nil
}

// Assess decodes input and returns the derived compliance bundle.
func (p *Pipeline) Assess(ctx context.Context, input []byte) (*model.Payload, model.Compliance, error) {
	ctx, span := p.tracer.Start(ctx, "report.assess")
	payload, err := p.decode(ctx, input)
	if err != nil {
		telemetry.End(span, err)
		return nil, model.Compliance{}, err
	}
	c := compliance.Assess(payload)
	telemetry.End(span, nil)
	return payload, c, nil
}

func (p *Pipeline) decode(ctx context.Context, input []byte) (*model.Payload, error) {
	_, span := p.tracer.Start(ctx, "report.decode", attribute.Int("input.bytes", len(input)))
	start := time.Now()
	payload, err := model.Decode(input)
	p.metrics.ObserveStage("decode", time.Since(start))
	telemetry.End(span, err)
	return payload, err
}

func (p *Pipeline) render(ctx context.Context, f Format, doc document.Document) ([]byte, error) {
	_, span := p.tracer.Start(ctx, "report.render", attribute.String("report.format", string(f)))
	start := time.Now()

	var buf bytes.Buffer
	var err error
	switch f {
	case FormatPDF:
		err = p.pdf.Render(&buf, doc)
	case FormatMarkdown:
		err = markdown.Render(&buf, doc)
	case FormatBlocks:
		err = jsonutil.MarshalWrite(&buf, doc, "  ")
	default:
		err = fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
	if err != nil {
		err = fmt.Errorf("render %s: %w", f, err)
	}

	p.metrics.ObserveStage("render", time.Since(start))
	telemetry.End(span, err)
	return buf.Bytes(), err
}

func (p *Pipeline) store(ctx context.Context, payload *model.Payload, input, out []byte) (*archive.Record, error) {
	ctx, span := p.tracer.Start(ctx, "report.archive")
	start := time.Now()
	rec, err := p.archive.Save(ctx, payload.Report, input, out)
	p.metrics.ObserveStage("archive", time.Since(start))
	telemetry.End(span, err)
	if err != nil {
		return nil, fmt.Errorf("archive report: %w", err)
	}
	p.metrics.ObserveArchived()
	p.logger.Info("report archived",
		slog.String("record_id", rec.ID),
		slog.String("report_id", rec.ReportID),
		slog.String("pdf_hash", rec.PDFHash),
	)
	return rec, nil
}

func outcome(err error) string {
	switch {
	case err == nil:
		return telemetry.OutcomeOK
	case errors.Is(err, model.ErrInputShape):
		return telemetry.OutcomeInputError
	}
	return telemetry.OutcomeError
}
