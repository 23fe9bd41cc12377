package pipeline

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	pdfapi "github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/amlscreen/amlreport/pkg/archive"
	"github.com/amlscreen/amlreport/pkg/jsonutil"
	"github.com/amlscreen/amlreport/pkg/model"
	"github.com/amlscreen/amlreport/pkg/model/modeltest"
	"github.com/amlscreen/amlreport/pkg/report"
	"github.com/amlscreen/amlreport/pkg/telemetry"
)

const bareReport = `{
	"id": "AML-BARE",
	"timestamp": "2025-02-15T10:00:00Z",
	"input": {"chain": "ethereum", "address": "0xabc"},
	"decision": {"level": "HIGH", "score": 80, "recommendation": "REVIEW"},
	"findings": [{"source": "OFAC/SDN", "severity": "HIGH", "detail": "Indirect exposure."}]
}`

func fixedClock() time.Time { return time.Date(2025, 2, 15, 10, 0, 5, 0, time.UTC) }

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{
		"pdf": FormatPDF, "md": FormatMarkdown, "markdown": FormatMarkdown,
		"json": FormatBlocks, "blocks": FormatBlocks,
	} {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseFormat("docx")
	assert.True(t, errors.Is(err, ErrUnknownFormat))
}

func TestRunPDF(t *testing.T) {
	p := New(Options{Clock: fixedClock})
	res, err := p.Run(context.Background(), Request{Input: []byte(modeltest.HighRiskJSON)})
	require.NoError(t, err)

	require.NoError(t, pdfapi.Validate(bytes.NewReader(res.Output), nil))
	assert.True(t, res.Stats.Included(report.SectionAudit))
	assert.Equal(t, "aml-report-AML-TEST-HIGH-RISK.pdf", res.Filename(FormatPDF))
	assert.Nil(t, res.Record)
}

func TestRunMarkdownDerive(t *testing.T) {
	p := New(Options{Clock: fixedClock})

	plain, err := p.Run(context.Background(), Request{Input: []byte(bareReport), Format: FormatMarkdown})
	require.NoError(t, err)
	assert.False(t, plain.Stats.Included(report.SectionKYC))
	assert.Equal(t, 0, plain.Stats.PageBreaks)

	derived, err := p.Run(context.Background(), Request{Input: []byte(bareReport), Format: FormatMarkdown, Derive: true})
	require.NoError(t, err)
	for _, id := range []string{
		report.SectionKYC, report.SectionAMLKYT, report.SectionRegulatory,
		report.SectionOnChain, report.SectionReserves, report.SectionAudit,
	} {
		assert.True(t, derived.Stats.Included(id), id)
	}
	assert.Equal(t, 2, derived.Stats.PageBreaks)
	assert.Contains(t, string(derived.Output), "## KYC Assessment")
}

func TestRunBlocks(t *testing.T) {
	p := New(Options{Clock: fixedClock})
	res, err := p.Run(context.Background(), Request{Input: []byte(modeltest.HighRiskJSON), Format: FormatBlocks})
	require.NoError(t, err)

	var out struct {
		Decoration struct {
			ReportID string `json:"reportId"`
		} `json:"decoration"`
		Blocks []jsonutil.Object `json:"blocks"`
	}
	require.NoError(t, jsonutil.Unmarshal(res.Output, &out))
	assert.Equal(t, res.Stats.Blocks, len(out.Blocks))
	require.GreaterOrEqual(t, len(out.Blocks), 2)
	assert.Equal(t, "spacer", out.Blocks[0].String("kind", ""))
	assert.Equal(t, "heading", out.Blocks[1].String("kind", ""))
	assert.Equal(t, "AML Screening Report", out.Blocks[1].String("text", ""))
	assert.Equal(t, modeltest.ReportID, out.Decoration.ReportID)
}

func TestRunInputError(t *testing.T) {
	m := telemetry.NewMetrics()
	p := New(Options{Metrics: m})

	_, err := p.Run(context.Background(), Request{Input: []byte(`{"input": {"chain": "eth"}}`)})
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrInputShape))
	assert.Equal(t, telemetry.OutcomeInputError, outcome(err))
}

func TestRunArchives(t *testing.T) {
	store, err := archive.Open(filepath.Join(t.TempDir(), "a.db"))
	require.NoError(t, err)
	defer store.Close()

	p := New(Options{Archive: store, Clock: fixedClock})
	ctx := context.Background()

	res, err := p.Run(ctx, Request{Input: []byte(modeltest.HighRiskJSON), Archive: true})
	require.NoError(t, err)
	require.NotNil(t, res.Record)
	assert.Equal(t, archive.Hash(res.Output), res.Record.PDFHash)

	md, err := p.Run(ctx, Request{Input: []byte(modeltest.HighRiskJSON), Format: FormatMarkdown, Archive: true})
	require.NoError(t, err)
	assert.Nil(t, md.Record, "only PDF output is archived")

	list, err := store.List(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestRunTraces(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	p := New(Options{Tracer: telemetry.FromProvider(tp)})

	_, err := p.Run(context.Background(), Request{Input: []byte(modeltest.HighRiskJSON), Format: FormatMarkdown})
	require.NoError(t, err)

	var names []string
	for _, s := range sr.Ended() {
		names = append(names, s.Name())
	}
	assert.Equal(t, []string{"report.decode", "report.render", "report.run"}, names)
}

func TestAssess(t *testing.T) {
	p := New(Options{})
	payload, c, err := p.Assess(context.Background(), []byte(bareReport))
	require.NoError(t, err)
	assert.Equal(t, "AML-BARE", payload.Report.ID)
	assert.True(t, c.KYC.Present())
	assert.True(t, c.Audit.Present())
}
