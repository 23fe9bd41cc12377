package report

import (
	"time"

	"github.com/amlscreen/amlreport/pkg/defaults"
	"github.com/amlscreen/amlreport/pkg/document"
	"github.com/amlscreen/amlreport/pkg/model"
	"github.com/amlscreen/amlreport/pkg/sections"
	"github.com/amlscreen/amlreport/pkg/theme"
)

// Assembler orders section output into one document. It holds no per-build
// state and is safe for concurrent use.
type Assembler struct {
	th       *theme.Theme
	sections *sections.Builder
	now      func() time.Time
}

// Option configures an Assembler.
type Option func(*Assembler)

// WithClock overrides the build-time source.
func WithClock(now func() time.Time) Option {
	return func(a *Assembler) { a.now = now }
}

// New returns an Assembler. A nil theme selects theme.Default().
func New(th *theme.Theme, opts ...Option) *Assembler {
	if th == nil {
		th = theme.Default()
	}
	a := &Assembler{th: th, sections: sections.New(th), now: time.Now}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// part is the output of one section builder. KYC and the audit trail
// open on a new page.
type part struct {
	id      string
	newPage bool
	blocks  []document.Block
}

// plan runs every builder for the sections that have data, in report order.
func (a *Assembler) plan(r model.Report, c model.Compliance) []part {
	b := a.sections
	parts := []part{
		{id: SectionHeader, blocks: b.Header(r)},
		{id: SectionRiskSummary, blocks: b.RiskSummary(r.Decision)},
		{id: SectionFindings, blocks: b.Findings(r.Findings)},
	}
	if d, ok := defiSource(r, c); ok {
		parts = append(parts, part{id: SectionDefi, blocks: b.Defi(d)})
	}

	if v, ok := c.KYC.Get(); ok {
		parts = append(parts, part{id: SectionKYC, newPage: true, blocks: b.KYC(v)})
	}
	if v, ok := c.AMLKYT.Get(); ok {
		parts = append(parts, part{id: SectionAMLKYT, blocks: b.AMLKYT(v)})
	}
	if v, ok := c.Regulatory.Get(); ok {
		parts = append(parts, part{id: SectionRegulatory, blocks: b.Regulatory(v)})
	}
	if v, ok := c.OnChain.Get(); ok {
		parts = append(parts, part{id: SectionOnChain, blocks: b.OnChain(v)})
	}
	if v, ok := c.Reserves.Get(); ok {
		parts = append(parts, part{id: SectionReserves, blocks: b.Reserves(v)})
	}

	if v, ok := c.Audit.Get(); ok {
		parts = append(parts, part{id: SectionAudit, newPage: true, blocks: b.Audit(v)})
	}

	return append(parts, part{id: SectionDisclaimer, blocks: b.Disclaimer(r.Disclaimer)})
}

// defiSource prefers the report's own analysis over the monitoring
// record's exposure summary.
func defiSource(r model.Report, c model.Compliance) (model.DefiAnalysis, bool) {
	if d, ok := r.Defi.Get(); ok {
		return d, true
	}
	if mon, ok := c.OnChain.Get(); ok {
		return mon.DefiExposure.Get()
	}
	return model.DefiAnalysis{}, false
}

func (a *Assembler) assemble(r model.Report, c model.Compliance) ([]document.Block, []string) {
	var blocks []document.Block
	var ids []string
	for _, p := range a.plan(r, c) {
		if len(p.blocks) == 0 {
			continue
		}
		if p.newPage {
			blocks = append(blocks, document.PageBreak{})
		}
		ids = append(ids, p.id)
		blocks = append(blocks, p.blocks...)
	}
	return blocks, ids
}

// Assemble returns the ordered block sequence for a report and its
// compliance bundle.
func (a *Assembler) Assemble(r model.Report, c model.Compliance) []document.Block {
	blocks, _ := a.assemble(r, c)
	return blocks
}

// Build assembles a decoded payload into a document. The build time is
// captured once and shared by every page's decoration.
func (a *Assembler) Build(p *model.Payload) (document.Document, Stats) {
	generated := a.now().UTC()
	blocks, ids := a.assemble(p.Report, p.Compliance)

	doc := document.Document{
		Blocks: blocks,
		Decoration: document.Decoration{
			ProductLabel: a.th.Text().ProductLabel,
			ReportID:     orNA(p.Report.ID),
			GeneratedAt:  generated,
			Layout:       a.th.Text().DateLayout,
		},
	}
	return doc, a.stats(p, doc, ids)
}

// BuildJSON decodes data and builds it. Input-shape failures abort the
// build before any block is produced.
func (a *Assembler) BuildJSON(data []byte) (*model.Payload, document.Document, Stats, error) {
	p, err := model.Decode(data)
	if err != nil {
		return nil, document.Document{}, Stats{}, err
	}
	doc, st := a.Build(p)
	return p, doc, st, nil
}

func orNA(s string) string {
	if s == "" {
		return defaults.NotAvailable
	}
	return s
}
