package report

import (
	"slices"

	"github.com/amlscreen/amlreport/pkg/document"
	"github.com/amlscreen/amlreport/pkg/model"
	"github.com/amlscreen/amlreport/pkg/semantic"
)

// Section identifiers, in assembly order.
const (
	SectionHeader      = "header"
	SectionRiskSummary = "risk-summary"
	SectionFindings    = "findings"
	SectionDefi        = "defi"
	SectionKYC         = "kyc"
	SectionAMLKYT      = "aml-kyt"
	SectionRegulatory  = "regulatory"
	SectionOnChain     = "on-chain"
	SectionReserves    = "reserves"
	SectionAudit       = "audit"
	SectionDisclaimer  = "disclaimer"
)

// Stats describes one build.
type Stats struct {
	// Sections lists included section identifiers in order
	Sections []string `json:"sections"`

	// Blocks is the number of blocks in the document
	Blocks int `json:"blocks"`

	// PageBreaks is the number of explicit page breaks
	PageBreaks int `json:"pageBreaks"`

	// Unmapped counts codes rendered through the neutral fallback
	Unmapped int `json:"unmapped"`

	// MalformedTimestamps counts timestamps shown verbatim
	MalformedTimestamps int `json:"malformedTimestamps"`
}

func (a *Assembler) stats(p *model.Payload, doc document.Document, ids []string) Stats {
	st := Stats{
		Sections:   ids,
		Blocks:     len(doc.Blocks),
		PageBreaks: doc.Count(document.KindPageBreak),
	}

	if _, ok := a.sections.FormatTimestamp(p.Report.Timestamp); !ok {
		st.MalformedTimestamps++
	}

	count := func(f semantic.Family, raw string) {
		if !f.Map(raw).Mapped {
			st.Unmapped++
		}
	}
	count(semantic.Risk, p.Report.Decision.Level)
	count(semantic.Recommendation, p.Report.Decision.Recommendation)
	for _, f := range p.Report.Findings {
		count(semantic.Risk, f.Severity)
	}
	c := p.Compliance
	if v, ok := c.KYC.Get(); ok {
		count(semantic.KYC, v.Status)
	}
	if v, ok := c.AMLKYT.Get(); ok {
		count(semantic.AML, v.Status)
	}
	if v, ok := c.Regulatory.Get(); ok {
		count(semantic.Regulatory, v.Status)
	}
	if v, ok := c.Reserves.Get(); ok {
		count(semantic.Reserves, v.Status)
	}
	return st
}

// Included reports whether section id is part of the build.
func (s Stats) Included(id string) bool {
	return slices.Contains(s.Sections, id)
}
