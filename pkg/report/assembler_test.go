package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amlscreen/amlreport/pkg/document"
	"github.com/amlscreen/amlreport/pkg/model"
	"github.com/amlscreen/amlreport/pkg/model/modeltest"
	"github.com/amlscreen/amlreport/pkg/sections"
	"github.com/amlscreen/amlreport/pkg/semantic"
)

var fixedClock = WithClock(func() time.Time {
	return time.Date(2025, 2, 15, 10, 0, 5, 0, time.UTC)
})

func sectionHeadings(blocks []document.Block) []string {
	var out []string
	for _, b := range blocks {
		if h, ok := b.(document.Heading); ok && h.Level == document.LevelSection {
			out = append(out, h.Text)
		}
	}
	return out
}

// breakBefore returns the heading that follows each page break.
func breakBefore(blocks []document.Block) []string {
	var out []string
	for i, b := range blocks {
		if _, ok := b.(document.PageBreak); !ok {
			continue
		}
		for _, next := range blocks[i+1:] {
			if h, ok := next.(document.Heading); ok {
				out = append(out, h.Text)
				break
			}
		}
	}
	return out
}

func TestAssembleFullOrder(t *testing.T) {
	p := modeltest.HighRisk(t)
	doc, st := New(nil, fixedClock).Build(p)

	assert.Equal(t, []string{
		sections.TitleFindings,
		sections.TitleDefi,
		sections.TitleKYC,
		sections.TitleAMLKYT,
		sections.TitleRegulatory,
		sections.TitleOnChain,
		sections.TitleReserves,
		sections.TitleAudit,
	}, sectionHeadings(doc.Blocks))

	assert.Equal(t, []string{sections.TitleKYC, sections.TitleAudit}, breakBefore(doc.Blocks))
	assert.Equal(t, 2, st.PageBreaks)
	assert.Equal(t, []string{
		SectionHeader, SectionRiskSummary, SectionFindings, SectionDefi,
		SectionKYC, SectionAMLKYT, SectionRegulatory, SectionOnChain, SectionReserves,
		SectionAudit, SectionDisclaimer,
	}, st.Sections)
	assert.Zero(t, st.Unmapped)
	assert.Zero(t, st.MalformedTimestamps)
	assert.Equal(t, len(doc.Blocks), st.Blocks)
}

func TestAssembleAlwaysHasHeaderRiskAndDisclaimer(t *testing.T) {
	r := modeltest.Report("LOW", 3, "APPROVE")
	blocks := New(nil).Assemble(r, model.Compliance{})

	require.NotEmpty(t, blocks)
	assert.Equal(t, document.Heading{Level: document.LevelTitle, Text: "AML Screening Report"}, blocks[1])

	var badges int
	for _, b := range blocks {
		if _, ok := b.(document.Badge); ok {
			badges++
		}
	}
	assert.Equal(t, 1, badges)

	last := blocks[len(blocks)-1].(document.Paragraph)
	assert.Contains(t, last.Text.String(), "DISCLAIMER:")

	for _, b := range blocks {
		_, isBreak := b.(document.PageBreak)
		assert.False(t, isBreak, "no page break without compliance or audit content")
	}
}

func TestScenarioHighBlockWithCriticalOFAC(t *testing.T) {
	r := modeltest.Report("HIGH", 85, "BLOCK", model.Finding{
		Source: "OFAC/SDN", Severity: "CRITICAL", Detail: "Sanctioned router.",
	})
	blocks := New(nil).Assemble(r, model.Compliance{})

	var badge document.Badge
	var findings []document.Table
	for _, b := range blocks {
		switch v := b.(type) {
		case document.Badge:
			badge = v
		case document.Table:
			findings = append(findings, v)
		}
	}
	assert.Equal(t, "HIGH", badge.Level.Label)
	assert.Equal(t, "85/100", badge.Score)
	assert.Equal(t, "BLOCK TRANSACTION", badge.Recommendation.Label)

	require.Len(t, findings, 1)
	require.Len(t, findings[0].Rows, 1)
	sev := findings[0].Rows[0][0]
	assert.Equal(t, "CRITICAL", sev.String())
	assert.Equal(t, semantic.RoleCritical, sev[0].Role)
}

func TestScenarioEmptyFindings(t *testing.T) {
	r := modeltest.Report("LOW", 0, "APPROVE")
	r.Findings = []model.Finding{}
	blocks := New(nil).Assemble(r, model.Compliance{})

	for _, b := range blocks {
		_, isTable := b.(document.Table)
		assert.False(t, isTable)
	}
	var lines int
	for _, b := range blocks {
		if p, ok := b.(document.Paragraph); ok && p.Text.String() == sections.NoFindings {
			lines++
			assert.Equal(t, semantic.RoleLow, p.Text[0].Role)
		}
	}
	assert.Equal(t, 1, lines)
}

func TestScenarioKYCAbsent(t *testing.T) {
	full := modeltest.HighRisk(t)
	without := *full
	without.Compliance.KYC = model.None[model.KYC]()

	a := New(nil, fixedClock)
	withDoc, _ := a.Build(full)
	withoutDoc, st := a.Build(&without)

	assert.Equal(t, []string{
		sections.TitleFindings,
		sections.TitleDefi,
		sections.TitleAMLKYT,
		sections.TitleRegulatory,
		sections.TitleOnChain,
		sections.TitleReserves,
		sections.TitleAudit,
	}, sectionHeadings(withoutDoc.Blocks))
	assert.Equal(t, []string{sections.TitleAudit}, breakBefore(withoutDoc.Blocks), "only the kyc section opens the compliance page")
	assert.False(t, st.Included(SectionKYC))

	kycBlocks := New(nil).sections.KYC(mustGet(t, full.Compliance.KYC))
	assert.Equal(t, len(withDoc.Blocks)-len(kycBlocks)-1, len(withoutDoc.Blocks),
		"removing kyc removes the kyc blocks and the break that opens them")

	// Everything outside the KYC section and its break is unchanged.
	start := indexOfHeading(withDoc.Blocks, sections.TitleKYC)
	require.Positive(t, start)
	assert.Equal(t, document.PageBreak{}, withDoc.Blocks[start-1])
	rebuilt := append(append([]document.Block{}, withDoc.Blocks[:start-1]...), withDoc.Blocks[start+len(kycBlocks):]...)
	assert.Equal(t, rebuilt, withoutDoc.Blocks)
}

func TestScenarioUnknownLevel(t *testing.T) {
	r := modeltest.Report("UNKNOWN_FUTURE_LEVEL", 50, "REVIEW")
	doc, st := New(nil).Build(&model.Payload{Report: r})

	var badge document.Badge
	for _, b := range doc.Blocks {
		if v, ok := b.(document.Badge); ok {
			badge = v
		}
	}
	assert.Equal(t, "UNKNOWN_FUTURE_LEVEL", badge.Level.Label)
	assert.Equal(t, semantic.RoleNeutral, badge.Level.Role)
	assert.Equal(t, 1, st.Unmapped)
}

func TestBuildIsIdempotent(t *testing.T) {
	p := modeltest.HighRisk(t)
	a := New(nil, fixedClock)
	first, st1 := a.Build(p)
	second, st2 := a.Build(p)
	assert.Equal(t, first, second)
	assert.Equal(t, st1, st2)
}

func TestBuildCapturesTimeOnce(t *testing.T) {
	calls := 0
	a := New(nil, WithClock(func() time.Time {
		calls++
		return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(calls) * time.Hour)
	}))
	doc, _ := a.Build(modeltest.HighRisk(t))
	assert.Equal(t, 1, calls)
	assert.Equal(t, "Generated at 01/01/2025 01:00:00 UTC — 1", doc.Decoration.Footer(1))
	assert.Equal(t, "Generated at 01/01/2025 01:00:00 UTC — 3", doc.Decoration.Footer(3))
	assert.Equal(t, "AML WALLET SCREENING — COMPLIANCE REPORT — AML-TEST-HIGH-RISK", doc.Decoration.Header(2))
}

func TestDefiFallsBackToExposure(t *testing.T) {
	r := modeltest.Report("MEDIUM", 40, "REVIEW")
	c := model.Compliance{OnChain: model.Some(model.OnChainMonitoring{
		DefiExposure: model.Some(model.DefiAnalysis{Mixers: model.Count(1), OpaqueHops: 2}),
	})}
	blocks := New(nil).Assemble(r, c)
	heads := sectionHeadings(blocks)
	assert.Contains(t, heads, sections.TitleDefi)
	assert.NotContains(t, heads, sections.TitleOnChain, "monitoring without metrics or plan is omitted")
	assert.Empty(t, breakBefore(blocks), "no page break for an empty compliance part")
}

func TestReportDefiTakesPrecedence(t *testing.T) {
	r := modeltest.Report("HIGH", 80, "BLOCK")
	r.Defi = model.Some(model.DefiAnalysis{Mixers: model.Count(3)})
	c := model.Compliance{OnChain: model.Some(model.OnChainMonitoring{
		DefiExposure: model.Some(model.DefiAnalysis{Mixers: model.Count(9)}),
	})}
	blocks := New(nil).Assemble(r, c)
	for _, b := range blocks {
		if tbl, ok := b.(document.Table); ok && tbl.Columns[0].Title == "Mixers" {
			assert.Equal(t, "3", tbl.Rows[0][0].String())
			return
		}
	}
	t.Fatal("defi grid not found")
}

func TestBuildJSONFailsFast(t *testing.T) {
	p, doc, _, err := New(nil).BuildJSON([]byte(`{"report": {"input": {"chain": "eth", "address": "0x1"}}}`))
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrInputShape)
	assert.Nil(t, p)
	assert.Empty(t, doc.Blocks)
}

func TestMalformedTimestampIsCounted(t *testing.T) {
	r := modeltest.Report("LOW", 1, "APPROVE")
	r.Timestamp = "not a time"
	_, st := New(nil).Build(&model.Payload{Report: r})
	assert.Equal(t, 1, st.MalformedTimestamps)
}

func mustGet[T any](t *testing.T, o model.Option[T]) T {
	t.Helper()
	v, ok := o.Get()
	require.True(t, ok)
	return v
}

func indexOfHeading(blocks []document.Block, text string) int {
	for i, b := range blocks {
		if h, ok := b.(document.Heading); ok && h.Text == text {
			return i
		}
	}
	return -1
}
