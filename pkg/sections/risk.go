package sections

import (
	"github.com/amlscreen/amlreport/pkg/document"
	"github.com/amlscreen/amlreport/pkg/model"
	"github.com/amlscreen/amlreport/pkg/semantic"
)

// Header builds the title block: network, address, date and report ID.
func (b *Builder) Header(r model.Report) []document.Block {
	ts, _ := b.FormatTimestamp(r.Timestamp)
	return []document.Block{
		document.Spacer{Size: 8},
		document.Heading{Level: document.LevelTitle, Text: b.th.Text().ReportTitle},
		document.Paragraph{Style: document.StyleSubtitle, Text: document.Text(
			document.Plain("Network: "),
			document.Bold(upper(orNA(r.Input.Chain))),
			document.Plain("  |  Address: "),
			document.Mono(orNA(r.Input.Address)),
			document.Plain("\nDate: "+ts+"  |  ID: "),
			document.Bold(orNA(r.ID)),
		)},
	}
}

// RiskSummary builds the verdict badge followed by the summary text.
func (b *Builder) RiskSummary(d model.Decision) []document.Block {
	blocks := []document.Block{
		document.Badge{
			Level:          semantic.Risk.Map(d.Level),
			Score:          number(d.Score) + "/100",
			Recommendation: semantic.Recommendation.Map(d.Recommendation),
		},
	}
	if d.Summary != "" {
		blocks = append(blocks, document.Spacer{Size: 3}, body(document.Plain(d.Summary)))
	}
	return blocks
}

// Findings builds the evidence table, or a single positive line when the
// list is empty. Findings keep input order.
func (b *Builder) Findings(fs []model.Finding) []document.Block {
	blocks := []document.Block{heading(TitleFindings)}
	if len(fs) == 0 {
		return append(blocks, body(document.Colored(NoFindings, semantic.RoleLow)))
	}

	rows := make([][]document.RichText, 0, len(fs))
	for _, f := range fs {
		rows = append(rows, []document.RichText{
			cell(document.Token(semantic.Risk.Map(f.Severity))),
			cell(document.Plain(f.Source)),
			cell(document.Plain(f.Detail)),
		})
	}
	return append(blocks, evidenceTable([]document.Column{
		{Title: "Severity", Width: 25},
		{Title: "Source", Width: 35},
		{Title: "Detail", Width: 110},
	}, rows))
}

// Disclaimer builds the closing section: the supplied text followed by the
// fixed compliance caveat.
func (b *Builder) Disclaimer(text string) []document.Block {
	return []document.Block{
		document.Spacer{Size: 8},
		small(
			document.Bold("DISCLAIMER: "),
			document.Plain(text),
			document.Plain("\n\n"+b.th.Text().Caveat),
		),
	}
}
