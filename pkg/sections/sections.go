// Package sections holds one builder per report section. Builders are pure:
// they read a slice of the domain model and return blocks, applying the
// section's inclusion rule. A builder that returns no blocks means the
// section is omitted.
package sections

import (
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/amlscreen/amlreport/pkg/defaults"
	"github.com/amlscreen/amlreport/pkg/document"
	"github.com/amlscreen/amlreport/pkg/theme"
)

// Section titles.
const (
	TitleFindings   = "Risk Indicators Detected"
	TitleDefi       = "DeFi Analysis — Mixer / Bridge / DEX"
	TitleKYC        = "KYC Assessment — Mandatory Due Diligence"
	TitleAMLKYT     = "AML/KYT — Monitoring Status"
	TitleRegulatory = "Regulatory Cooperation"
	TitleOnChain    = "On-Chain Monitoring"
	TitleReserves   = "Proof of Reserves / Transparency"
	TitleAudit      = "Audit Trail"
)

// NoFindings is the positive line shown when no finding was raised.
const NoFindings = "No risk indicators detected in the consulted sources."

// Builder builds section blocks with a fixed theme.
type Builder struct {
	th *theme.Theme
}

// New returns a Builder. A nil theme selects theme.Default().
func New(th *theme.Theme) *Builder {
	if th == nil {
		th = theme.Default()
	}
	return &Builder{th: th}
}

// Theme returns the builder's theme.
func (b *Builder) Theme() *theme.Theme { return b.th }

// timestampLayouts are tried in order after "Z" is normalized to "+00:00".
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04",
	"2006-01-02 15:04Z07:00",
	"2006-01-02 15:04",
	"2006-01-02",
}

// FormatTimestamp renders an ISO-8601 timestamp with the theme's date
// layout in UTC. Unparseable input is returned verbatim with ok=false;
// empty input yields "N/A".
func (b *Builder) FormatTimestamp(raw string) (string, bool) {
	if raw == "" {
		return defaults.NotAvailable, true
	}
	s := strings.TrimSpace(raw)
	if strings.HasSuffix(s, "Z") {
		s = strings.TrimSuffix(s, "Z") + "+00:00"
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC().Format(b.th.Text().DateLayout), true
		}
	}
	return raw, false
}

func upper(s string) string {
	return cases.Upper(language.Und).String(s)
}

func orNA(s string) string {
	if s == "" {
		return defaults.NotAvailable
	}
	return s
}

func number(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func heading(text string) document.Block {
	return document.Heading{Level: document.LevelSection, Text: text}
}

func subheading(text string) document.Block {
	return document.Heading{Level: document.LevelSubsection, Text: text}
}

func body(spans ...document.Span) document.Block {
	return document.Paragraph{Style: document.StyleBody, Text: document.Text(spans...)}
}

func small(spans ...document.Span) document.Block {
	return document.Paragraph{Style: document.StyleSmall, Text: document.Text(spans...)}
}

func bullet(spans ...document.Span) document.Block {
	return document.Paragraph{Style: document.StyleBullet, Text: document.Text(spans...)}
}

func cell(spans ...document.Span) document.RichText { return document.Text(spans...) }

// evidenceTable is the dark-header zebra table used for evidentiary rows.
func evidenceTable(cols []document.Column, rows [][]document.RichText) document.Table {
	return document.Table{
		Columns: cols,
		Rows:    rows,
		Hints:   document.TableHints{Header: document.ShadingDark, Zebra: true, Grid: true, Align: document.AlignLeft},
	}
}
