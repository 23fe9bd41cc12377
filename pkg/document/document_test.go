package document

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amlscreen/amlreport/pkg/semantic"
)

func TestMarkupEscapesDomainText(t *testing.T) {
	rt := Text(
		Bold("Address: "),
		Mono("<script>&\"x\""),
		Strong("HIGH", semantic.RoleHigh),
	)
	got := rt.Markup()
	assert.Equal(t,
		`<b>Address: </b><mono>&lt;script&gt;&amp;&quot;x&quot;</mono><color role="risk-high"><b>HIGH</b></color>`,
		got)
	assert.NotContains(t, got, "<script>")
	assert.Equal(t, `Address: <script>&"x"HIGH`, rt.String())
}

func TestEscape(t *testing.T) {
	assert.Equal(t, "a &lt;b&gt; &amp; &quot;c&quot;", Escape(`a <b> & "c"`))
	assert.Equal(t, "plain", Escape("plain"))
}

func TestDecorationIsStablePerBuild(t *testing.T) {
	d := Decoration{
		ProductLabel: "AML WALLET SCREENING — COMPLIANCE REPORT",
		ReportID:     "AML-1",
		GeneratedAt:  time.Date(2025, 2, 15, 10, 0, 0, 0, time.UTC),
	}
	assert.Equal(t, "AML WALLET SCREENING — COMPLIANCE REPORT — AML-1", d.Header(1))
	assert.Equal(t, d.Header(1), d.Header(7))
	assert.Equal(t, "Generated at 15/02/2025 10:00:00 UTC — 1", d.Footer(1))
	assert.Equal(t, "Generated at 15/02/2025 10:00:00 UTC — 3", d.Footer(3))

	var _ Decorator = d
}

func TestDocumentJSONEnvelopes(t *testing.T) {
	doc := Document{
		Blocks: []Block{
			Heading{Level: LevelSection, Text: "Findings"},
			PageBreak{},
			Table{Columns: []Column{{Title: "A", Width: 10}}, Rows: [][]RichText{{Text(Plain("x"))}}},
		},
		Decoration: Decoration{ReportID: "R"},
	}
	out, err := doc.MarshalJSON()
	require.NoError(t, err)
	s := string(out)
	assert.Contains(t, s, `{"kind":"heading","level":1,"text":"Findings"}`)
	assert.Contains(t, s, `{"kind":"page-break"}`)
	assert.Contains(t, s, `"kind":"table"`)
	assert.True(t, strings.Index(s, `"heading"`) < strings.Index(s, `"page-break"`))
}

func TestDocumentCounters(t *testing.T) {
	doc := Document{Blocks: []Block{
		Heading{Level: LevelTitle, Text: "T"},
		Heading{Level: LevelSection, Text: "A"},
		PageBreak{},
		Heading{Level: LevelSection, Text: "B"},
	}}
	assert.Equal(t, 1, doc.Count(KindPageBreak))
	assert.Equal(t, []string{"A", "B"}, doc.Headings(LevelSection))
}

func TestTableWidth(t *testing.T) {
	tbl := Table{Columns: []Column{{Width: 25}, {Width: 35}, {Width: 110}}}
	assert.Equal(t, 170.0, tbl.Width())
}
