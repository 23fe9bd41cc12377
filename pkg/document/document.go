// Package document defines the backend-independent block sequence produced
// by the report assembler and consumed by renderers.
package document

import (
	"fmt"
	"strconv"
	"time"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"

	"github.com/amlscreen/amlreport/pkg/defaults"
	"github.com/amlscreen/amlreport/pkg/jsonutil"
	"github.com/amlscreen/amlreport/pkg/semantic"
)

// Kind tags a block variant.
type Kind string

// Block kinds.
const (
	KindHeading   Kind = "heading"
	KindParagraph Kind = "paragraph"
	KindTable     Kind = "table"
	KindBadge     Kind = "badge"
	KindAlert     Kind = "alert"
	KindPageBreak Kind = "page-break"
	KindSpacer    Kind = "spacer"
)

// Block is one unit of report content. The set of implementations is
// closed to this package.
type Block interface {
	Kind() Kind
	block()
}

// Heading levels.
const (
	LevelTitle      = 0
	LevelSection    = 1
	LevelSubsection = 2
)

// Heading is a title, section or subsection heading.
type Heading struct {
	Level int    `json:"level"`
	Text  string `json:"text"`
}

// ParagraphStyle selects a paragraph's typography.
type ParagraphStyle string

// Paragraph styles.
const (
	StyleBody     ParagraphStyle = "body"
	StyleSubtitle ParagraphStyle = "subtitle"
	StyleSmall    ParagraphStyle = "small"
	StyleBullet   ParagraphStyle = "bullet"
)

// Paragraph is a run of rich text.
type Paragraph struct {
	Style ParagraphStyle `json:"style"`
	Text  RichText       `json:"text"`
}

// Column is a table column with a fixed width in millimetres.
type Column struct {
	Title string  `json:"title"`
	Width float64 `json:"width"`
}

// Shading selects the header row background.
type Shading string

// Header shadings.
const (
	ShadingDark  Shading = "dark"
	ShadingLight Shading = "light"
	ShadingNone  Shading = "none"
)

// Align is a horizontal cell alignment.
type Align string

// Alignments.
const (
	AlignLeft   Align = "left"
	AlignCenter Align = "center"
)

// TableHints carries styling hints for a table.
type TableHints struct {
	Header  Shading `json:"header"`
	Zebra   bool    `json:"zebra,omitempty"`
	Grid    bool    `json:"grid,omitempty"`
	Align   Align   `json:"align,omitempty"`
	Compact bool    `json:"compact,omitempty"`
}

// Table is a fixed-column table. Every row has len(Columns) cells.
type Table struct {
	Columns []Column     `json:"columns"`
	Rows    [][]RichText `json:"rows"`
	Hints   TableHints   `json:"hints"`
}

// Width returns the sum of column widths.
func (t Table) Width() float64 {
	var w float64
	for _, c := range t.Columns {
		w += c.Width
	}
	return w
}

// Badge is the risk verdict row: level, score and recommendation.
type Badge struct {
	Level          semantic.Token `json:"level"`
	Score          string         `json:"score"`
	Recommendation semantic.Token `json:"recommendation"`
}

// Alert is a highlighted single line such as a detected pattern.
type Alert struct {
	Label string `json:"label"`
	Text  string `json:"text"`
}

// PageBreak forces a new page.
type PageBreak struct{}

// Spacer is vertical whitespace of Size millimetres.
type Spacer struct {
	Size float64 `json:"size"`
}

func (Heading) Kind() Kind   { return KindHeading }
func (Paragraph) Kind() Kind { return KindParagraph }
func (Table) Kind() Kind     { return KindTable }
func (Badge) Kind() Kind     { return KindBadge }
func (Alert) Kind() Kind     { return KindAlert }
func (PageBreak) Kind() Kind { return KindPageBreak }
func (Spacer) Kind() Kind    { return KindSpacer }

func (Heading) block()   {}
func (Paragraph) block() {}
func (Table) block()     {}
func (Badge) block()     {}
func (Alert) block()     {}
func (PageBreak) block() {}
func (Spacer) block()    {}

// Decorator produces running page decoration. Renderers call it once per
// page with a 1-based page index.
type Decorator interface {
	Header(page int) string
	Footer(page int) string
}

// Decoration is the Decorator for one build. GeneratedAt is captured once
// per build so every page shows the same time.
type Decoration struct {
	ProductLabel string    `json:"productLabel"`
	ReportID     string    `json:"reportId"`
	GeneratedAt  time.Time `json:"generatedAt"`
	// Layout formats GeneratedAt; empty means defaults.DateLayout.
	Layout string `json:"-"`
}

// Header returns "<product label> — <report id>".
func (d Decoration) Header(int) string {
	return d.ProductLabel + " — " + d.ReportID
}

// Footer returns "Generated at <build time> — <page>".
func (d Decoration) Footer(page int) string {
	layout := d.Layout
	if layout == "" {
		layout = defaults.DateLayout
	}
	return fmt.Sprintf("Generated at %s — %d", d.GeneratedAt.UTC().Format(layout), page)
}

// Document is an ordered block sequence with its decoration.
type Document struct {
	Blocks     []Block
	Decoration Decoration
}

// Count returns the number of blocks of kind k.
func (d Document) Count(k Kind) int {
	n := 0
	for _, b := range d.Blocks {
		if b.Kind() == k {
			n++
		}
	}
	return n
}

// Headings returns the text of every heading at level, in order.
func (d Document) Headings(level int) []string {
	var out []string
	for _, b := range d.Blocks {
		if h, ok := b.(Heading); ok && h.Level == level {
			out = append(out, h.Text)
		}
	}
	return out
}

// MarshalJSON encodes blocks as {"kind": ..., <fields>} objects.
func (d Document) MarshalJSON() ([]byte, error) {
	blocks := make([]jsonutil.Object, 0, len(d.Blocks))
	for i, b := range d.Blocks {
		env, err := envelope(b)
		if err != nil {
			return nil, fmt.Errorf("block %d: %w", i, err)
		}
		blocks = append(blocks, env)
	}
	return json.Marshal(struct {
		Decoration Decoration        `json:"decoration"`
		Blocks     []jsonutil.Object `json:"blocks"`
	}{d.Decoration, blocks})
}

func envelope(b Block) (jsonutil.Object, error) {
	var env jsonutil.Object
	env.Set("kind", jsontext.Value(strconv.Quote(string(b.Kind()))))
	raw, err := json.Marshal(b)
	if err != nil {
		return env, err
	}
	var body jsonutil.Object
	if err := jsonutil.Unmarshal(raw, &body); err != nil {
		return env, err
	}
	for _, k := range body.Keys() {
		v, _ := body.Get(k)
		env.Set(k, v)
	}
	return env, nil
}
