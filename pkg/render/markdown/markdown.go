// Package markdown renders a composed report document as GitHub-flavored
// Markdown. Palette roles have no Markdown form and are dropped; bold and
// monospace spans are kept.
package markdown

import (
	"io"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"

	"github.com/amlscreen/amlreport/pkg/document"
)

const reportTemplate = `
{{- with .Header }}> {{ . }}

{{ end }}
{{- range .Blocks }}
{{- if eq .Kind "heading" }}{{ repeat (int (add1 .Level)) "#" }} {{ .Text }}

{{ else if eq .Kind "paragraph" }}{{ if eq .Style "bullet" }}- {{ end }}{{ .Text }}

{{ else if eq .Kind "table" }}| {{ join " | " .Columns }} |
|{{ range .Columns }} --- |{{ end }}
{{ range .Rows }}| {{ join " | " . }} |
{{ end }}
{{ else if eq .Kind "badge" }}**RISK {{ .Label }}** | Score: {{ .Score }} | **{{ .Recommendation }}**

{{ else if eq .Kind "alert" }}> **{{ .Label }}** {{ .Text }}

{{ else if eq .Kind "page-break" }}---

{{ end }}
{{- end }}
{{- with .Footer }}_{{ . }}_
{{ end }}`

var tmpl = template.Must(template.New("report").Funcs(sprig.TxtFuncMap()).Parse(reportTemplate))

type view struct {
	Header string
	Footer string
	Blocks []item
}

type item struct {
	Kind           string
	Level          int
	Style          string
	Text           string
	Columns        []string
	Rows           [][]string
	Label          string
	Score          string
	Recommendation string
}

// Render writes doc to w. The running header and footer of page 1 frame
// the output.
func Render(w io.Writer, doc document.Document) error {
	v := view{
		Header: escape(doc.Decoration.Header(1)),
		Footer: escape(doc.Decoration.Footer(1)),
	}
	for _, b := range doc.Blocks {
		if it, ok := toItem(b); ok {
			v.Blocks = append(v.Blocks, it)
		}
	}
	return tmpl.Execute(w, v)
}

func toItem(b document.Block) (item, bool) {
	it := item{Kind: string(b.Kind())}
	switch v := b.(type) {
	case document.Heading:
		it.Level = v.Level
		it.Text = escape(v.Text)
	case document.Paragraph:
		it.Style = string(v.Style)
		rt := v.Text
		if v.Style == document.StyleBullet {
			rt = trimBullet(rt)
		}
		it.Text = inline(rt, "  \n")
	case document.Table:
		for _, c := range v.Columns {
			it.Columns = append(it.Columns, cellEscape(c.Title))
		}
		for _, row := range v.Rows {
			cells := make([]string, len(v.Columns))
			for i := range cells {
				if i < len(row) {
					cells[i] = strings.ReplaceAll(inline(row[i], "<br>"), "|", `\|`)
				}
			}
			it.Rows = append(it.Rows, cells)
		}
	case document.Badge:
		it.Label = escape(v.Level.Label)
		it.Score = escape(v.Score)
		it.Recommendation = escape(v.Recommendation.Label)
	case document.Alert:
		it.Label = escape(v.Label)
		it.Text = escape(v.Text)
	case document.PageBreak:
	default:
		return item{}, false
	}
	return it, true
}

var escaper = strings.NewReplacer(
	`\`, `\\`,
	"*", `\*`,
	"`", "\\`",
	"_", `\_`,
	"[", `\[`,
	"]", `\]`,
	"<", `\<`,
	">", `\>`,
	"#", `\#`,
)

func escape(s string) string { return escaper.Replace(s) }

func cellEscape(s string) string { return strings.ReplaceAll(escape(s), "|", `\|`) }

// inline renders spans as Markdown, joining lines with br.
func inline(rt document.RichText, br string) string {
	var sb strings.Builder
	for _, s := range rt {
		switch {
		case s.Mono:
			sb.WriteString(wrap(s.Text, "`", false))
		case s.Bold:
			sb.WriteString(wrap(s.Text, "**", true))
		default:
			sb.WriteString(escape(s.Text))
		}
	}
	return strings.ReplaceAll(sb.String(), "\n", br)
}

// wrap surrounds the trimmed text with mark, keeping outer whitespace
// outside the markers so emphasis still applies.
func wrap(s, mark string, esc bool) string {
	core := strings.TrimSpace(s)
	if core == "" {
		return s
	}
	i := strings.Index(s, core)
	lead, tail := s[:i], s[i+len(core):]
	if esc {
		core = escape(core)
	}
	return lead + mark + core + mark + tail
}

// trimBullet drops a leading bullet glyph; list items get their own marker.
func trimBullet(rt document.RichText) document.RichText {
	if len(rt) == 0 || strings.TrimSpace(rt[0].Text) != "•" {
		return rt
	}
	return rt[1:]
}
