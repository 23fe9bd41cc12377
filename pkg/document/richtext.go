package document

import (
	"strings"

	"github.com/amlscreen/amlreport/pkg/semantic"
)

// Span is a run of text with inline styling. Text is always literal; it is
// never interpreted as markup.
type Span struct {
	Text string        `json:"text"`
	Bold bool          `json:"bold,omitempty"`
	Mono bool          `json:"mono,omitempty"`
	Role semantic.Role `json:"role,omitempty"`
}

// RichText is a sequence of spans.
type RichText []Span

// Text builds rich text from spans.
func Text(spans ...Span) RichText { return RichText(spans) }

// Plain is an unstyled span.
func Plain(s string) Span { return Span{Text: s} }

// Bold is a bold span.
func Bold(s string) Span { return Span{Text: s, Bold: true} }

// Mono is a monospace span for identifiers and hashes.
func Mono(s string) Span { return Span{Text: s, Mono: true} }

// Colored is a span in the given palette role.
func Colored(s string, role semantic.Role) Span { return Span{Text: s, Role: role} }

// Strong is a bold span in the given palette role.
func Strong(s string, role semantic.Role) Span { return Span{Text: s, Bold: true, Role: role} }

// Token renders a semantic token as a bold colored span.
func Token(t semantic.Token) Span { return Strong(t.Label, t.Role) }

// String returns the text with styling removed.
func (r RichText) String() string {
	var b strings.Builder
	for _, s := range r {
		b.WriteString(s.Text)
	}
	return b.String()
}

// Markup serializes r using the restricted inline markup set:
// <b>, <mono> and <color role="...">. Span text is escaped.
func (r RichText) Markup() string {
	var b strings.Builder
	for _, s := range r {
		var closers []string
		if s.Role != "" {
			b.WriteString(`<color role="`)
			b.WriteString(Escape(string(s.Role)))
			b.WriteString(`">`)
			closers = append(closers, "</color>")
		}
		if s.Bold {
			b.WriteString("<b>")
			closers = append(closers, "</b>")
		}
		if s.Mono {
			b.WriteString("<mono>")
			closers = append(closers, "</mono>")
		}
		b.WriteString(Escape(s.Text))
		for i := len(closers) - 1; i >= 0; i-- {
			b.WriteString(closers[i])
		}
	}
	return b.String()
}

var escaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
)

// Escape makes s safe to embed in markup.
func Escape(s string) string { return escaper.Replace(s) }
