// Package pdf renders a composed report document to PDF using fpdf core
// fonts. Text is translated to cp1252 before drawing; characters outside
// that code page are replaced by the translator.
package pdf

import (
	"fmt"
	"io"
	"strings"

	gofpdf "github.com/go-pdf/fpdf"

	"github.com/amlscreen/amlreport/pkg/defaults"
	"github.com/amlscreen/amlreport/pkg/document"
	"github.com/amlscreen/amlreport/pkg/semantic"
	"github.com/amlscreen/amlreport/pkg/theme"
)

// Config holds per-render PDF settings. Paper size and margins come from
// the theme.
type Config struct {
	// Title is the document metadata title; empty uses the theme's report title
	Title string

	// Author is the document metadata author
	Author string

	// Orientation is "P" (default) or "L"
	Orientation string

	// NoCompress disables stream compression so text stays searchable in
	// the raw output
	NoCompress bool
}

// Renderer draws documents with a fixed theme. It is safe for concurrent
// use; every Render call owns its own fpdf instance.
type Renderer struct {
	th  *theme.Theme
	cfg Config
}

// New returns a Renderer. A nil theme selects theme.Default().
func New(th *theme.Theme, cfg Config) *Renderer {
	if th == nil {
		th = theme.Default()
	}
	if cfg.Title == "" {
		cfg.Title = th.Text().ReportTitle
	}
	if cfg.Orientation == "" {
		cfg.Orientation = "P"
	}
	return &Renderer{th: th, cfg: cfg}
}

// Config returns the effective configuration.
func (r *Renderer) Config() Config { return r.cfg }

// Render writes doc as a PDF to w. Output is byte-identical for equal
// documents.
func (r *Renderer) Render(w io.Writer, doc document.Document) error {
	page := r.th.Page()
	f := gofpdf.New(r.cfg.Orientation, "mm", page.Size, "")
	f.SetMargins(page.MarginLeft, page.MarginTop, page.MarginRight)
	f.SetAutoPageBreak(true, page.MarginBottom)
	f.SetCompression(!r.cfg.NoCompress)
	f.SetCatalogSort(true)
	f.SetCreationDate(doc.Decoration.GeneratedAt)
	f.SetModificationDate(doc.Decoration.GeneratedAt)
	f.SetTitle(r.cfg.Title, true)
	if r.cfg.Author != "" {
		f.SetAuthor(r.cfg.Author, true)
	}
	f.SetCreator(defaults.UserAgent("pdf"), true)

	c := &canvas{
		f:     f,
		tr:    f.UnicodeTranslatorFromDescriptor(""),
		th:    r.th,
		decor: doc.Decoration,
	}
	f.SetHeaderFuncMode(c.header, true)
	f.SetFooterFunc(c.footer)
	f.AddPage()

	for _, b := range doc.Blocks {
		c.block(b)
		if err := f.Error(); err != nil {
			return fmt.Errorf("render %s block: %w", b.Kind(), err)
		}
	}
	return f.Output(w)
}

// canvas is the drawing state for one render.
type canvas struct {
	f     *gofpdf.Fpdf
	tr    func(string) string
	th    *theme.Theme
	decor document.Decorator
}

func (c *canvas) block(b document.Block) {
	switch v := b.(type) {
	case document.Heading:
		c.heading(v)
	case document.Paragraph:
		c.paragraph(v)
	case document.Table:
		c.table(v)
	case document.Badge:
		c.badge(v)
	case document.Alert:
		c.alert(v)
	case document.PageBreak:
		c.pageBreak()
	case document.Spacer:
		c.f.Ln(v.Size)
	}
}

// lineHeight converts a point size to a line height in millimetres.
func lineHeight(size float64) float64 {
	return size * 0.5
}

func (c *canvas) setColor(rgb theme.RGB) {
	c.f.SetTextColor(rgb.Ints())
}

func (c *canvas) setFill(rgb theme.RGB) {
	c.f.SetFillColor(rgb.Ints())
}

func (c *canvas) setDraw(rgb theme.RGB) {
	c.f.SetDrawColor(rgb.Ints())
}

func (c *canvas) font(style string, size float64) {
	c.f.SetFont(c.th.Typography().Family, style, size)
}

// contentWidth is the printable width between margins.
func (c *canvas) contentWidth() float64 {
	w, _ := c.f.GetPageSize()
	l, _, r, _ := c.f.GetMargins()
	return w - l - r
}

// remaining is the vertical space left above the bottom margin.
func (c *canvas) remaining() float64 {
	_, h := c.f.GetPageSize()
	_, _, _, b := c.f.GetMargins()
	return h - b - c.f.GetY()
}

// ensure starts a new page unless h millimetres fit on the current one.
func (c *canvas) ensure(h float64) {
	if c.remaining() < h {
		c.f.AddPage()
	}
}

// atTop reports whether nothing has been drawn on the current page yet.
func (c *canvas) atTop() bool {
	_, t, _, _ := c.f.GetMargins()
	return c.f.GetY() <= t+0.01
}

func (c *canvas) pageBreak() {
	if c.atTop() {
		return
	}
	c.f.AddPage()
}

func (c *canvas) header() {
	l, t, r, _ := c.f.GetMargins()
	w, _ := c.f.GetPageSize()

	c.setDraw(c.th.Color("accent"))
	c.f.SetLineWidth(0.7)
	c.f.Line(l, t-12, w-r, t-12)
	c.f.SetLineWidth(0.2)

	c.font("", c.th.Typography().DecorationSize)
	c.setColor(c.th.Color("muted"))
	c.f.SetXY(l, t-10)
	c.f.CellFormat(0, 4, c.tr(c.decor.Header(c.f.PageNo())), "", 0, "L", false, 0, "")
}

func (c *canvas) footer() {
	l, _, r, b := c.f.GetMargins()
	w, h := c.f.GetPageSize()

	c.setDraw(c.th.Color("border"))
	c.f.SetLineWidth(0.2)
	c.f.Line(l, h-b+4, w-r, h-b+4)

	c.font("", c.th.Typography().DecorationSize)
	c.setColor(c.th.Color("muted"))
	c.f.SetXY(l, h-b+6)
	c.f.CellFormat(0, 4, c.tr(c.decor.Footer(c.f.PageNo())), "", 0, "C", false, 0, "")
}

func (c *canvas) heading(h document.Heading) {
	ty := c.th.Typography()
	switch h.Level {
	case document.LevelTitle:
		c.font("B", ty.TitleSize)
		c.setColor(c.th.Color("text"))
		c.f.MultiCell(0, lineHeight(ty.TitleSize), c.tr(h.Text), "", "C", false)
		c.f.Ln(2)
	case document.LevelSection:
		// Keep the heading with at least a few lines of its content.
		c.ensure(lineHeight(ty.SectionSize) + 20)
		if !c.atTop() {
			c.f.Ln(4)
		}
		c.font("B", ty.SectionSize)
		c.setColor(c.th.Color("accent"))
		c.f.MultiCell(0, lineHeight(ty.SectionSize), c.tr(h.Text), "", "L", false)
		l, _, _, _ := c.f.GetMargins()
		y := c.f.GetY() + 0.5
		c.setDraw(c.th.Color("accent"))
		c.f.SetLineWidth(0.3)
		c.f.Line(l, y, l+c.contentWidth(), y)
		c.f.SetLineWidth(0.2)
		c.f.Ln(3)
	default:
		c.ensure(lineHeight(ty.SubsectionSize) + 10)
		c.f.Ln(1.5)
		c.font("B", ty.SubsectionSize)
		c.setColor(c.th.Color("text"))
		c.f.MultiCell(0, lineHeight(ty.SubsectionSize), c.tr(h.Text), "", "L", false)
		c.f.Ln(1)
	}
}

// paragraphStyle returns size, indent and default color for a style.
func (c *canvas) paragraphStyle(s document.ParagraphStyle) (float64, float64, theme.RGB) {
	ty := c.th.Typography()
	switch s {
	case document.StyleSubtitle:
		return ty.SubtitleSize, 0, c.th.Color("muted")
	case document.StyleSmall:
		return ty.SmallSize, 0, c.th.Color("muted")
	case document.StyleBullet:
		return ty.BodySize, 5, c.th.Color("text")
	default:
		return ty.BodySize, 0, c.th.Color("text")
	}
}

func (c *canvas) spanColor(s document.Span, fallback theme.RGB) theme.RGB {
	if s.Role == "" {
		return fallback
	}
	return c.th.RoleColor(s.Role)
}

func (c *canvas) spanFont(s document.Span, size float64) {
	family := c.th.Typography().Family
	if s.Mono {
		family = c.th.Typography().MonoFamily
	}
	style := ""
	if s.Bold {
		style = "B"
	}
	c.f.SetFont(family, style, size)
}

func (c *canvas) paragraph(p document.Paragraph) {
	size, indent, base := c.paragraphStyle(p.Style)
	lh := lineHeight(size)

	l, _, _, _ := c.f.GetMargins()
	c.f.SetLeftMargin(l + indent)
	c.f.SetX(l + indent)
	for _, s := range p.Text {
		c.spanFont(s, size)
		c.setColor(c.spanColor(s, base))
		c.f.Write(lh, c.tr(s.Text))
	}
	c.f.SetLeftMargin(l)
	c.f.Ln(lh + 1)
}

// columnWidths scales widths down proportionally when the table is wider
// than the printable area.
func (c *canvas) columnWidths(t document.Table) []float64 {
	total := t.Width()
	avail := c.contentWidth()
	scale := 1.0
	if total > avail && total > 0 {
		scale = avail / total
	}
	out := make([]float64, len(t.Columns))
	for i, col := range t.Columns {
		out[i] = col.Width * scale
	}
	return out
}

// cellStyle is the style of a cell's first span; cells carry one style.
func cellStyle(rt document.RichText) document.Span {
	if len(rt) == 0 {
		return document.Span{}
	}
	return rt[0]
}

func (c *canvas) table(t document.Table) {
	if len(t.Columns) == 0 {
		return
	}
	ty := c.th.Typography()
	size := ty.TableSize
	if t.Hints.Compact {
		size = ty.CompactSize
	}
	lh := lineHeight(size)
	const pad = 1.2
	widths := c.columnWidths(t)
	align := "L"
	if t.Hints.Align == document.AlignCenter {
		align = "C"
	}
	border := ""
	if t.Hints.Grid {
		border = "1"
	}
	l, _, _, _ := c.f.GetMargins()

	drawHeader := func() {
		if t.Hints.Header == document.ShadingNone || t.Hints.Header == "" {
			return
		}
		c.font("B", size)
		if t.Hints.Header == document.ShadingDark {
			c.setFill(c.th.Color("header_bg"))
			c.setColor(c.th.Color("header_text"))
		} else {
			c.setFill(c.th.Color("light_header"))
			c.setColor(c.th.Color("text"))
		}
		c.setDraw(c.th.Color("border"))
		c.f.SetX(l)
		for i, col := range t.Columns {
			c.f.CellFormat(widths[i], lh+2*pad, c.tr(col.Title), border, 0, align, true, 0, "")
		}
		c.f.Ln(-1)
	}

	c.ensure(2 * (lh + 2*pad))
	drawHeader()

	for i, row := range t.Rows {
		lines := make([][][]byte, len(widths))
		n := 1
		for j := range widths {
			var rt document.RichText
			if j < len(row) {
				rt = row[j]
			}
			c.spanFont(cellStyle(rt), size)
			lines[j] = c.f.SplitLines([]byte(c.tr(rt.String())), widths[j])
			n = max(n, len(lines[j]))
		}
		rowH := float64(n)*lh + 2*pad

		if c.remaining() < rowH {
			c.f.AddPage()
			drawHeader()
		}

		y := c.f.GetY()
		x := l
		for j, w := range widths {
			var rt document.RichText
			if j < len(row) {
				rt = row[j]
			}
			if t.Hints.Zebra && i%2 == 1 {
				c.setFill(c.th.Color("zebra"))
				c.f.Rect(x, y, w, rowH, "F")
			}
			if t.Hints.Grid {
				c.setDraw(c.th.Color("border"))
				c.f.Rect(x, y, w, rowH, "D")
			}
			st := cellStyle(rt)
			c.spanFont(st, size)
			c.setColor(c.spanColor(st, c.th.Color("text")))
			for k, line := range lines[j] {
				c.f.SetXY(x, y+pad+float64(k)*lh)
				c.f.CellFormat(w, lh, string(line), "", 0, align, false, 0, "")
			}
			x += w
		}
		c.f.SetXY(l, y+rowH)
	}
	c.f.Ln(2)
}

func (c *canvas) badge(b document.Badge) {
	ty := c.th.Typography()
	const h = 12.0
	c.ensure(h + 4)

	level := c.th.RoleColor(b.Level.Role)
	c.setFill(c.th.RoleTint(b.Level.Role))
	c.setDraw(level)
	c.f.SetLineWidth(0.5)

	c.font("B", ty.SectionSize)
	c.setColor(level)
	c.f.CellFormat(60, h, c.tr("RISK "+b.Level.Label), "1", 0, "C", true, 0, "")

	c.font("B", ty.SubtitleSize)
	c.setColor(c.th.Color("text"))
	c.f.CellFormat(40, h, c.tr("Score: "+b.Score), "1", 0, "C", true, 0, "")

	c.setColor(c.th.RoleColor(b.Recommendation.Role))
	c.f.CellFormat(70, h, c.tr(b.Recommendation.Label), "1", 1, "C", true, 0, "")

	c.f.SetLineWidth(0.2)
	c.f.Ln(2)
}

func (c *canvas) alert(a document.Alert) {
	size := c.th.Typography().BodySize
	high := c.th.RoleColor(semantic.RoleHigh)
	c.setFill(c.th.RoleTint(semantic.RoleHigh))
	c.setDraw(high)
	c.setColor(high)
	c.font("B", size)
	text := strings.TrimSpace(a.Label + " " + a.Text)
	c.f.MultiCell(0, lineHeight(size)+1, c.tr(text), "1", "L", true)
	c.f.Ln(2)
}
