// Package theme holds the immutable palette, typography and layout limits
// shared by section builders and renderers. A Theme is constructed once and
// passed explicitly; there is no package-level mutable styling state.
package theme

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/amlscreen/amlreport/pkg/defaults"
	"github.com/amlscreen/amlreport/pkg/semantic"
)

// ErrInvalidConfig is returned when a theme configuration fails validation.
var ErrInvalidConfig = errors.New("invalid theme config")

// Config is the serializable theme definition. Colors are "#rrggbb" hex.
type Config struct {
	// Palette maps roles and chrome elements to colors
	Palette PaletteConfig `yaml:"palette" json:"palette"`

	// Typography selects core font families and point sizes
	Typography TypographyConfig `yaml:"typography" json:"typography"`

	// Page sets paper size and margins in millimetres
	Page PageConfig `yaml:"page" json:"page"`

	// Limits are presentation-only truncation limits
	Limits LimitsConfig `yaml:"limits" json:"limits"`

	// Text holds fixed report wording
	Text TextConfig `yaml:"text" json:"text"`
}

// PaletteConfig holds hex colors.
type PaletteConfig struct {
	Text        string `yaml:"text" json:"text"`
	Muted       string `yaml:"muted" json:"muted"`
	Accent      string `yaml:"accent" json:"accent"`
	HeaderBG    string `yaml:"header_bg" json:"header_bg"`
	HeaderText  string `yaml:"header_text" json:"header_text"`
	LightHeader string `yaml:"light_header" json:"light_header"`
	Border      string `yaml:"border" json:"border"`
	Zebra       string `yaml:"zebra" json:"zebra"`

	Low      string `yaml:"low" json:"low"`
	Medium   string `yaml:"medium" json:"medium"`
	High     string `yaml:"high" json:"high"`
	Critical string `yaml:"critical" json:"critical"`

	LowTint      string `yaml:"low_tint" json:"low_tint"`
	MediumTint   string `yaml:"medium_tint" json:"medium_tint"`
	HighTint     string `yaml:"high_tint" json:"high_tint"`
	CriticalTint string `yaml:"critical_tint" json:"critical_tint"`
}

// TypographyConfig holds font families (PDF core fonts) and sizes in points.
type TypographyConfig struct {
	Family         string  `yaml:"family" json:"family"`
	MonoFamily     string  `yaml:"mono_family" json:"mono_family"`
	TitleSize      float64 `yaml:"title_size" json:"title_size"`
	SubtitleSize   float64 `yaml:"subtitle_size" json:"subtitle_size"`
	SectionSize    float64 `yaml:"section_size" json:"section_size"`
	SubsectionSize float64 `yaml:"subsection_size" json:"subsection_size"`
	BodySize       float64 `yaml:"body_size" json:"body_size"`
	SmallSize      float64 `yaml:"small_size" json:"small_size"`
	TableSize      float64 `yaml:"table_size" json:"table_size"`
	CompactSize    float64 `yaml:"compact_size" json:"compact_size"`
	DecorationSize float64 `yaml:"decoration_size" json:"decoration_size"`
}

// PageConfig holds paper size and margins.
type PageConfig struct {
	// Size is "A4", "Letter" or "Legal"
	Size         string  `yaml:"size" json:"size"`
	MarginLeft   float64 `yaml:"margin_left" json:"margin_left"`
	MarginRight  float64 `yaml:"margin_right" json:"margin_right"`
	MarginTop    float64 `yaml:"margin_top" json:"margin_top"`
	MarginBottom float64 `yaml:"margin_bottom" json:"margin_bottom"`
}

// LimitsConfig holds display truncation limits.
type LimitsConfig struct {
	MaxInteractionLines int `yaml:"max_interaction_lines" json:"max_interaction_lines"`
	MetricValueWidth    int `yaml:"metric_value_width" json:"metric_value_width"`
	AuditDetailWidth    int `yaml:"audit_detail_width" json:"audit_detail_width"`
	HashPrefixWidth     int `yaml:"hash_prefix_width" json:"hash_prefix_width"`
}

// TextConfig holds fixed wording.
type TextConfig struct {
	ProductLabel string `yaml:"product_label" json:"product_label"`
	ReportTitle  string `yaml:"report_title" json:"report_title"`
	Caveat       string `yaml:"caveat" json:"caveat"`
	// DateLayout is a Go time layout used for every displayed timestamp
	DateLayout string `yaml:"date_layout" json:"date_layout"`
}

// DefaultConfig returns the standard compliance report look.
func DefaultConfig() Config {
	return Config{
		Palette: PaletteConfig{
			Text:         "#1a1a2e",
			Muted:        "#6b7280",
			Accent:       "#0891b2",
			HeaderBG:     "#0f172a",
			HeaderText:   "#ffffff",
			LightHeader:  "#f1f5f9",
			Border:       "#1e2a3e",
			Zebra:        "#f8fafc",
			Low:          "#059669",
			Medium:       "#d97706",
			High:         "#dc2626",
			Critical:     "#991b1b",
			LowTint:      "#ecfdf5",
			MediumTint:   "#fffbeb",
			HighTint:     "#fef2f2",
			CriticalTint: "#fef2f2",
		},
		Typography: TypographyConfig{
			Family:         "Helvetica",
			MonoFamily:     "Courier",
			TitleSize:      22,
			SubtitleSize:   11,
			SectionSize:    14,
			SubsectionSize: 11,
			BodySize:       9,
			SmallSize:      8,
			TableSize:      8,
			CompactSize:    7,
			DecorationSize: 8,
		},
		Page: PageConfig{
			Size:         "A4",
			MarginLeft:   18,
			MarginRight:  18,
			MarginTop:    20,
			MarginBottom: 20,
		},
		Limits: LimitsConfig{
			MaxInteractionLines: defaults.MaxInteractionLines,
			MetricValueWidth:    defaults.MetricValueWidth,
			AuditDetailWidth:    defaults.AuditDetailWidth,
			HashPrefixWidth:     defaults.HashPrefixWidth,
		},
		Text: TextConfig{
			ProductLabel: defaults.ProductLabel,
			ReportTitle:  defaults.ReportTitle,
			Caveat:       defaults.ComplianceCaveat,
			DateLayout:   defaults.DateLayout,
		},
	}
}

// RGB is an 8-bit color.
type RGB struct {
	R, G, B uint8
}

// Ints returns the components as ints, the form fpdf setters take.
func (c RGB) Ints() (int, int, int) { return int(c.R), int(c.G), int(c.B) }

// Hex returns the "#rrggbb" form.
func (c RGB) Hex() string { return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B) }

// ParseHex parses "#rrggbb" or "rrggbb".
func ParseHex(s string) (RGB, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) != 6 {
		return RGB{}, fmt.Errorf("color %q: want 6 hex digits", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return RGB{}, fmt.Errorf("color %q: %w", s, err)
	}
	return RGB{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
}

// Theme is a validated, immutable Config with resolved colors.
type Theme struct {
	cfg    Config
	colors map[string]RGB
}

// New validates cfg and resolves its colors.
func New(cfg Config) (*Theme, error) {
	var errs []string
	colors := make(map[string]RGB)
	for name, hex := range paletteEntries(cfg.Palette) {
		c, err := ParseHex(hex)
		if err != nil {
			errs = append(errs, "palette."+name+": "+err.Error())
			continue
		}
		colors[name] = c
	}

	ty := cfg.Typography
	if ty.Family == "" || ty.MonoFamily == "" {
		errs = append(errs, "typography: family and mono_family are required")
	}
	for name, size := range map[string]float64{
		"title_size": ty.TitleSize, "subtitle_size": ty.SubtitleSize,
		"section_size": ty.SectionSize, "subsection_size": ty.SubsectionSize,
		"body_size": ty.BodySize, "small_size": ty.SmallSize,
		"table_size": ty.TableSize, "compact_size": ty.CompactSize,
		"decoration_size": ty.DecorationSize,
	} {
		if size <= 0 {
			errs = append(errs, fmt.Sprintf("typography.%s must be positive, got %v", name, size))
		}
	}

	switch cfg.Page.Size {
	case "A4", "Letter", "Legal":
	default:
		errs = append(errs, fmt.Sprintf("page.size %q: must be A4, Letter, or Legal", cfg.Page.Size))
	}

	l := cfg.Limits
	if l.MaxInteractionLines <= 0 || l.MetricValueWidth <= 0 || l.AuditDetailWidth <= 0 || l.HashPrefixWidth <= 0 {
		errs = append(errs, "limits: every limit must be positive")
	}
	if cfg.Text.DateLayout == "" {
		errs = append(errs, "text.date_layout is required")
	}

	if len(errs) > 0 {
		slices.Sort(errs)
		return nil, fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(errs, "; "))
	}
	return &Theme{cfg: cfg, colors: colors}, nil
}

// Default returns the theme built from DefaultConfig.
func Default() *Theme {
	t, err := New(DefaultConfig())
	if err != nil {
		panic(err)
	}
	return t
}

// Load reads a YAML theme file. Keys missing from the file keep their
// DefaultConfig values.
func Load(path string) (*Theme, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, path, err)
	}
	return New(cfg)
}

// Config returns a copy of the underlying configuration.
func (t *Theme) Config() Config { return t.cfg }

// Typography returns the typography settings.
func (t *Theme) Typography() TypographyConfig { return t.cfg.Typography }

// Page returns the paper settings.
func (t *Theme) Page() PageConfig { return t.cfg.Page }

// Limits returns the display truncation limits.
func (t *Theme) Limits() LimitsConfig { return t.cfg.Limits }

// Text returns the fixed wording.
func (t *Theme) Text() TextConfig { return t.cfg.Text }

// Color returns a named chrome color such as "header_bg" or "zebra".
func (t *Theme) Color(name string) RGB { return t.colors[name] }

// RoleColor returns the foreground color for a palette role.
func (t *Theme) RoleColor(r semantic.Role) RGB {
	switch r {
	case semantic.RoleLow:
		return t.colors["low"]
	case semantic.RoleMedium:
		return t.colors["medium"]
	case semantic.RoleHigh:
		return t.colors["high"]
	case semantic.RoleCritical:
		return t.colors["critical"]
	case semantic.RoleMuted:
		return t.colors["muted"]
	default:
		return t.colors["text"]
	}
}

// RoleTint returns the light background for a palette role.
func (t *Theme) RoleTint(r semantic.Role) RGB {
	switch r {
	case semantic.RoleLow:
		return t.colors["low_tint"]
	case semantic.RoleMedium:
		return t.colors["medium_tint"]
	case semantic.RoleHigh:
		return t.colors["high_tint"]
	case semantic.RoleCritical:
		return t.colors["critical_tint"]
	default:
		return RGB{255, 255, 255}
	}
}

func paletteEntries(p PaletteConfig) map[string]string {
	return map[string]string{
		"text": p.Text, "muted": p.Muted, "accent": p.Accent,
		"header_bg": p.HeaderBG, "header_text": p.HeaderText,
		"light_header": p.LightHeader, "border": p.Border, "zebra": p.Zebra,
		"low": p.Low, "medium": p.Medium, "high": p.High, "critical": p.Critical,
		"low_tint": p.LowTint, "medium_tint": p.MediumTint,
		"high_tint": p.HighTint, "critical_tint": p.CriticalTint,
	}
}
