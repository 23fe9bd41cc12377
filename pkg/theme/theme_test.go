package theme

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amlscreen/amlreport/pkg/semantic"
)

func TestParseHex(t *testing.T) {
	c, err := ParseHex("#0f172a")
	require.NoError(t, err)
	assert.Equal(t, RGB{0x0f, 0x17, 0x2a}, c)
	assert.Equal(t, "#0f172a", c.Hex())

	c, err = ParseHex("FFFFFF")
	require.NoError(t, err)
	assert.Equal(t, RGB{255, 255, 255}, c)

	_, err = ParseHex("#fff")
	assert.Error(t, err)
	_, err = ParseHex("#gggggg")
	assert.Error(t, err)
}

func TestDefaultThemeRoles(t *testing.T) {
	th := Default()
	assert.Equal(t, "#059669", th.RoleColor(semantic.RoleLow).Hex())
	assert.Equal(t, "#d97706", th.RoleColor(semantic.RoleMedium).Hex())
	assert.Equal(t, "#dc2626", th.RoleColor(semantic.RoleHigh).Hex())
	assert.Equal(t, "#991b1b", th.RoleColor(semantic.RoleCritical).Hex())
	assert.Equal(t, "#1a1a2e", th.RoleColor(semantic.RoleNeutral).Hex())
	assert.Equal(t, "#6b7280", th.RoleColor(semantic.RoleMuted).Hex())
	assert.Equal(t, RGB{255, 255, 255}, th.RoleTint(semantic.RoleNeutral))
	assert.Equal(t, "#fef2f2", th.RoleTint(semantic.RoleHigh).Hex())

	assert.Equal(t, 30, th.Limits().MetricValueWidth)
	assert.Equal(t, 100, th.Limits().AuditDetailWidth)
}

func TestThemeIsImmutable(t *testing.T) {
	th := Default()
	cfg := th.Config()
	cfg.Palette.High = "#000000"
	cfg.Limits.MetricValueWidth = 1
	assert.Equal(t, "#dc2626", th.RoleColor(semantic.RoleHigh).Hex())
	assert.Equal(t, 30, th.Limits().MetricValueWidth)
}

func TestNewRejectsInvalid(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Palette.High = "red"
	cfg.Typography.BodySize = 0
	cfg.Page.Size = "B5"
	_, err := New(cfg)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidConfig))
	assert.Contains(t, err.Error(), "palette.high")
	assert.Contains(t, err.Error(), "typography.body_size")
	assert.Contains(t, err.Error(), "page.size")
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "theme.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
palette:
  accent: "#123456"
limits:
  metric_value_width: 24
text:
  product_label: "ACME COMPLIANCE"
`), 0o644))

	th, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "#123456", th.Color("accent").Hex())
	assert.Equal(t, 24, th.Limits().MetricValueWidth)
	assert.Equal(t, "ACME COMPLIANCE", th.Text().ProductLabel)
	assert.Equal(t, "#dc2626", th.RoleColor(semantic.RoleHigh).Hex(), "untouched keys keep defaults")
	assert.Equal(t, 100, th.Limits().AuditDetailWidth)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("palette: [not, a, map]"), 0o644))
	_, err = Load(path)
	assert.True(t, errors.Is(err, ErrInvalidConfig))
}
