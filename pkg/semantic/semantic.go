// Package semantic maps raw domain codes (risk levels, statuses,
// recommendations) to display labels and palette roles. Every mapping is
// total: an unknown code keeps its raw text and the neutral role.
package semantic

import (
	"strconv"

	"github.com/amlscreen/amlreport/pkg/defaults"
)

// Role is a palette role. Renderers resolve roles to concrete colors
// through the theme.
type Role string

// Palette roles.
const (
	RoleLow      Role = "risk-low"
	RoleMedium   Role = "risk-medium"
	RoleHigh     Role = "risk-high"
	RoleCritical Role = "risk-critical"
	RoleNeutral  Role = "neutral"
	RoleMuted    Role = "muted"
)

// Roles lists every palette role in severity order.
var Roles = []Role{RoleLow, RoleMedium, RoleHigh, RoleCritical, RoleNeutral, RoleMuted}

// Valid reports whether r is a known palette role.
func (r Role) Valid() bool {
	for _, known := range Roles {
		if r == known {
			return true
		}
	}
	return false
}

// Token is a resolved display label with its palette role.
type Token struct {
	Label string `json:"label"`
	Role  Role   `json:"role"`
	// Mapped is false when the raw code was not found and the neutral
	// fallback was used.
	Mapped bool `json:"mapped"`
}

// Fallback is the token for an unmapped raw value.
func Fallback(raw string) Token {
	if raw == "" {
		raw = defaults.NotAvailable
	}
	return Token{Label: raw, Role: RoleNeutral}
}

type entry struct {
	label string
	role  Role
}

// Family is a total lookup table for one enum family.
type Family struct {
	name  string
	table map[string]entry
}

// Name returns the family name, used in build statistics.
func (f Family) Name() string { return f.name }

// Map resolves raw to a token. Unknown codes fall back to the raw string
// with the neutral role; Map never fails.
func (f Family) Map(raw string) Token {
	e, ok := f.table[raw]
	if !ok {
		return Fallback(raw)
	}
	label := e.label
	if label == "" {
		label = raw
	}
	return Token{Label: label, Role: e.role, Mapped: true}
}

// Codes returns the recognized codes, for tests and documentation.
func (f Family) Codes() []string {
	out := make([]string, 0, len(f.table))
	for k := range f.table {
		out = append(out, k)
	}
	return out
}

// Enum families. An empty label means the raw code is shown verbatim.
var (
	Risk = Family{name: "risk", table: map[string]entry{
		"LOW":      {"", RoleLow},
		"MEDIUM":   {"", RoleMedium},
		"HIGH":     {"", RoleHigh},
		"CRITICAL": {"", RoleCritical},
	}}

	KYC = Family{name: "kyc", table: map[string]entry{
		"MANDATORY_BLOCK":   {"", RoleCritical},
		"MANDATORY_EDD":     {"", RoleHigh},
		"REQUIRED_CDD_PLUS": {"", RoleMedium},
		"STANDARD":          {"", RoleLow},
	}}

	AML = Family{name: "aml", table: map[string]entry{
		"ACTIVE":       {"Active", RoleLow},
		"PARTIAL":      {"Partial", RoleMedium},
		"INSUFFICIENT": {"Insufficient", RoleHigh},
	}}

	Regulatory = Family{name: "regulatory", table: map[string]entry{
		"SAR_REQUIRED":        {"SAR FILING WITH COAF MANDATORY", RoleCritical},
		"ENHANCED_MONITORING": {"Enhanced Monitoring", RoleMedium},
		"STANDARD":            {"Standard Procedure", RoleLow},
	}}

	Reserves = Family{name: "reserves", table: map[string]entry{
		"TRANSPARENT":      {"Transparent", RoleLow},
		"PARTIALLY_OPAQUE": {"Partially Opaque", RoleMedium},
		"OPAQUE":           {"Opaque", RoleHigh},
		"UNTRACEABLE":      {"Untraceable", RoleCritical},
	}}

	Recommendation = Family{name: "recommendation", table: map[string]entry{
		"APPROVE": {"APPROVE", RoleLow},
		"REVIEW":  {"MANUAL REVIEW (EDD)", RoleMedium},
		"BLOCK":   {"BLOCK TRANSACTION", RoleHigh},
	}}
)

// Families lists every enum family.
var Families = []Family{Risk, KYC, AML, Regulatory, Reserves, Recommendation}

// PriorityRole buckets a regulatory priority code into three tiers.
func PriorityRole(priority string) Role {
	switch priority {
	case "IMEDIATA", "CRÍTICA", "CRITICA":
		return RoleHigh
	case "ALTA":
		return RoleMedium
	default:
		return RoleNeutral
	}
}

// ImpactRole buckets a traceability impact: below -20 is high severity,
// below zero is caution, anything else is positive.
func ImpactRole(impact float64) Role {
	switch {
	case impact < -20:
		return RoleHigh
	case impact < 0:
		return RoleMedium
	default:
		return RoleLow
	}
}

// ImpactLabel formats impact with an explicit sign.
func ImpactLabel(impact float64) string {
	s := strconv.FormatFloat(impact, 'f', -1, 64)
	if impact >= 0 {
		return "+" + s
	}
	return s
}

// MixerRole colors a mixer count.
func MixerRole(n int) Role {
	if n > 0 {
		return RoleHigh
	}
	return RoleLow
}

// BridgeRole colors a bridge count.
func BridgeRole(n int) Role {
	if n > 0 {
		return RoleMedium
	}
	return RoleLow
}

// HopsRole colors an opaque hop count.
func HopsRole(n int) Role {
	if n >= 3 {
		return RoleHigh
	}
	return RoleNeutral
}

// DocumentToken labels a KYC document request.
func DocumentToken(required bool) Token {
	if required {
		return Token{Label: "MANDATORY", Role: RoleHigh, Mapped: true}
	}
	return Token{Label: "Recommended", Role: RoleNeutral, Mapped: true}
}
