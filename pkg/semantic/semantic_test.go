package semantic

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRiskFamily(t *testing.T) {
	tests := []struct {
		raw  string
		role Role
	}{
		{"LOW", RoleLow},
		{"MEDIUM", RoleMedium},
		{"HIGH", RoleHigh},
		{"CRITICAL", RoleCritical},
	}
	for _, tt := range tests {
		tok := Risk.Map(tt.raw)
		assert.Equal(t, tt.raw, tok.Label)
		assert.Equal(t, tt.role, tok.Role)
		assert.True(t, tok.Mapped)
	}
}

func TestRecommendationPhrases(t *testing.T) {
	assert.Equal(t, Token{"APPROVE", RoleLow, true}, Recommendation.Map("APPROVE"))
	assert.Equal(t, Token{"MANUAL REVIEW (EDD)", RoleMedium, true}, Recommendation.Map("REVIEW"))
	assert.Equal(t, Token{"BLOCK TRANSACTION", RoleHigh, true}, Recommendation.Map("BLOCK"))
}

func TestStatusFamilies(t *testing.T) {
	assert.Equal(t, RoleCritical, KYC.Map("MANDATORY_BLOCK").Role)
	assert.Equal(t, "MANDATORY_EDD", KYC.Map("MANDATORY_EDD").Label)
	assert.Equal(t, Token{"Partial", RoleMedium, true}, AML.Map("PARTIAL"))
	assert.Equal(t, Token{"SAR FILING WITH COAF MANDATORY", RoleCritical, true}, Regulatory.Map("SAR_REQUIRED"))
	assert.Equal(t, Token{"Untraceable", RoleCritical, true}, Reserves.Map("UNTRACEABLE"))
}

func TestEveryFamilyFallsBackToNeutral(t *testing.T) {
	for _, f := range Families {
		t.Run(f.Name(), func(t *testing.T) {
			tok := f.Map("UNKNOWN_FUTURE_LEVEL")
			assert.Equal(t, "UNKNOWN_FUTURE_LEVEL", tok.Label)
			assert.Equal(t, RoleNeutral, tok.Role)
			assert.False(t, tok.Mapped)

			empty := f.Map("")
			assert.Equal(t, "N/A", empty.Label)
			assert.Equal(t, RoleNeutral, empty.Role)
		})
	}
}

func TestEveryMappedCodeHasValidRole(t *testing.T) {
	for _, f := range Families {
		for _, code := range f.Codes() {
			tok := f.Map(code)
			assert.True(t, tok.Role.Valid(), "%s/%s", f.Name(), code)
			assert.NotEmpty(t, tok.Label)
			assert.Equal(t, tok, f.Map(code), "mapping must be stable")
		}
	}
}

func TestPriorityRole(t *testing.T) {
	assert.Equal(t, RoleHigh, PriorityRole("IMEDIATA"))
	assert.Equal(t, RoleHigh, PriorityRole("CRÍTICA"))
	assert.Equal(t, RoleMedium, PriorityRole("ALTA"))
	assert.Equal(t, RoleNeutral, PriorityRole("PADRÃO"))
	assert.Equal(t, RoleNeutral, PriorityRole(""))
}

func TestImpactBuckets(t *testing.T) {
	assert.Equal(t, RoleHigh, ImpactRole(-50))
	assert.Equal(t, RoleMedium, ImpactRole(-20))
	assert.Equal(t, RoleMedium, ImpactRole(-1))
	assert.Equal(t, RoleLow, ImpactRole(0))
	assert.Equal(t, RoleLow, ImpactRole(15))

	assert.Equal(t, "-50", ImpactLabel(-50))
	assert.Equal(t, "+15", ImpactLabel(15))
	assert.Equal(t, "+0", ImpactLabel(0))
	assert.Equal(t, "-2.5", ImpactLabel(-2.5))
}

func TestExposureRoles(t *testing.T) {
	assert.Equal(t, RoleLow, MixerRole(0))
	assert.Equal(t, RoleHigh, MixerRole(1))
	assert.Equal(t, RoleMedium, BridgeRole(2))
	assert.Equal(t, RoleNeutral, HopsRole(2))
	assert.Equal(t, RoleHigh, HopsRole(3))
}

func TestDocumentToken(t *testing.T) {
	assert.Equal(t, "MANDATORY", DocumentToken(true).Label)
	assert.Equal(t, RoleHigh, DocumentToken(true).Role)
	assert.Equal(t, "Recommended", DocumentToken(false).Label)
}
