package model

import (
	"github.com/go-json-experiment/json/jsontext"

	"github.com/amlscreen/amlreport/pkg/jsonutil"
)

// Compliance is the bundle of independently optional sub-records.
type Compliance struct {
	KYC        Option[KYC]               `json:"kyc,omitzero"`
	AMLKYT     Option[AMLKYT]            `json:"amlKyt,omitzero"`
	Regulatory Option[Regulatory]        `json:"regulatoryCooperation,omitzero"`
	OnChain    Option[OnChainMonitoring] `json:"onChainMonitoring,omitzero"`
	Reserves   Option[ProofOfReserves]   `json:"proofOfReserves,omitzero"`
	Audit      Option[AuditTrail]        `json:"auditTrail,omitzero"`
}

// Empty reports whether no sub-record is present.
func (c Compliance) Empty() bool {
	return !c.KYC.Present() && !c.AMLKYT.Present() && !c.Regulatory.Present() &&
		!c.OnChain.Present() && !c.Reserves.Present() && !c.Audit.Present()
}

// KYC holds the due-diligence tier and its requirements.
type KYC struct {
	Status      string     `json:"status"`
	Requirement string     `json:"requirement"`
	Actions     []string   `json:"actions,omitempty"`
	Documents   []Document `json:"documentsRequired,omitempty"`
	RiskFactors []string   `json:"riskFactors,omitempty"`
}

// Document is one KYC document request.
type Document struct {
	Name     string `json:"name"`
	Required bool   `json:"required"`
}

// AMLKYT describes transaction-monitoring coverage. CoveragePercent is kept
// exactly as supplied.
type AMLKYT struct {
	Status            string   `json:"status"`
	CoveragePercent   float64  `json:"coveragePercent"`
	ActiveProviders   []string `json:"activeProviders,omitempty"`
	InactiveProviders []string `json:"inactiveProviders,omitempty"`
	Recommendation    string   `json:"recommendation,omitempty"`
	ScreeningType     string   `json:"screeningType,omitempty"`
	Frequency         string   `json:"frequency,omitempty"`
}

// Regulatory lists reporting obligations.
type Regulatory struct {
	Status        string       `json:"status"`
	Obligations   []Obligation `json:"obligations,omitempty"`
	Jurisdictions []string     `json:"jurisdictions,omitempty"`
}

// Obligation is one regulatory action with its deadline and priority code.
type Obligation struct {
	Regulation string `json:"regulation"`
	Action     string `json:"action"`
	Deadline   string `json:"deadline"`
	Priority   string `json:"priority"`
}

// OnChainMonitoring holds wallet metrics and the monitoring plan. Metrics
// keep input order.
type OnChainMonitoring struct {
	Metrics        jsonutil.Object              `json:"metrics,omitzero"`
	DefiExposure   Option[DefiAnalysis]         `json:"defiExposure,omitzero"`
	HeuristicFlags []jsontext.Value             `json:"heuristicFlags,omitempty"`
	HeuristicScore float64                      `json:"heuristicScore,omitempty"`
	Continuous     Option[ContinuousMonitoring] `json:"continuousMonitoring,omitzero"`
}

// ContinuousMonitoring is the recommended follow-up monitoring plan.
type ContinuousMonitoring struct {
	Recommended bool     `json:"recommended"`
	Frequency   string   `json:"frequency,omitempty"`
	Alerts      []string `json:"alerts,omitempty"`
}

// ProofOfReserves scores how traceable the funds are.
type ProofOfReserves struct {
	Score            float64  `json:"score"`
	Status           string   `json:"status"`
	FundTraceability string   `json:"fundTraceability,omitempty"`
	Factors          []Factor `json:"factors,omitempty"`
	Recommendation   string   `json:"recommendation,omitempty"`
}

// Factor is a signed contribution to the traceability score.
type Factor struct {
	Factor string  `json:"factor"`
	Impact float64 `json:"impact"`
	Detail string  `json:"detail,omitempty"`
}

// AuditTrail is the append-only record of screening steps.
type AuditTrail struct {
	Entries         []AuditEntry `json:"entries,omitempty"`
	ReportHash      string       `json:"reportHash,omitempty"`
	RetentionPolicy string       `json:"retentionPolicy,omitempty"`
	Immutable       bool         `json:"immutable,omitempty"`
}

// AuditEntry is one audit step, kept in occurrence order.
type AuditEntry struct {
	Timestamp string `json:"timestamp"`
	Action    string `json:"action"`
	Detail    string `json:"detail"`
	Actor     string `json:"actor"`
}
