// Package compliance derives a compliance bundle from a bare screening
// report: due-diligence tier, monitoring coverage, regulatory obligations,
// audit trail, on-chain monitoring plan and a traceability score.
//
// Derivation is deterministic: the same report always yields the same
// bundle, including the integrity hash.
package compliance

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/go-json-experiment/json/jsontext"
	"github.com/spaolacci/murmur3"

	"github.com/amlscreen/amlreport/pkg/defaults"
	"github.com/amlscreen/amlreport/pkg/jsonutil"
	"github.com/amlscreen/amlreport/pkg/model"
)

// Actor recorded on every derived audit entry.
const Actor = "SYSTEM"

// RetentionPolicy is the record-keeping period stated on the audit trail.
const RetentionPolicy = "Minimum 5 years (Law 9.613/1998)"

// Assess derives every compliance sub-record for p.Report.
func Assess(p *model.Payload) model.Compliance {
	r := p.Report
	defi, _ := r.Defi.Get()
	return model.Compliance{
		KYC:        model.Some(KYC(r.Decision.Level, r.Findings, defi)),
		AMLKYT:     model.Some(AMLKYT(r)),
		Regulatory: model.Some(Regulatory(r.Decision.Level, r.Findings)),
		OnChain:    model.Some(OnChain(r)),
		Reserves:   model.Some(Reserves(r)),
		Audit:      model.Some(Audit(r, ReportHash(p))),
	}
}

// Fill returns p's bundle with every absent sub-record derived. Supplied
// sub-records are kept as they are.
func Fill(p *model.Payload) model.Compliance {
	c := p.Compliance
	d := Assess(p)
	if !c.KYC.Present() {
		c.KYC = d.KYC
	}
	if !c.AMLKYT.Present() {
		c.AMLKYT = d.AMLKYT
	}
	if !c.Regulatory.Present() {
		c.Regulatory = d.Regulatory
	}
	if !c.OnChain.Present() {
		c.OnChain = d.OnChain
	}
	if !c.Reserves.Present() {
		c.Reserves = d.Reserves
	}
	if !c.Audit.Present() {
		c.Audit = d.Audit
	}
	return c
}

// ReportHash returns 16 hex digits of murmur3-64 over the canonical JSON of
// the report. Payloads built in code are hashed from their encoding.
func ReportHash(p *model.Payload) string {
	raw := []byte(p.RawReport())
	if len(raw) == 0 {
		b, err := jsonutil.Marshal(p.Report)
		if err != nil {
			return strings.Repeat("0", 16)
		}
		raw = b
	}
	if c, err := jsonutil.Canonical(raw); err == nil {
		raw = c
	}
	return fmt.Sprintf("%016x", murmur3.Sum64(raw))
}

// =============================================================================
// KYC
// =============================================================================

// KYC statuses.
const (
	KYCBlock    = "MANDATORY_BLOCK"
	KYCEDD      = "MANDATORY_EDD"
	KYCCDDPlus  = "REQUIRED_CDD_PLUS"
	KYCStandard = "STANDARD"
)

// KYC selects the due-diligence tier for a risk level.
func KYC(level string, findings []model.Finding, defi model.DefiAnalysis) model.KYC {
	var k model.KYC
	switch level {
	case model.LevelCritical:
		k.Status = KYCBlock
		k.Requirement = "Enhanced Due Diligence (EDD) + Suspicious Activity Report (SAR)"
		k.Actions = []string{
			"BLOCK the transaction immediately",
			"File a SAR with COAF (suspicious operation report)",
			"Preserve all documentation for the authorities",
			"Do not alert the customer about the investigation (tipping-off)",
			"Escalate to the Compliance Officer for the final decision",
		}
	case model.LevelHigh:
		k.Status = KYCEDD
		k.Requirement = "Enhanced Due Diligence (EDD)"
		k.Actions = []string{
			"Request full documentation: ID + proof of address + source of funds",
			"Verify identity through a KYC provider (Onfido, Jumio, SumSub)",
			"Require a signed declaration of the origin of funds",
			"Check PEP (Politically Exposed Person) status and sanctions lists",
			"Manual review by the Compliance Officer before proceeding",
			"Document the decision and its rationale (audit trail)",
		}
	case model.LevelMedium:
		k.Status = KYCCDDPlus
		k.Requirement = "Enhanced Customer Due Diligence (CDD)"
		k.Actions = []string{
			"Request ID and proof of address",
			"Check consistency of the information provided",
			"Request the invoice or contract for the operation",
			"Continuous monitoring for 90 days",
		}
	default:
		k.Status = KYCStandard
		k.Requirement = "Standard Customer Due Diligence (CDD)"
		k.Actions = []string{
			"Basic identity verification (ID + selfie)",
			"Record the operation in the internal system",
			"Standard monitoring",
		}
	}

	mixer := defi.MixerUsed()
	if mixer {
		k.Actions = append([]string{"MIXER DETECTED: require a detailed explanation of the origin of funds"}, k.Actions...)
	}
	if defi.BridgeUsed() {
		k.Actions = append(k.Actions, "Request a full cross-chain trace (origin and destination hashes)")
	}

	k.Documents = documents(level, mixer)
	for _, f := range findings {
		k.RiskFactors = append(k.RiskFactors, fmt.Sprintf("[%s] %s: %s", f.Severity, f.Source, f.Detail))
	}
	return k
}

func documents(level string, mixer bool) []model.Document {
	docs := []model.Document{
		{Name: "Identity document (ID card / driver's license / passport)", Required: true},
		{Name: "Proof of address (last 3 months)", Required: true},
	}
	if level != model.LevelLow {
		docs = append(docs,
			model.Document{Name: "Proof of income / tax return", Required: level != model.LevelMedium},
			model.Document{Name: "Invoice / contract for the operation", Required: true},
		)
	}
	if level == model.LevelHigh || level == model.LevelCritical {
		docs = append(docs,
			model.Document{Name: "Signed declaration of origin of funds", Required: true},
			model.Document{Name: "Bank statements (last 6 months)", Required: true},
			model.Document{Name: "Hash/TXID of the originating transactions", Required: true},
			model.Document{Name: "Articles of incorporation (legal entities)", Required: false},
		)
	}
	if mixer {
		docs = append(docs,
			model.Document{Name: "Written justification for the mixer usage", Required: true},
			model.Document{Name: "Full trace of the transaction chain", Required: true},
		)
	}
	return docs
}

// =============================================================================
// AML/KYT
// =============================================================================

// AML/KYT statuses.
const (
	AMLActive       = "ACTIVE"
	AMLPartial      = "PARTIAL"
	AMLInsufficient = "INSUFFICIENT"
)

// Provider is one screening source counted towards coverage.
type Provider struct {
	Key  string
	Name string
}

// Providers are the sources coverage is measured against, in display order.
var Providers = []Provider{
	{Key: "ofac", Name: "OFAC/SDN (Sanctions)"},
	{Key: "explorer", Name: "Blockchain Explorer (On-Chain)"},
	{Key: "heuristics", Name: "Behavioral Heuristics"},
	{Key: "chainabuse", Name: "Chainabuse (Scam Reports)"},
	{Key: "blocksec", Name: "Blocksec/MetaSleuth (Risk Score)"},
	{Key: "defiAnalysis", Name: "DeFi Protocol Analysis"},
}

// providerActive reports whether a provider took part in the screening.
// The DeFi analysis also counts when it was embedded in the report.
func providerActive(r model.Report, key string) bool {
	if src, ok := r.Sources.Lookup(key); ok && (src.IsObject() || src.Enabled) {
		return src.Enabled
	}
	return key == "defiAnalysis" && r.Defi.Present()
}

// AMLKYT measures provider coverage.
func AMLKYT(r model.Report) model.AMLKYT {
	a := model.AMLKYT{
		ScreeningType: "Automated Real-Time Screening",
		Frequency:     "Per-transaction (on-demand)",
	}
	for _, p := range Providers {
		if providerActive(r, p.Key) {
			a.ActiveProviders = append(a.ActiveProviders, p.Name)
		} else {
			a.InactiveProviders = append(a.InactiveProviders, p.Name)
		}
	}

	coverage := math.Round(float64(len(a.ActiveProviders)) / float64(len(Providers)) * 100)
	a.CoveragePercent = coverage
	switch {
	case coverage >= 80:
		a.Status = AMLActive
	case coverage >= 50:
		a.Status = AMLPartial
	default:
		a.Status = AMLInsufficient
	}

	pct := strconv.FormatFloat(coverage, 'f', -1, 64)
	if coverage < 80 {
		a.Recommendation = fmt.Sprintf("Coverage of %s%%. Enabling is recommended for: %s", pct, strings.Join(a.InactiveProviders, ", "))
	} else {
		a.Recommendation = fmt.Sprintf("Coverage of %s%%. The system operates with an adequate level of sources.", pct)
	}
	return a
}

// =============================================================================
// REGULATORY COOPERATION
// =============================================================================

// Regulatory statuses.
const (
	RegulatorySAR      = "SAR_REQUIRED"
	RegulatoryEnhanced = "ENHANCED_MONITORING"
	RegulatoryStandard = "STANDARD"
)

// Obligation priority codes, as used by the regulator-facing workflow.
const (
	PriorityImmediate = "IMEDIATA"
	PriorityHigh      = "ALTA"
	PriorityStandard  = "PADRÃO"
	PriorityCritical  = "CRÍTICA"
)

// Jurisdictions lists the regimes every report is assessed under.
var Jurisdictions = []string{"Brazil (BACEN/COAF)", "USA (OFAC/FinCEN)", "International (FATF/GAFI)"}

// Regulatory lists obligations for a risk level.
func Regulatory(level string, findings []model.Finding) model.Regulatory {
	var obs []model.Obligation
	if level == model.LevelCritical {
		obs = append(obs,
			model.Obligation{
				Regulation: "Circular BACEN 3.978/2020",
				Action:     "Mandatory report to COAF (SISCOAF)",
				Deadline:   "24 hours",
				Priority:   PriorityImmediate,
			},
			model.Obligation{
				Regulation: "FATF Recommendation 20",
				Action:     "Suspicious Transaction Report (STR)",
				Deadline:   "Immediately",
				Priority:   PriorityImmediate,
			},
		)
	}
	if level == model.LevelHigh || level == model.LevelCritical {
		obs = append(obs,
			model.Obligation{
				Regulation: "Law 9.613/1998 (Anti-Money Laundering Law)",
				Action:     "Keep records for at least 5 years",
				Deadline:   "Ongoing",
				Priority:   PriorityHigh,
			},
			model.Obligation{
				Regulation: "CVM Instruction 617/2019",
				Action:     "Enhanced due diligence and continuous monitoring",
				Deadline:   "Before proceeding with the operation",
				Priority:   PriorityHigh,
			},
		)
	}
	obs = append(obs, model.Obligation{
		Regulation: "Circular BACEN 3.978/2020",
		Action:     "Register and maintain the customer record",
		Deadline:   "Ongoing",
		Priority:   PriorityStandard,
	})
	if mixerFinding(findings) {
		obs = append(obs, model.Obligation{
			Regulation: "OFAC Compliance",
			Action:     "Check whether the mixer is on the SDN List (Tornado Cash is sanctioned)",
			Deadline:   "Before the operation",
			Priority:   PriorityCritical,
		})
	}

	status := RegulatoryStandard
	switch level {
	case model.LevelCritical:
		status = RegulatorySAR
	case model.LevelHigh:
		status = RegulatoryEnhanced
	}
	return model.Regulatory{
		Status:        status,
		Obligations:   obs,
		Jurisdictions: append([]string(nil), Jurisdictions...),
	}
}

func mixerFinding(findings []model.Finding) bool {
	for _, f := range findings {
		if f.Category == "mixer" || strings.Contains(strings.ToLower(f.Detail), "mixer") {
			return true
		}
	}
	return false
}

// =============================================================================
// AUDIT TRAIL
// =============================================================================

// Audit records the screening steps in occurrence order. Every entry carries
// the report timestamp.
func Audit(r model.Report, hash string) model.AuditTrail {
	ts := r.Timestamp
	entry := func(action, detail string) model.AuditEntry {
		return model.AuditEntry{Timestamp: ts, Action: action, Detail: detail, Actor: Actor}
	}

	entries := []model.AuditEntry{
		entry("SCREENING_INITIATED", fmt.Sprintf("Screening started for %s:%s", strings.ToUpper(r.Input.Chain), r.Input.Address)),
	}
	for _, src := range r.Sources {
		if !src.IsObject() {
			continue
		}
		status := "OK"
		if !src.Enabled {
			status = defaults.NotAvailable
		}
		detail := fmt.Sprintf("Source '%s' queried. Status: %s", src.Name, status)
		if src.Error != "" {
			detail += " (Error: " + src.Error + ")"
		}
		entries = append(entries, entry("SOURCE_QUERIED", detail))
	}
	if d, ok := r.Defi.Get(); ok {
		entries = append(entries, entry("DEFI_ANALYSIS", fmt.Sprintf("DeFi analysis: Mixer=%t, Bridge=%t, DEX=%t, Hops=%d",
			d.MixerUsed(), d.BridgeUsed(), d.DexUsed(), d.OpaqueHops)))
	}
	entries = append(entries,
		entry("RISK_CALCULATED", fmt.Sprintf("Level: %s, Score: %s/100, Recommendation: %s",
			r.Decision.Level, strconv.FormatFloat(r.Decision.Score, 'f', -1, 64), r.Decision.Recommendation)),
		entry("REPORT_GENERATED", fmt.Sprintf("Report ID %s generated with %d finding(s).", orNA(r.ID), len(r.Findings))),
		entry("INTEGRITY_HASH", "MURMUR3-64: "+hash),
	)
	return model.AuditTrail{
		Entries:         entries,
		ReportHash:      hash,
		RetentionPolicy: RetentionPolicy,
		Immutable:       true,
	}
}

// =============================================================================
// ON-CHAIN MONITORING
// =============================================================================

// metricSpec maps a monitoring metric to its explorer field and fallback.
type metricSpec struct {
	key, field string
	fallback   jsontext.Value
}

var (
	zero = jsontext.Value("0")
	na   = jsontext.Value(`"` + defaults.NotAvailable + `"`)
)

var metricSpecs = []metricSpec{
	{"balance", "balance", na},
	{"totalTransactions", "txCount", zero},
	{"tokenTransactions", "tokenTxCount", zero},
	{"stablecoinTransactions", "stablecoinTxCount", zero},
	{"firstActivity", "firstTransaction", na},
	{"lastActivity", "lastTransaction", na},
	{"uniqueCounterparties", "uniqueCounterparties", na},
	{"contractInteractions", "contractInteractions", zero},
}

// MonitoringFrequency is the recommended review cadence by tier.
const MonitoringFrequency = "Daily for HIGH/CRITICAL, weekly for MEDIUM, monthly for LOW"

// MonitoringAlerts are the recommended alert triggers.
var MonitoringAlerts = []string{
	"Sudden change in transaction pattern",
	"New interaction with a mixer or privacy protocol",
	"Funds received from a sanctioned address",
	"Abnormal transaction volume",
}

// OnChain builds wallet metrics from the explorer source, the DeFi exposure
// summary and the continuous-monitoring plan.
func OnChain(r model.Report) model.OnChainMonitoring {
	var explorer jsonutil.Object
	if src, ok := r.Sources.Lookup("explorer"); ok {
		explorer = src.Data
	}

	var m model.OnChainMonitoring
	for _, spec := range metricSpecs {
		v, _ := explorer.Get(spec.field)
		if !truthy(v) {
			v = spec.fallback
		}
		m.Metrics.Set(spec.key, v)
	}

	if d, ok := r.Defi.Get(); ok {
		pattern := d.Pattern()
		if pattern == "" {
			pattern = model.NoPattern
		}
		m.DefiExposure = model.Some(model.DefiAnalysis{
			Mixers:     model.Count(d.Mixers.Len()),
			Bridges:    model.Count(d.Bridges.Len()),
			Dex:        model.Count(d.Dex.Len()),
			OpaqueHops: d.OpaqueHops,
			Summary: model.DefiSummary{
				UsedMixer:          d.MixerUsed(),
				UsedBridge:         d.BridgeUsed(),
				UsedDex:            d.DexUsed(),
				SuspiciousPattern:  !model.IsNoPattern(pattern),
				PatternDescription: pattern,
			},
		})
	}

	if src, ok := r.Sources.Lookup("heuristics"); ok && src.IsObject() {
		var h jsonutil.Object
		if err := jsonutil.Unmarshal(src.Raw, &h); err == nil {
			_ = h.Decode("flags", &m.HeuristicFlags)
			m.HeuristicScore, _ = h.Number("score")
		}
	}

	m.Continuous = model.Some(model.ContinuousMonitoring{
		Recommended: true,
		Frequency:   MonitoringFrequency,
		Alerts:      append([]string(nil), MonitoringAlerts...),
	})
	return m
}

// truthy reports whether v is present and not null, false, zero or "".
func truthy(v jsontext.Value) bool {
	if jsonutil.IsNull(v) {
		return false
	}
	switch v.Kind() {
	case 'f':
		return false
	case '0':
		f, _ := jsonutil.Number(v)
		return f != 0
	case '"':
		return jsonutil.Text(v, "") != ""
	}
	return true
}

// =============================================================================
// PROOF OF RESERVES
// =============================================================================

// Reserve statuses.
const (
	ReservesTransparent = "TRANSPARENT"
	ReservesPartial     = "PARTIALLY_OPAQUE"
	ReservesOpaque      = "OPAQUE"
	ReservesUntraceable = "UNTRACEABLE"
)

// Reserves scores fund traceability. The score starts at 100 and each
// obfuscation factor subtracts from it, floored at zero.
func Reserves(r model.Report) model.ProofOfReserves {
	defi, _ := r.Defi.Get()
	score := 100.0
	var factors []model.Factor
	penalize := func(impact float64, factor, detail string) {
		score += impact
		factors = append(factors, model.Factor{Factor: factor, Impact: impact, Detail: detail})
	}

	if defi.MixerUsed() {
		penalize(-50, "Mixer/tumbler usage",
			"Funds went through an obfuscation service. Traceability severely compromised.")
	}
	if defi.BridgeUsed() {
		penalize(-15, "Cross-chain bridge usage",
			"Funds crossed chains. Tracing requires multi-chain analysis.")
	}
	if hops := defi.OpaqueHops; hops >= 3 {
		penalize(-float64(min(25, hops*5)), fmt.Sprintf("%d opaque hops", hops),
			"Multiple intermediaries between the origin and destination of funds.")
	}
	if src, ok := r.Sources.Lookup("explorer"); ok {
		if n, ok := src.Data.Number("txCount"); ok && n < 5 {
			penalize(-10, "Limited history",
				"Few transactions. A behavioral pattern cannot be established.")
		}
	}
	score = max(0, score)

	p := model.ProofOfReserves{Score: score, Factors: factors}
	switch {
	case score >= 80:
		p.Status = ReservesTransparent
		p.FundTraceability = "High: origin of funds traceable on-chain"
	case score >= 50:
		p.Status = ReservesPartial
		p.FundTraceability = "Partial: part of the funds path is opaque"
	case score >= 20:
		p.Status = ReservesOpaque
		p.FundTraceability = "Low: multiple obfuscation layers detected"
	default:
		p.Status = ReservesUntraceable
		p.FundTraceability = "None: funds went through mixer(s). Origin untraceable."
	}
	if score < 50 {
		p.Recommendation = "Require documentary proof of the origin of funds (statements, contracts, invoices)."
	} else {
		p.Recommendation = "On-chain tracing is sufficient for standard diligence."
	}
	return p
}

func orNA(s string) string {
	if s == "" {
		return defaults.NotAvailable
	}
	return s
}
