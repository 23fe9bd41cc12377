package sections

import (
	"strconv"
	"strings"

	"github.com/amlscreen/amlreport/pkg/defaults"
	"github.com/amlscreen/amlreport/pkg/document"
	"github.com/amlscreen/amlreport/pkg/model"
	"github.com/amlscreen/amlreport/pkg/semantic"
	"github.com/amlscreen/amlreport/pkg/strutil"
)

// MetricLabels translates on-chain metric keys. Unknown keys show verbatim.
var MetricLabels = map[string]string{
	"balance":                "Balance",
	"totalTransactions":      "Total Txs",
	"tokenTransactions":      "Token Txs",
	"stablecoinTransactions": "Stablecoin Txs",
	"firstActivity":          "First Activity",
	"lastActivity":           "Last Activity",
	"uniqueCounterparties":   "Counterparties",
	"contractInteractions":   "Contract Interactions",
}

// KYC builds the due-diligence section.
func (b *Builder) KYC(k model.KYC) []document.Block {
	status := semantic.KYC.Map(k.Status)
	blocks := []document.Block{
		heading(TitleKYC),
		body(
			document.Strong("Status: "+status.Label, status.Role),
			document.Plain("\nDiligence level: "),
			document.Bold(orNA(k.Requirement)),
		),
	}

	if len(k.Actions) > 0 {
		blocks = append(blocks, subheading("Required actions:"))
		for i, a := range k.Actions {
			blocks = append(blocks, bullet(document.Bold(strconv.Itoa(i+1)+". "), document.Plain(a)))
		}
	}

	if len(k.Documents) > 0 {
		blocks = append(blocks, subheading("Required documents:"))
		rows := make([][]document.RichText, 0, len(k.Documents))
		for _, d := range k.Documents {
			tok := semantic.DocumentToken(d.Required)
			mark := document.Plain(tok.Label)
			if d.Required {
				mark = document.Token(tok)
			}
			rows = append(rows, []document.RichText{cell(document.Plain(d.Name)), cell(mark)})
		}
		blocks = append(blocks, evidenceTable([]document.Column{
			{Title: "Document", Width: 130},
			{Title: "Mandatory", Width: 35},
		}, rows))
	}
	return blocks
}

// AMLKYT builds the monitoring coverage section. Coverage is shown as
// supplied, without clamping.
func (b *Builder) AMLKYT(a model.AMLKYT) []document.Block {
	status := semantic.AML.Map(a.Status)
	blocks := []document.Block{
		heading(TitleAMLKYT),
		body(
			document.Plain("Status: "),
			document.Token(status),
			document.Plain(" — Coverage: "),
			document.Bold(number(a.CoveragePercent)+"%"),
			document.Plain("\nType: "+orNA(a.ScreeningType)+" | Frequency: "+orNA(a.Frequency)),
		),
	}
	if a.Recommendation != "" {
		blocks = append(blocks, body(document.Bold("Recommendation: "), document.Plain(a.Recommendation)))
	}
	if len(a.ActiveProviders) > 0 {
		blocks = append(blocks, subheading("Active sources:"))
		for _, p := range a.ActiveProviders {
			blocks = append(blocks, bullet(document.Colored("• ", semantic.RoleLow), document.Plain(p)))
		}
	}
	if len(a.InactiveProviders) > 0 {
		blocks = append(blocks, subheading("Unconfigured sources:"))
		for _, p := range a.InactiveProviders {
			blocks = append(blocks, bullet(document.Colored("• ", semantic.RoleMuted), document.Plain(p)))
		}
	}
	return blocks
}

// Regulatory builds the obligations section. Priorities are colored in
// three tiers and jurisdictions are joined into one sentence.
func (b *Builder) Regulatory(r model.Regulatory) []document.Block {
	blocks := []document.Block{
		heading(TitleRegulatory),
		body(document.Token(semantic.Regulatory.Map(r.Status))),
	}

	if len(r.Obligations) > 0 {
		rows := make([][]document.RichText, 0, len(r.Obligations))
		for _, o := range r.Obligations {
			rows = append(rows, []document.RichText{
				cell(document.Plain(o.Regulation)),
				cell(document.Plain(o.Action)),
				cell(document.Plain(o.Deadline)),
				cell(document.Strong(o.Priority, semantic.PriorityRole(o.Priority))),
			})
		}
		blocks = append(blocks, evidenceTable([]document.Column{
			{Title: "Regulation", Width: 45},
			{Title: "Action", Width: 65},
			{Title: "Deadline", Width: 25},
			{Title: "Priority", Width: 25},
		}, rows))
	}

	if len(r.Jurisdictions) > 0 {
		blocks = append(blocks,
			document.Spacer{Size: 2},
			small(document.Bold("Applicable jurisdictions: "), document.Plain(strings.Join(r.Jurisdictions, ", "))),
		)
	}
	return blocks
}

// OnChain builds the metrics grid and the monitoring plan. It returns nil
// when there are neither metrics nor continuous-monitoring data.
func (b *Builder) OnChain(m model.OnChainMonitoring) []document.Block {
	cont, hasCont := m.Continuous.Get()
	if m.Metrics.Len() == 0 && !hasCont {
		return nil
	}

	blocks := []document.Block{heading(TitleOnChain)}

	if m.Metrics.Len() > 0 {
		width := b.th.Limits().MetricValueWidth
		keys := m.Metrics.Keys()
		var rows [][]document.RichText
		for i := 0; i < len(keys); i += 2 {
			row := make([]document.RichText, 0, 4)
			for j := 0; j < 2; j++ {
				if i+j >= len(keys) {
					row = append(row, cell(), cell())
					continue
				}
				k := keys[i+j]
				label, ok := MetricLabels[k]
				if !ok {
					label = k
				}
				val := strutil.Cut(m.Metrics.String(k, defaults.NotAvailable), width)
				row = append(row, cell(document.Plain(label)), cell(document.Bold(val)))
			}
			rows = append(rows, row)
		}
		blocks = append(blocks, document.Table{
			Columns: []document.Column{
				{Title: "Metric", Width: 38},
				{Title: "Value", Width: 45},
				{Title: "Metric", Width: 38},
				{Title: "Value", Width: 45},
			},
			Rows:  rows,
			Hints: document.TableHints{Header: document.ShadingLight, Grid: true, Align: document.AlignLeft},
		})
	}

	if hasCont {
		blocks = append(blocks,
			document.Spacer{Size: 2},
			body(document.Bold("Continuous monitoring: "), document.Plain(orNA(cont.Frequency))),
		)
	}
	return blocks
}

// Reserves builds the fund traceability section.
func (b *Builder) Reserves(p model.ProofOfReserves) []document.Block {
	status := semantic.Reserves.Map(p.Status)
	blocks := []document.Block{
		heading(TitleReserves),
		body(
			document.Plain("Transparency score: "),
			document.Strong(number(p.Score)+"/100", status.Role),
			document.Plain(" — Status: "),
			document.Token(status),
		),
		body(document.Bold("Traceability: "), document.Plain(orNA(p.FundTraceability))),
	}

	if len(p.Factors) > 0 {
		blocks = append(blocks, subheading("Impact factors:"))
		for _, f := range p.Factors {
			blocks = append(blocks, bullet(
				document.Bold(f.Factor),
				document.Plain(" ("),
				document.Colored(semantic.ImpactLabel(f.Impact), semantic.ImpactRole(f.Impact)),
				document.Plain("): "+f.Detail),
			))
		}
	}

	if p.Recommendation != "" {
		blocks = append(blocks,
			document.Spacer{Size: 2},
			body(document.Bold("Recommendation: "), document.Plain(p.Recommendation)),
		)
	}
	return blocks
}

// Audit builds the audit trail table with the integrity hash and retention
// policy beneath it. It returns nil when there are no entries and no
// metadata. Entries keep input order.
func (b *Builder) Audit(a model.AuditTrail) []document.Block {
	if len(a.Entries) == 0 && a.ReportHash == "" && a.RetentionPolicy == "" {
		return nil
	}

	blocks := []document.Block{heading(TitleAudit)}

	if len(a.Entries) > 0 {
		width := b.th.Limits().AuditDetailWidth
		rows := make([][]document.RichText, 0, len(a.Entries))
		for _, e := range a.Entries {
			rows = append(rows, []document.RichText{
				cell(document.Plain(e.Action)),
				cell(document.Plain(strutil.Cut(e.Detail, width))),
				cell(document.Plain(e.Actor)),
			})
		}
		tbl := evidenceTable([]document.Column{
			{Title: "Action", Width: 40},
			{Title: "Detail", Width: 105},
			{Title: "Actor", Width: 20},
		}, rows)
		tbl.Hints.Compact = true
		blocks = append(blocks, tbl)
	}

	blocks = append(blocks,
		document.Spacer{Size: 3},
		small(
			document.Bold("Integrity hash: "),
			document.Mono(orNA(a.ReportHash)),
			document.Plain("\n"),
			document.Bold("Retention policy: "),
			document.Plain(orNA(a.RetentionPolicy)),
		),
	)
	return blocks
}
