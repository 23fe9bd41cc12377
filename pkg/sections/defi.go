package sections

import (
	"strconv"

	"github.com/amlscreen/amlreport/pkg/document"
	"github.com/amlscreen/amlreport/pkg/model"
	"github.com/amlscreen/amlreport/pkg/semantic"
	"github.com/amlscreen/amlreport/pkg/strutil"
)

// PatternLabel prefixes a detected obfuscation pattern.
const PatternLabel = "PATTERN DETECTED:"

// Defi builds the exposure grid, pattern alert and capped detail lists.
func (b *Builder) Defi(d model.DefiAnalysis) []document.Block {
	mixers, bridges, dex, hops := d.Mixers.Len(), d.Bridges.Len(), d.Dex.Len(), d.OpaqueHops

	blocks := []document.Block{
		heading(TitleDefi),
		document.Table{
			Columns: []document.Column{
				{Title: "Mixers", Width: 42},
				{Title: "Bridges", Width: 42},
				{Title: "DEX Swaps", Width: 42},
				{Title: "Opaque Hops", Width: 42},
			},
			Rows: [][]document.RichText{{
				cell(document.Strong(strconv.Itoa(mixers), semantic.MixerRole(mixers))),
				cell(document.Strong(strconv.Itoa(bridges), semantic.BridgeRole(bridges))),
				cell(document.Bold(strconv.Itoa(dex))),
				cell(document.Strong(strconv.Itoa(hops), semantic.HopsRole(hops))),
			}},
			Hints: document.TableHints{Header: document.ShadingLight, Grid: true, Align: document.AlignCenter},
		},
	}

	if p := d.Pattern(); !model.IsNoPattern(p) {
		blocks = append(blocks, document.Spacer{Size: 2}, document.Alert{Label: PatternLabel, Text: p})
	}

	limit := b.th.Limits().MaxInteractionLines
	hashWidth := b.th.Limits().HashPrefixWidth

	if items := capped(d.Mixers.Items(), limit); len(items) > 0 {
		blocks = append(blocks, subheading("Mixer Interactions:"))
		for _, m := range items {
			blocks = append(blocks, bullet(
				document.Bold(nameOrUnknown(m.Name)),
				document.Plain(" — "+m.Direction+" — Hash: "),
				document.Mono(strutil.Abbrev(orNA(m.Hash), hashWidth)),
			))
		}
	}
	if items := capped(d.Bridges.Items(), limit); len(items) > 0 {
		blocks = append(blocks, subheading("Bridge Interactions:"))
		for _, br := range items {
			blocks = append(blocks, bullet(
				document.Bold(nameOrUnknown(br.Name)),
				document.Plain(" — "+br.Direction),
			))
		}
	}
	if items := capped(d.Dex.Items(), limit); len(items) > 0 {
		blocks = append(blocks, subheading("DEX Interactions:"))
		for _, x := range items {
			blocks = append(blocks, bullet(
				document.Bold(nameOrUnknown(x.Name)),
				document.Plain(" — Hash: "),
				document.Mono(strutil.Abbrev(orNA(x.Hash), hashWidth)),
			))
		}
	}
	return blocks
}

func capped(items []model.Interaction, n int) []model.Interaction {
	if len(items) > n {
		return items[:n]
	}
	return items
}

func nameOrUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}

