package model

import (
	"fmt"
	"math"
	"strconv"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"

	"github.com/amlscreen/amlreport/pkg/jsonutil"
)

// Canonical "no suspicious pattern" sentinels. A pattern equal to either
// is not shown as an alert.
const (
	NoPattern   = "No suspicious pattern detected"
	NoPatternPT = "Nenhum padrão suspeito detectado"
)

// IsNoPattern reports whether s is empty or a no-pattern sentinel.
func IsNoPattern(s string) bool {
	return s == "" || s == NoPattern || s == NoPatternPT
}

// Interaction is a single mixer, bridge or DEX contact.
type Interaction struct {
	Name      string `json:"name"`
	Type      string `json:"type,omitempty"`
	Risk      string `json:"risk,omitempty"`
	Hash      string `json:"hash,omitempty"`
	Direction string `json:"direction,omitempty"`
}

// CountOrList is an interaction field that arrives either as a list of
// interactions or as a bare count. Both shapes resolve to one Len.
type CountOrList struct {
	n     int
	items []Interaction
	list  bool
}

// Count returns a count-only value.
func Count(n int) CountOrList { return CountOrList{n: n} }

// List returns a value backed by interaction details.
func List(items ...Interaction) CountOrList {
	return CountOrList{items: items, list: true}
}

// Len is the displayed count.
func (c CountOrList) Len() int {
	if c.list {
		return len(c.items)
	}
	return c.n
}

// Items returns the interaction details, nil for count-only values.
func (c CountOrList) Items() []Interaction { return c.items }

// IsList reports whether details are available.
func (c CountOrList) IsList() bool { return c.list }

// MarshalJSON implements json.Marshaler.
func (c CountOrList) MarshalJSON() ([]byte, error) {
	if !c.list {
		return []byte(strconv.Itoa(c.n)), nil
	}
	items := c.items
	if items == nil {
		items = []Interaction{}
	}
	return json.Marshal(items)
}

// UnmarshalJSON implements json.Unmarshaler.
func (c *CountOrList) UnmarshalJSON(data []byte) error {
	v := jsontext.Value(data)
	switch {
	case jsonutil.IsNull(v):
		*c = CountOrList{}
		return nil
	case v.Kind() == '[':
		var items []Interaction
		if err := json.Unmarshal(v, &items); err != nil {
			return err
		}
		*c = List(items...)
		return nil
	case v.Kind() == '0':
		n, err := wholeNumber(v)
		if err != nil {
			return err
		}
		*c = Count(n)
		return nil
	default:
		return fmt.Errorf("expected list or count, found %s", kindName(v.Kind()))
	}
}

func wholeNumber(v jsontext.Value) (int, error) {
	f, ok := jsonutil.Number(v)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("expected number, found %s", kindName(v.Kind()))
	}
	if f < 0 || f != math.Trunc(f) {
		return 0, fmt.Errorf("expected a non-negative whole count, found %s", v)
	}
	return int(f), nil
}

// DefiSummary carries the pattern verdict of a DeFi analysis.
type DefiSummary struct {
	UsedMixer          bool   `json:"usedMixer"`
	UsedBridge         bool   `json:"usedBridge"`
	UsedDex            bool   `json:"usedDex"`
	SuspiciousPattern  bool   `json:"suspiciousPattern"`
	PatternDescription string `json:"patternDescription,omitempty"`
}

// DefiAnalysis describes mixer, bridge and DEX exposure. It accepts both
// the detailed shape (mixerInteractions lists, nested summary) and the
// condensed exposure shape (mixers/bridges/dexSwaps counts, pattern).
type DefiAnalysis struct {
	Mixers     CountOrList `json:"mixerInteractions"`
	Bridges    CountOrList `json:"bridgeInteractions"`
	Dex        CountOrList `json:"dexInteractions"`
	OpaqueHops int         `json:"opaqueHops"`
	Summary    DefiSummary `json:"summary"`
}

// Pattern returns the detected pattern description, if any.
func (d DefiAnalysis) Pattern() string { return d.Summary.PatternDescription }

// MixerUsed reports mixer exposure from either the summary flag or the count.
func (d DefiAnalysis) MixerUsed() bool { return d.Summary.UsedMixer || d.Mixers.Len() > 0 }

// BridgeUsed reports bridge exposure from either the summary flag or the count.
func (d DefiAnalysis) BridgeUsed() bool { return d.Summary.UsedBridge || d.Bridges.Len() > 0 }

// DexUsed reports DEX exposure from either the summary flag or the count.
func (d DefiAnalysis) DexUsed() bool { return d.Summary.UsedDex || d.Dex.Len() > 0 }

// UnmarshalJSON implements json.Unmarshaler.
func (d *DefiAnalysis) UnmarshalJSON(data []byte) error {
	var obj jsonutil.Object
	if err := jsonutil.Unmarshal(data, &obj); err != nil {
		return err
	}
	var out DefiAnalysis
	var err error
	if out.Mixers, err = resolveCount(obj, "mixerInteractions", "mixers"); err != nil {
		return err
	}
	if out.Bridges, err = resolveCount(obj, "bridgeInteractions", "bridges"); err != nil {
		return err
	}
	if out.Dex, err = resolveCount(obj, "dexInteractions", "dexSwaps"); err != nil {
		return err
	}
	hops, err := resolveCount(obj, "opaqueHops", "")
	if err != nil {
		return err
	}
	out.OpaqueHops = hops.Len()

	if raw, ok := obj.Get("summary"); ok && raw.Kind() == '{' {
		if err := json.Unmarshal(raw, &out.Summary); err != nil {
			return fmt.Errorf("summary: %w", err)
		}
	}
	if out.Summary.PatternDescription == "" {
		out.Summary.PatternDescription = obj.String("pattern", "")
	}
	*d = out
	return nil
}

// resolveCount reads key, falling back to alias when key is absent or null.
func resolveCount(obj jsonutil.Object, key, alias string) (CountOrList, error) {
	var c CountOrList
	raw, ok := obj.Get(key)
	if (!ok || jsonutil.IsNull(raw)) && alias != "" {
		key = alias
		raw, ok = obj.Get(alias)
	}
	if !ok {
		return c, nil
	}
	if err := c.UnmarshalJSON(raw); err != nil {
		return c, fmt.Errorf("%s: %w", key, err)
	}
	return c, nil
}
