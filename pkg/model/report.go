// Package model is the typed representation of a screening payload: the
// risk report plus the optional compliance bundle. Values are built once by
// Decode and never mutated afterwards.
package model

import (
	"github.com/go-json-experiment/json/jsontext"

	"github.com/amlscreen/amlreport/pkg/jsonutil"
)

// Risk levels and recommendation codes used by the screening engine.
const (
	LevelLow      = "LOW"
	LevelMedium   = "MEDIUM"
	LevelHigh     = "HIGH"
	LevelCritical = "CRITICAL"

	RecommendApprove = "APPROVE"
	RecommendReview  = "REVIEW"
	RecommendBlock   = "BLOCK"
)

// Report is the screening outcome for one wallet.
type Report struct {
	ID         string               `json:"id,omitempty"`
	Timestamp  string               `json:"timestamp,omitempty"`
	Input      Input                `json:"input"`
	Decision   Decision             `json:"decision"`
	Findings   []Finding            `json:"findings"`
	Defi       Option[DefiAnalysis] `json:"defiAnalysis,omitzero"`
	Sources    Sources              `json:"sources,omitzero"`
	Disclaimer string               `json:"disclaimer,omitempty"`
}

// Input identifies the screened wallet.
type Input struct {
	Chain   string `json:"chain"`
	Address string `json:"address"`
}

// Decision is the aggregated risk verdict.
type Decision struct {
	Level          string  `json:"level"`
	Score          float64 `json:"score"`
	Recommendation string  `json:"recommendation"`
	Summary        string  `json:"summary,omitempty"`
}

// Finding is one evidentiary risk indicator. Findings keep input order.
type Finding struct {
	Source   string `json:"source"`
	Severity string `json:"severity"`
	Detail   string `json:"detail"`
	Category string `json:"category,omitempty"`
}

// Validate checks the report invariants that decoding cannot express.
func (r Report) Validate() error {
	switch {
	case r.Input.Chain == "":
		return required("report.input.chain")
	case r.Input.Address == "":
		return required("report.input.address")
	case r.Decision.Level == "":
		return required("report.decision.level")
	case r.Decision.Recommendation == "":
		return required("report.decision.recommendation")
	case r.Decision.Score < 0 || r.Decision.Score > 100:
		return &FieldError{Path: "report.decision.score", Reason: "must be within [0,100]"}
	}
	return nil
}

// Payload is a decoded input document.
type Payload struct {
	Report     Report     `json:"report"`
	Compliance Compliance `json:"compliance"`

	raw jsontext.Value
}

// RawReport returns the report member exactly as received. It is nil for
// payloads built in code rather than decoded.
func (p *Payload) RawReport() jsontext.Value { return p.raw }

// Sources lists the screening providers in input order.
type Sources []Source

// Source is one provider entry of report.sources.
type Source struct {
	Name    string
	Enabled bool
	Error   string
	Data    jsonutil.Object
	Raw     jsontext.Value
}

// Lookup returns the named source.
func (s Sources) Lookup(name string) (Source, bool) {
	for _, src := range s {
		if src.Name == name {
			return src, true
		}
	}
	return Source{}, false
}

// IsObject reports whether the provider entry was a JSON object.
func (s Source) IsObject() bool { return s.Raw.Kind() == '{' }

// UnmarshalJSON implements json.Unmarshaler.
func (s *Sources) UnmarshalJSON(data []byte) error {
	var obj jsonutil.Object
	if err := jsonutil.Unmarshal(data, &obj); err != nil {
		return err
	}
	out := make(Sources, 0, obj.Len())
	for _, name := range obj.Keys() {
		raw, _ := obj.Get(name)
		out = append(out, newSource(name, raw))
	}
	*s = out
	return nil
}

// MarshalJSON implements json.Marshaler.
func (s Sources) MarshalJSON() ([]byte, error) {
	var obj jsonutil.Object
	for _, src := range s {
		raw := src.Raw
		if len(raw) == 0 {
			raw = jsontext.Value("null")
		}
		obj.Set(src.Name, raw)
	}
	return obj.MarshalJSON()
}

func newSource(name string, raw jsontext.Value) Source {
	src := Source{Name: name, Raw: raw}
	if raw.Kind() != '{' {
		src.Enabled = !jsonutil.IsNull(raw) && raw.Kind() != 'f'
		return src
	}
	var obj jsonutil.Object
	if err := jsonutil.Unmarshal(raw, &obj); err != nil {
		return src
	}
	enabled, _ := obj.Get("enabled")
	src.Enabled = jsonutil.IsNull(enabled) || enabled.Kind() != 'f'
	src.Error = obj.String("error", "")
	if data, ok := obj.Get("data"); ok && data.Kind() == '{' {
		_ = jsonutil.Unmarshal(data, &src.Data)
	}
	return src
}
