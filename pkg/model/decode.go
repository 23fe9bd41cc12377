package model

import (
	"bytes"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"

	"github.com/amlscreen/amlreport/pkg/jsonutil"
)

// reportWire distinguishes absent members from zero values so that
// required fields can be reported by name.
type reportWire struct {
	ID         string               `json:"id"`
	Timestamp  string               `json:"timestamp"`
	Input      *Input               `json:"input"`
	Decision   *decisionWire        `json:"decision"`
	Findings   []Finding            `json:"findings"`
	Defi       Option[DefiAnalysis] `json:"defiAnalysis"`
	Sources    Sources              `json:"sources"`
	Disclaimer string               `json:"disclaimer"`
}

type decisionWire struct {
	Level          *string        `json:"level"`
	Score          jsontext.Value `json:"score"`
	Recommendation *string        `json:"recommendation"`
	Summary        string         `json:"summary"`
}

// Decode parses and validates one input document. The document is either
// {"report": {...}, "compliance": {...}} or a bare report object.
// Every failure is a *FieldError wrapping ErrInputShape.
func Decode(data []byte) (*Payload, error) {
	data = bytes.TrimSpace(data)
	if !jsonutil.Valid(data) {
		var probe jsontext.Value
		err := json.Unmarshal(data, &probe)
		if err == nil {
			err = &FieldError{Reason: "malformed JSON"}
		}
		return nil, shapeError("", err)
	}
	if jsontext.Value(data).Kind() != '{' {
		return nil, &FieldError{Reason: "top-level input must be an object"}
	}
	var top jsonutil.Object
	if err := jsonutil.Unmarshal(data, &top); err != nil {
		return nil, shapeError("", err)
	}

	prefix := "report"
	reportRaw, ok := top.Get("report")
	if !ok {
		prefix = ""
		reportRaw = jsontext.Value(data)
	}
	if reportRaw.Kind() != '{' {
		return nil, &FieldError{Path: "report", Reason: "must be an object"}
	}

	r, err := decodeReport(prefix, reportRaw)
	if err != nil {
		return nil, err
	}

	p := &Payload{Report: r, raw: reportRaw}
	if raw, ok := top.Get("compliance"); ok && !jsonutil.IsNull(raw) {
		if raw.Kind() != '{' {
			return nil, &FieldError{Path: "compliance", Reason: "must be an object"}
		}
		if err := json.Unmarshal(raw, &p.Compliance); err != nil {
			return nil, shapeError("compliance", err)
		}
	}
	return p, nil
}

func decodeReport(prefix string, raw jsontext.Value) (Report, error) {
	var w reportWire
	if err := json.Unmarshal(raw, &w); err != nil {
		return Report{}, shapeError(prefix, err)
	}
	if w.Input == nil {
		return Report{}, required(joinPath(prefix, "/input"))
	}
	if w.Decision == nil {
		return Report{}, required(joinPath(prefix, "/decision"))
	}
	d := w.Decision
	if d.Level == nil {
		return Report{}, required(joinPath(prefix, "/decision/level"))
	}
	if d.Recommendation == nil {
		return Report{}, required(joinPath(prefix, "/decision/recommendation"))
	}
	if jsonutil.IsNull(d.Score) {
		return Report{}, required(joinPath(prefix, "/decision/score"))
	}
	if d.Score.Kind() != '0' {
		return Report{}, &FieldError{
			Path:   joinPath(prefix, "/decision/score"),
			Reason: "expected number, found " + kindName(d.Score.Kind()),
		}
	}
	score, _ := jsonutil.Number(d.Score)

	r := Report{
		ID:        w.ID,
		Timestamp: w.Timestamp,
		Input:     *w.Input,
		Decision: Decision{
			Level:          *d.Level,
			Score:          score,
			Recommendation: *d.Recommendation,
			Summary:        d.Summary,
		},
		Findings:   w.Findings,
		Defi:       w.Defi,
		Sources:    w.Sources,
		Disclaimer: w.Disclaimer,
	}
	if err := r.Validate(); err != nil {
		if fe, ok := err.(*FieldError); ok && prefix == "" {
			fe.Path = trimReportPrefix(fe.Path)
		}
		return Report{}, err
	}
	return r, nil
}

func trimReportPrefix(path string) string {
	const p = "report."
	if len(path) > len(p) && path[:len(p)] == p {
		return path[len(p):]
	}
	return path
}
