package model

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
)

// ErrInputShape is the sentinel for every rejected input document.
// Use errors.Is(err, model.ErrInputShape) to detect it and errors.As with
// *FieldError to recover the offending path.
var ErrInputShape = errors.New("input shape")

// FieldError names the required or malformed field that failed a build.
type FieldError struct {
	// Path is a dotted path such as "report.decision.score". Empty for the
	// document root.
	Path   string
	Reason string
}

func (e *FieldError) Error() string {
	if e.Path == "" {
		return "input shape: " + e.Reason
	}
	return fmt.Sprintf("input shape: %s: %s", e.Path, e.Reason)
}

func (e *FieldError) Unwrap() error { return ErrInputShape }

func required(path string) error {
	return &FieldError{Path: path, Reason: "required field is missing"}
}

// shapeError converts a decoding error into a *FieldError rooted at prefix.
func shapeError(prefix string, err error) error {
	var fe *FieldError
	if errors.As(err, &fe) {
		return err
	}

	var ptr string
	var last *json.SemanticError
	for e := err; e != nil; e = errors.Unwrap(e) {
		se, ok := e.(*json.SemanticError)
		if !ok {
			continue
		}
		p := string(se.JSONPointer)
		if !strings.HasPrefix(p, ptr) {
			p = ptr + p
		}
		ptr = p
		last = se
	}
	if last != nil {
		reason := "invalid value"
		switch {
		case last.Err != nil:
			reason = last.Err.Error()
		case last.GoType != nil:
			reason = "expected " + friendlyType(last.GoType.String())
			if last.JSONKind != 0 {
				reason += ", found " + kindName(last.JSONKind)
			}
		}
		return &FieldError{Path: joinPath(prefix, ptr), Reason: reason}
	}

	var syn *jsontext.SyntacticError
	if errors.As(err, &syn) {
		return &FieldError{Path: prefix, Reason: "malformed JSON: " + syn.Err.Error()}
	}
	return &FieldError{Path: prefix, Reason: err.Error()}
}

// joinPath turns a JSON pointer into a dotted path under prefix.
func joinPath(prefix, pointer string) string {
	pointer = strings.TrimPrefix(pointer, "/")
	if pointer == "" {
		return prefix
	}
	pointer = strings.ReplaceAll(pointer, "/", ".")
	pointer = strings.NewReplacer("~1", "/", "~0", "~").Replace(pointer)
	if prefix == "" {
		return pointer
	}
	return prefix + "." + pointer
}

func friendlyType(t string) string {
	switch {
	case strings.HasPrefix(t, "[]"):
		return "array"
	case t == "string":
		return "string"
	case t == "bool":
		return "boolean"
	case strings.HasPrefix(t, "float"), strings.HasPrefix(t, "int"):
		return "number"
	default:
		return "object"
	}
}

func kindName(k jsontext.Kind) string {
	switch k {
	case 'n':
		return "null"
	case 't', 'f':
		return "boolean"
	case '"':
		return "string"
	case '0':
		return "number"
	case '{':
		return "object"
	case '[':
		return "array"
	default:
		return "invalid"
	}
}
