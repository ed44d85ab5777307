// Package editop promotes raw, possibly-malformed edit requests into a
// closed algebra of typed edits, then normalizes, cleans up, orders,
// deduplicates, and overlap-checks a batch before it reaches application.
package editop

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Op names the three edit shapes the engine accepts.
type Op string

const (
	OpReplace Op = "replace"
	OpAppend  Op = "append"
	OpPrepend Op = "prepend"
)

// ErrLinesAbsent is a sentinel wrapped into errors returned when a
// Replace edit arrives with no "lines" field at all — distinct from an
// explicit null/[] (deletion). internal/engine sends such a Replace to
// the missing-lines diagnostic ladder in internal/repair instead of
// failing the batch with this error directly.
var ErrLinesAbsent = fmt.Errorf("replace requires explicit 'lines' field")

// LinesValue is the decoded form of the wire-level "lines" sum type:
// absent, string, string array, or null.
type LinesValue struct {
	Present bool
	// Values holds the split-on-'\n' lines for a string payload, the
	// array elements for an array payload, or nil for null/empty (both
	// of which mean "delete" once Present is true).
	Values []string
	Raw    string
	wasStr bool
}

// IsDeletion reports whether a present Lines field denotes "delete this
// range" — null, an empty array, or an empty string.
func (l *LinesValue) IsDeletion() bool {
	if l == nil || !l.Present {
		return false
	}
	if l.wasStr {
		return l.Raw == ""
	}
	return len(l.Values) == 0
}

// RawEdit is the wire shape of one edit record as decoded from JSON,
// before normalization.
type RawEdit struct {
	Op    Op
	Pos   string
	End   string
	Lines *LinesValue // nil means the field was absent entirely
}

type rawEditWire struct {
	Op    Op              `json:"op"`
	Pos   string          `json:"pos,omitempty"`
	End   string          `json:"end,omitempty"`
	Lines json.RawMessage `json:"lines,omitempty"`
}

// UnmarshalJSON distinguishes an absent "lines" key from an explicit
// null, which encoding/json's ordinary pointer-to-Unmarshaler handling
// does not reliably do.
func (r *RawEdit) UnmarshalJSON(data []byte) error {
	var w rawEditWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	r.Op = w.Op
	r.Pos = w.Pos
	r.End = w.End
	if w.Lines == nil {
		r.Lines = nil
		return nil
	}
	lv, err := decodeLinesValue(w.Lines)
	if err != nil {
		return err
	}
	r.Lines = lv
	return nil
}

// DecodeLinesValue exposes decodeLinesValue to callers outside this
// package (internal/repair) that synthesize a "lines" payload extracted
// from malformed edit text rather than unmarshaling it from JSON directly.
func DecodeLinesValue(raw json.RawMessage) (*LinesValue, error) {
	return decodeLinesValue(raw)
}

func decodeLinesValue(raw json.RawMessage) (*LinesValue, error) {
	lv := &LinesValue{Present: true}
	trimmed := bytes.TrimSpace(raw)
	if string(trimmed) == "null" {
		return lv, nil
	}
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		lv.Raw = s
		lv.wasStr = true
		lv.Values = strings.Split(s, "\n")
		return lv, nil
	}
	var arr []string
	if err := json.Unmarshal(raw, &arr); err != nil {
		return nil, fmt.Errorf("lines field must be a string, string array, or null: %w", err)
	}
	lv.Values = arr
	return lv, nil
}
