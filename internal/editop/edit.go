package editop

import (
	"fmt"
	"strings"

	"github.com/xonecas/hashedit/internal/anchor"
)

// Edit is the normalized, typed form of a RawEdit.
type Edit struct {
	Op Op

	HasPos bool
	Pos    anchor.Anchor
	HasEnd bool
	End    anchor.Anchor

	Lines  []string // payload lines; nil when Delete is true
	Delete bool      // Replace-only: an explicit deletion

	// Warnings accumulates cleanup notices surfaced in the eventual
	// Summary (e.g. prefix stripping, echo trimming, indent restoration).
	// "Auto-repaired ..." notices are carried by repair.Repaired instead.
	Warnings []string

	// raw is the RawEdit this Edit was normalized from, returned by Raw().
	raw RawEdit
}

// Raw returns the RawEdit this Edit was normalized from.
func (e Edit) Raw() RawEdit { return e.raw }

// Normalize promotes a raw edit into the closed Edit algebra. Anchor
// strings are parsed via anchor.Parse; Append/Prepend collapse pos/end
// into a single anchor (pos wins); a Replace with no lines field returns
// ErrLinesAbsent wrapped with context, for internal/repair to handle.
func Normalize(raw RawEdit) (Edit, error) {
	e := Edit{Op: raw.Op, raw: raw}

	switch raw.Op {
	case OpReplace:
		return normalizeReplace(raw, e)
	case OpAppend, OpPrepend:
		return normalizeInsert(raw, e)
	default:
		return Edit{}, fmt.Errorf("unknown op %q: must be replace, append, or prepend", raw.Op)
	}
}

func normalizeReplace(raw RawEdit, e Edit) (Edit, error) {
	posText := strings.TrimSpace(raw.Pos)
	endText := strings.TrimSpace(raw.End)
	if posText == "" && endText == "" {
		return Edit{}, fmt.Errorf("replace requires at least one of 'pos' or 'end'")
	}

	if posText != "" {
		a, err := anchor.Parse(posText)
		if err != nil {
			return Edit{}, err
		}
		e.HasPos = true
		e.Pos = a
	}
	if endText != "" {
		a, err := anchor.Parse(endText)
		if err != nil {
			return Edit{}, err
		}
		e.HasEnd = true
		e.End = a
	}
	if !e.HasPos {
		// single anchor given only as 'end' — spec allows pos or end for
		// the lone-anchor case; treat it as the sole anchor point.
		e.HasPos = true
		e.Pos = e.End
		e.HasEnd = false
	}

	if raw.Lines == nil {
		return Edit{}, fmt.Errorf("%w: pos=%q", ErrLinesAbsent, raw.Pos)
	}
	if raw.Lines.IsDeletion() {
		e.Delete = true
		e.Lines = nil
	} else {
		e.Lines = raw.Lines.Values
	}
	return e, nil
}

func normalizeInsert(raw RawEdit, e Edit) (Edit, error) {
	posText := strings.TrimSpace(raw.Pos)
	endText := strings.TrimSpace(raw.End)
	anchorText := posText
	if anchorText == "" {
		anchorText = endText
	}
	if anchorText != "" {
		a, err := anchor.Parse(anchorText)
		if err != nil {
			return Edit{}, err
		}
		e.HasPos = true
		e.Pos = a
	}

	if raw.Lines == nil || raw.Lines.IsDeletion() {
		return Edit{}, fmt.Errorf("%s requires non-empty 'lines'", raw.Op)
	}
	e.Lines = raw.Lines.Values
	return e, nil
}
