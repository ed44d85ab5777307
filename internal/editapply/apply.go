// Package editapply holds the line-array primitives that turn a single
// normalized editop.Edit into a new set of lines. Each primitive works on
// plain []string and never touches the filesystem.
package editapply

import (
	"fmt"

	"github.com/xonecas/hashedit/internal/anchor"
	"github.com/xonecas/hashedit/internal/editop"
)

// Result reports the outcome of applying one edit.
type Result struct {
	Lines []string
	// NoOp is true when applying the edit produced no change to the line
	// array — e.g. replacing a range with its own content.
	NoOp bool
}

// Apply dispatches e to the primitive matching its Op, validating anchors
// against lines first.
func Apply(e editop.Edit, lines []string) (Result, error) {
	switch e.Op {
	case editop.OpReplace:
		return applyReplace(e, lines)
	case editop.OpAppend:
		return applyAppend(e, lines)
	case editop.OpPrepend:
		return applyPrepend(e, lines)
	default:
		return Result{}, fmt.Errorf("unknown op %q", e.Op)
	}
}

func applyReplace(e editop.Edit, lines []string) (Result, error) {
	start := e.Pos
	end := e.Pos
	if e.HasEnd {
		end = e.End
	}
	if err := anchor.ValidateRange(start, end, lines); err != nil {
		return Result{}, fmt.Errorf("replace: %w", err)
	}

	var payload []string
	if !e.Delete {
		payload = e.Lines
	}

	out := make([]string, 0, len(lines)-((end.Line-start.Line+1))+len(payload))
	out = append(out, lines[:start.Line-1]...)
	out = append(out, payload...)
	out = append(out, lines[end.Line:]...)

	return Result{Lines: out, NoOp: sameSpan(lines[start.Line-1:end.Line], payload)}, nil
}

func applyAppend(e editop.Edit, lines []string) (Result, error) {
	if singleEmptyLine(lines) {
		return Result{Lines: append([]string(nil), e.Lines...)}, nil
	}

	if !e.HasPos {
		out := append(append([]string(nil), lines...), e.Lines...)
		return Result{Lines: out}, nil
	}

	if err := anchor.Validate(e.Pos, lines); err != nil {
		return Result{}, fmt.Errorf("append: %w", err)
	}

	out := make([]string, 0, len(lines)+len(e.Lines))
	out = append(out, lines[:e.Pos.Line]...)
	out = append(out, e.Lines...)
	out = append(out, lines[e.Pos.Line:]...)
	return Result{Lines: out}, nil
}

func applyPrepend(e editop.Edit, lines []string) (Result, error) {
	if singleEmptyLine(lines) {
		return Result{Lines: append([]string(nil), e.Lines...)}, nil
	}

	if !e.HasPos {
		out := append(append([]string(nil), e.Lines...), lines...)
		return Result{Lines: out}, nil
	}

	if err := anchor.Validate(e.Pos, lines); err != nil {
		return Result{}, fmt.Errorf("prepend: %w", err)
	}

	out := make([]string, 0, len(lines)+len(e.Lines))
	out = append(out, lines[:e.Pos.Line-1]...)
	out = append(out, e.Lines...)
	out = append(out, lines[e.Pos.Line-1:]...)
	return Result{Lines: out}, nil
}

// singleEmptyLine reports whether lines represents a brand-new, empty file
// (one blank line from splitting ""). Append/Prepend replace rather than
// bracket that sentinel line with blank neighbors.
func singleEmptyLine(lines []string) bool {
	return len(lines) == 1 && lines[0] == ""
}

func sameSpan(original, payload []string) bool {
	if len(original) != len(payload) {
		return false
	}
	for i := range original {
		if original[i] != payload[i] {
			return false
		}
	}
	return true
}

// ApplyBatch applies already-ordered, deduplicated, overlap-checked edits
// in sequence, threading the line array through each one. Edits must be
// pre-ordered (editop.Order) so earlier anchors in the slice never shift
// out from under later ones.
func ApplyBatch(edits []editop.Edit, lines []string) ([]string, []Result, error) {
	results := make([]Result, 0, len(edits))
	cur := lines
	for i, e := range edits {
		res, err := Apply(e, cur)
		if err != nil {
			return nil, results, fmt.Errorf("edit %d: %w", i, err)
		}
		cur = res.Lines
		results = append(results, res)
	}
	return cur, results, nil
}
