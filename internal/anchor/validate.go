package anchor

import (
	"fmt"
	"strings"

	"github.com/hexops/gotextdiff"
	"github.com/hexops/gotextdiff/myers"
	"github.com/hexops/gotextdiff/span"

	"github.com/xonecas/hashedit/internal/hashline"
)

// Mismatch describes one anchor whose token no longer matches the current
// content of its line.
type Mismatch struct {
	Anchor  Anchor
	Current string // token computed from the current file
	Content string // current line content
}

// MismatchError is raised when one or more anchors in a batch have
// drifted from the file's current content. It carries enough context for
// a caller to show the model exactly what changed.
type MismatchError struct {
	Lines      []string // current canonical file lines, for windowed display
	Mismatches []Mismatch
	// PreviousContent and CurrentContent, when both are non-empty, add a
	// unified-diff hunk to Error() showing what changed since the anchors
	// were produced. ValidateBatch leaves both empty.
	PreviousContent string
	CurrentContent  string
}

func (e *MismatchError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d line(s) have changed since last read\n", len(e.Mismatches))

	for _, m := range e.Mismatches {
		lo := m.Anchor.Line - 2
		if lo < 1 {
			lo = 1
		}
		hi := m.Anchor.Line + 2
		if hi > len(e.Lines) {
			hi = len(e.Lines)
		}
		for ln := lo; ln <= hi; ln++ {
			marker := "   "
			content := e.Lines[ln-1]
			token := hashline.Token(ln, content)
			if ln == m.Anchor.Line {
				marker = ">>>"
			}
			fmt.Fprintf(&b, "%s%d#%s|%s\n", marker, ln, token, content)
		}
	}

	remap := RemapTable(e.Mismatches)
	if len(remap) > 0 {
		b.WriteString("remap:")
		for oldTok, newTok := range remap {
			fmt.Fprintf(&b, " %s->%s", oldTok, newTok)
		}
		b.WriteString("\n")
	}

	if e.PreviousContent != "" && e.CurrentContent != "" {
		if hunk := unifiedDiff(e.PreviousContent, e.CurrentContent); hunk != "" {
			b.WriteString(hunk)
		}
	}

	return b.String()
}

// RemapTable maps each stale token to the token that now identifies the
// same line number, so a caller can mechanically substitute anchors in a
// retried batch.
func RemapTable(mismatches []Mismatch) map[string]string {
	table := make(map[string]string, len(mismatches))
	for _, m := range mismatches {
		table[m.Anchor.Token] = m.Current
	}
	return table
}

func unifiedDiff(before, after string) string {
	edits := myers.ComputeEdits(span.URIFromPath("file"), before, after)
	if len(edits) == 0 {
		return ""
	}
	return fmt.Sprint(gotextdiff.ToUnified("before", "after", before, edits))
}

// Validate checks a single anchor against the current canonical lines. It
// returns a bounds error if the line number is out of range, or a stale-
// anchor error naming the current token and content when the token no
// longer matches, with a "Did you mean" hint appended when the token
// matches some other line.
func Validate(a Anchor, lines []string) error {
	if a.Line < 1 || a.Line > len(lines) {
		return fmt.Errorf("line %d out of range (file has %d lines)", a.Line, len(lines))
	}
	content := lines[a.Line-1]
	current := hashline.Token(a.Line, content)
	if current != a.Token {
		err := fmt.Errorf("anchor %s stale: line %d now hashes to %s (content: %q)", a, a.Line, current, content)
		if suggestion := suggest(a.Token, lines); suggestion != "" {
			err = fmt.Errorf("%w. %s", err, suggestion)
		}
		return err
	}
	return nil
}

// ValidateBatch validates every anchor against lines and, if any fail due
// to a stale token (not an out-of-range line), collects them into a
// single *MismatchError rather than failing on the first one — so the
// caller sees every drifted anchor in one diagnostic.
func ValidateBatch(anchors []Anchor, lines []string) error {
	var mismatches []Mismatch
	for _, a := range anchors {
		if a.Line < 1 || a.Line > len(lines) {
			return fmt.Errorf("line %d out of range (file has %d lines)", a.Line, len(lines))
		}
		content := lines[a.Line-1]
		current := hashline.Token(a.Line, content)
		if current != a.Token {
			mismatches = append(mismatches, Mismatch{Anchor: a, Current: current, Content: content})
		}
	}
	if len(mismatches) > 0 {
		return &MismatchError{Lines: lines, Mismatches: mismatches}
	}
	return nil
}

// ValidateRange checks that start and end anchors are both valid and that
// start does not come after end.
func ValidateRange(start, end Anchor, lines []string) error {
	if err := Validate(start, lines); err != nil {
		return fmt.Errorf("start anchor: %w", err)
	}
	if err := Validate(end, lines); err != nil {
		return fmt.Errorf("end anchor: %w", err)
	}
	if start.Line > end.Line {
		return fmt.Errorf("start line %d is after end line %d", start.Line, end.Line)
	}
	return nil
}

// suggest looks for a "Did you mean" hint: does token match some other
// line in the current file?
func suggest(token string, lines []string) string {
	for i, content := range lines {
		line := i + 1
		if hashline.Token(line, content) == token {
			return fmt.Sprintf("Did you mean %q?", fmt.Sprintf("%d#%s", line, token))
		}
	}
	return ""
}
