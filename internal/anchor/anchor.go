// Package anchor parses the noisy "L#HH" anchor tokens a model sends back
// after reading hashline-tagged output, detects drift against the current
// file content, and produces the remapping diagnostics a caller can show
// the model to help it recover.
package anchor

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/xonecas/hashedit/internal/hashline"
)

// Anchor identifies a line by number and the content token observed when
// it was read.
type Anchor struct {
	Line  int
	Token string
}

func (a Anchor) String() string {
	return fmt.Sprintf("%d#%s", a.Line, a.Token)
}

var (
	exactPattern    = regexp.MustCompile(`^(\d+)#([` + hashline.Alphabet + `]{2,})$`)
	substrPattern   = regexp.MustCompile(`(\d+)#([` + hashline.Alphabet + `]{2,})`)
	prefixedPattern = regexp.MustCompile(`^(\D+)#[` + hashline.Alphabet + `]{2,}$`)
)

var leadingMarkers = []string{">>>", ">>", ">", "+", "-"}

// Parse normalizes and strictly parses a single anchor string. It
// tolerates leading diff markers, whitespace around '#', a trailing
// "|content" echo, and hash tokens longer than two characters
// (truncated to the first two). Multi-line input is rejected outright.
func Parse(raw string) (Anchor, error) {
	trimmedOuter := strings.Trim(raw, " \t\r\n")
	lineCount := strings.Count(trimmedOuter, "\n") + 1
	if lineCount > 1 {
		return Anchor{}, fmt.Errorf("anchor %q contains %d lines — must be a single-line anchor (did you paste a whole hashline block?)", raw, lineCount)
	}

	candidate := trimmedOuter
	candidate = stripLeadingMarker(candidate)
	candidate = collapseHashSpacing(candidate)
	if idx := strings.IndexByte(candidate, '|'); idx >= 0 {
		candidate = candidate[:idx]
	}
	candidate = strings.TrimSpace(candidate)

	if m := exactPattern.FindStringSubmatch(candidate); m != nil {
		return anchorFromMatch(m)
	}

	if m := substrPattern.FindStringSubmatch(candidate); m != nil {
		return anchorFromMatch(m)
	}

	if m := prefixedPattern.FindStringSubmatch(candidate); m != nil {
		return Anchor{}, fmt.Errorf("%q is not a valid {line_number}#{hash_id} anchor: %q is not a line number — use the actual line number from the Read output", raw, m[1])
	}

	return Anchor{}, fmt.Errorf("%q is not a valid {line_number}#{hash_id} anchor", raw)
}

func anchorFromMatch(m []string) (Anchor, error) {
	line, err := strconv.Atoi(m[1])
	if err != nil {
		return Anchor{}, fmt.Errorf("invalid line number %q: %w", m[1], err)
	}
	token := m[2]
	if len(token) > hashline.HashLen {
		token = token[:hashline.HashLen]
	}
	return Anchor{Line: line, Token: token}, nil
}

func stripLeadingMarker(s string) string {
	for _, marker := range leadingMarkers {
		if strings.HasPrefix(s, marker) {
			return strings.TrimSpace(strings.TrimPrefix(s, marker))
		}
	}
	return s
}

var hashSpacing = regexp.MustCompile(`\s*#\s*`)

func collapseHashSpacing(s string) string {
	return hashSpacing.ReplaceAllString(s, "#")
}
