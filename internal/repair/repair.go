package repair

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/xonecas/hashedit/internal/editop"
	"github.com/xonecas/hashedit/internal/hashline"
)

var anchorPrefixPattern = regexp.MustCompile(`(?s)^(\d+#[` + hashline.Alphabet + `]{2})(.+)$`)

var (
	embeddedLinesPattern = regexp.MustCompile(`(?s)"lines"\s*:\s*(null|\[[^\]]*\]|"(?:[^"\\]|\\.)*")`)
	queryLinesPattern    = regexp.MustCompile(`[?&]lines=([^&]*)`)
	embeddedEndPattern   = regexp.MustCompile(`"end"\s*:\s*"([^"]*)"`)
	tagPattern           = regexp.MustCompile(`^<[A-Za-z]`)
)

var garbagePrefixes = []string{"</", "'}]", "}"}

// Repaired is the outcome of repairing one RawEdit's pos/end fields.
type Repaired struct {
	Edit     editop.RawEdit
	Warnings []string
}

// Repair tolerates a malformed pos/end payload — an anchor followed by
// leaked trailing content. Fields that are already clean anchors pass
// through untouched.
func Repair(raw editop.RawEdit) Repaired {
	out := raw
	var warnings []string

	if m := anchorPrefixPattern.FindStringSubmatch(strings.TrimSpace(raw.Pos)); m != nil {
		cleanAnchor, rest := m[1], m[2]
		out.Pos = cleanAnchor
		warnings = append(warnings, fmt.Sprintf("Auto-repaired pos: extracted anchor %q from trailing content", cleanAnchor))

		if out.Lines == nil {
			if lv, w := extractLines(rest); lv != nil {
				out.Lines = lv
				warnings = append(warnings, w)
			}
		}
		if out.End == "" {
			if endAnchor, w := extractEnd(rest); endAnchor != "" {
				out.End = endAnchor
				warnings = append(warnings, w)
			}
		}
	}

	if m := anchorPrefixPattern.FindStringSubmatch(strings.TrimSpace(out.End)); m != nil {
		out.End = m[1]
		warnings = append(warnings, fmt.Sprintf("Auto-repaired end: extracted anchor %q from trailing content", m[1]))
	}

	return Repaired{Edit: out, Warnings: warnings}
}

func extractLines(rest string) (*editop.LinesValue, string) {
	if m := embeddedLinesPattern.FindStringSubmatch(rest); m != nil {
		if lv, err := editop.DecodeLinesValue(json.RawMessage(m[1])); err == nil {
			return lv, "Auto-repaired: extracted embedded \"lines\" value from pos payload"
		}
	}

	if m := queryLinesPattern.FindStringSubmatch(rest); m != nil {
		if quoted, err := json.Marshal(m[1]); err == nil {
			if lv, err := editop.DecodeLinesValue(json.RawMessage(quoted)); err == nil {
				return lv, "Auto-repaired: extracted lines from query-style tail in pos payload"
			}
		}
	}

	trimmed := strings.TrimLeft(rest, "|=%:,; \t")
	trimmed = strings.TrimSpace(trimmed)
	if trimmed == "" || looksLikeGarbage(trimmed) {
		return nil, ""
	}
	quoted, err := json.Marshal(trimmed)
	if err != nil {
		return nil, ""
	}
	lv, err := editop.DecodeLinesValue(json.RawMessage(quoted))
	if err != nil {
		return nil, ""
	}
	return lv, "Auto-repaired: treated trailing pos content as a single replacement line"
}

func extractEnd(rest string) (string, string) {
	m := embeddedEndPattern.FindStringSubmatch(rest)
	if m == nil {
		return "", ""
	}
	return m[1], "Auto-repaired: extracted embedded \"end\" anchor from pos payload"
}

func looksLikeGarbage(s string) bool {
	for _, p := range garbagePrefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return tagPattern.MatchString(s)
}
