package repair

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xonecas/hashedit/internal/anchor"
)

// MissingLines runs the missing-lines diagnostic escalation ladder for a
// Replace edit that arrived with no "lines" field. It records
// a failure against the process-wide ledger for posText and filePath, and
// returns either a rung 1-4 error message (soft=false) or, once a bail
// threshold is reached, a soft-reject string (soft=true) that the engine
// returns to the caller instead of raising.
func MissingLines(posText string, a anchor.Anchor, hasAnchor bool, lines []string, filePath string) (message string, soft bool) {
	anchorCount, fileCount := global.recordMissingLines(posText, filePath)

	lineNum := 0
	content := ""
	haveLine := false
	if hasAnchor && a.Line >= 1 && a.Line <= len(lines) {
		lineNum = a.Line
		content = lines[a.Line-1]
		haveLine = true
	}

	if anchorCount >= anchorBailThreshold || fileCount >= fileBailThreshold {
		return softReject(posText, lineNum, content, haveLine, anchorCount), true
	}

	base := "replace requires explicit 'lines' field."
	hint := patternHint(posText)

	switch {
	case anchorCount >= exampleThreshold && haveLine:
		return base + " " + exampleJSON(posText, lineNum, content), false
	case anchorCount >= escalationThreshold && haveLine:
		msg := base
		if hint != "" {
			msg += " " + hint
		}
		msg += fmt.Sprintf(" Line %d currently contains %q. Set lines to the replacement content.", lineNum, content)
		return msg, false
	default:
		msg := base
		if hint != "" {
			msg += " " + hint
		}
		return msg, false
	}
}

func patternHint(posText string) string {
	switch {
	case strings.ContainsAny(posText, "=:"):
		return "It looks like key-value syntax leaked into 'pos' — only the anchor belongs there."
	case strings.Contains(posText, "<"):
		return "It looks like XML/HTML markup leaked into 'pos' — only the anchor belongs there."
	case anchorPrefixPattern.MatchString(strings.TrimSpace(posText)):
		return "It looks like trailing content leaked into 'pos' — only the anchor belongs there."
	default:
		return ""
	}
}

func cleanAnchorText(posText string) string {
	if m := anchorPrefixPattern.FindStringSubmatch(strings.TrimSpace(posText)); m != nil {
		return m[1]
	}
	return posText
}

func exampleJSON(posText string, lineNum int, content string) string {
	clean := cleanAnchorText(posText)
	exampleLine, _ := json.Marshal(content)
	return fmt.Sprintf(`Example of a correct edit: {"op":"replace","pos":%q,"lines":[%s]} replaces line %d (currently %s) with your new content.`,
		clean, exampleLine, lineNum, exampleLine)
}

func softReject(posText string, lineNum int, content string, haveLine bool, attempt int) string {
	clean := cleanAnchorText(posText)
	var b strings.Builder
	fmt.Fprintf(&b, "⚠️ edit_file: NOT APPLIED (attempt %d) — 'lines' is required for replace and was missing for anchor %s.\n", attempt, clean)
	if haveLine {
		exampleLine, _ := json.Marshal(content)
		fmt.Fprintf(&b, "Line %d currently contains %q.\n", lineNum, content)
		fmt.Fprintf(&b, "Corrected edit: {\"op\":\"replace\",\"pos\":%q,\"lines\":[%s]}\n", clean, exampleLine)
	} else {
		fmt.Fprintf(&b, "Corrected edit: {\"op\":\"replace\",\"pos\":%q,\"lines\":[\"...\"]}\n", clean)
	}
	fmt.Fprintf(&b, "To delete instead: {\"op\":\"replace\",\"pos\":%q,\"lines\":null}\n", clean)
	b.WriteString("This anchor has failed repeatedly; use write_file for a full-file rewrite instead of further targeted edits.\n")
	return b.String()
}
