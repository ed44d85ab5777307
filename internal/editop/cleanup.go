package editop

import "strings"

// CleanupBatch runs payload-cleanup heuristics over every edit in the
// batch against the current canonical lines: prefix stripping, boundary-
// echo trimming, and (Replace only) indent/wrap auto-correction. These
// heuristics absorb common tokenizer- and formatter-induced mangling from
// weaker models; they never change byte-exact content a caller explicitly
// typed, because each only fires when its specific signature is present.
func CleanupBatch(edits []Edit, currentLines []string) []Edit {
	out := make([]Edit, len(edits))
	for i, e := range edits {
		out[i] = cleanupOne(e, currentLines)
	}
	return out
}

func cleanupOne(e Edit, currentLines []string) Edit {
	if !e.Delete {
		if stripped, applied := stripPrefixes(e.Lines); applied {
			e.Lines = stripped
			e.Warnings = append(e.Warnings, "stripped echoed hashline/diff prefixes from payload")
		}
	}

	switch e.Op {
	case OpAppend:
		e = trimAppendEcho(e, currentLines)
	case OpPrepend:
		e = trimPrependEcho(e, currentLines)
	case OpReplace:
		if !e.Delete {
			e = trimReplaceBoundaryEcho(e, currentLines)
			e = restoreMergedLines(e, currentLines)
			e = restoreUniqueWrap(e, currentLines)
			e = restorePairedIndent(e, currentLines)
		}
	}
	return e
}

// stripPrefixes removes either a hashline prefix ("L#HH|") or a
// diff-plus prefix ("+" not followed by another "+") from every payload
// line, but only when at least half of the non-empty lines carry that
// prefix — otherwise a line that legitimately starts with '+' or
// contains '#'/'|' would be mangled.
func stripPrefixes(lines []string) ([]string, bool) {
	if len(lines) == 0 {
		return lines, false
	}

	nonEmpty := 0
	hashlineMatches := 0
	diffPlusMatches := 0
	for _, l := range lines {
		if strings.TrimSpace(l) == "" {
			continue
		}
		nonEmpty++
		if looksLikeHashlinePrefix(l) {
			hashlineMatches++
		}
		if looksLikeDiffPlusPrefix(l) {
			diffPlusMatches++
		}
	}
	if nonEmpty == 0 {
		return lines, false
	}

	if hashlineMatches*2 >= nonEmpty {
		return mapLines(lines, stripHashlinePrefix), true
	}
	if diffPlusMatches*2 >= nonEmpty {
		return mapLines(lines, stripDiffPlusPrefix), true
	}
	return lines, false
}

func mapLines(lines []string, f func(string) string) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = f(l)
	}
	return out
}

func looksLikeHashlinePrefix(line string) bool {
	hashIdx := strings.IndexByte(line, '#')
	if hashIdx <= 0 {
		return false
	}
	pipeIdx := strings.IndexByte(line, '|')
	if pipeIdx < hashIdx {
		return false
	}
	for _, r := range line[:hashIdx] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func stripHashlinePrefix(line string) string {
	if !looksLikeHashlinePrefix(line) {
		return line
	}
	pipeIdx := strings.IndexByte(line, '|')
	return line[pipeIdx+1:]
}

func looksLikeDiffPlusPrefix(line string) bool {
	return strings.HasPrefix(line, "+") && !strings.HasPrefix(line, "++")
}

func stripDiffPlusPrefix(line string) string {
	if !looksLikeDiffPlusPrefix(line) {
		return line
	}
	return strings.TrimPrefix(line, "+")
}

func sameIgnoringWhitespace(a, b string) bool {
	return stripAllWhitespace(a) == stripAllWhitespace(b)
}

func stripAllWhitespace(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r != ' ' && r != '\t' && r != '\r' && r != '\n' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func trimAppendEcho(e Edit, currentLines []string) Edit {
	if !e.HasPos || len(e.Lines) == 0 {
		return e
	}
	if e.Pos.Line < 1 || e.Pos.Line > len(currentLines) {
		return e
	}
	anchorContent := currentLines[e.Pos.Line-1]
	if sameIgnoringWhitespace(e.Lines[0], anchorContent) {
		e.Lines = e.Lines[1:]
		e.Warnings = append(e.Warnings, "dropped leading payload line echoing the anchor line")
	}
	return e
}

func trimPrependEcho(e Edit, currentLines []string) Edit {
	if !e.HasPos || len(e.Lines) == 0 {
		return e
	}
	if e.Pos.Line < 1 || e.Pos.Line > len(currentLines) {
		return e
	}
	anchorContent := currentLines[e.Pos.Line-1]
	last := len(e.Lines) - 1
	if sameIgnoringWhitespace(e.Lines[last], anchorContent) {
		e.Lines = e.Lines[:last]
		e.Warnings = append(e.Warnings, "dropped trailing payload line echoing the anchor line")
	}
	return e
}

// trimReplaceBoundaryEcho drops a leading payload line that echoes the
// line just before the replaced range, and/or a trailing payload line
// that echoes the line just after it — but only when the payload has
// more lines than the span being replaced (otherwise a genuinely
// duplicated line inside a short replacement would be lost).
func trimReplaceBoundaryEcho(e Edit, currentLines []string) Edit {
	if !e.HasPos {
		return e
	}
	start := e.Pos.Line
	end := start
	if e.HasEnd {
		end = e.End.Line
	}
	span := end - start + 1
	if len(e.Lines) <= span {
		return e
	}

	if start-1 >= 1 && start-1 <= len(currentLines) && len(e.Lines) > 0 {
		before := currentLines[start-2]
		if sameIgnoringWhitespace(e.Lines[0], before) {
			e.Lines = e.Lines[1:]
			e.Warnings = append(e.Warnings, "dropped leading payload line echoing the line before the replaced range")
		}
	}
	if end+1 <= len(currentLines) && len(e.Lines) > 0 {
		after := currentLines[end]
		last := len(e.Lines) - 1
		if sameIgnoringWhitespace(e.Lines[last], after) {
			e.Lines = e.Lines[:last]
			e.Warnings = append(e.Warnings, "dropped trailing payload line echoing the line after the replaced range")
		}
	}
	return e
}

// restoreMergedLines un-merges a payload that collapsed N consecutive
// original lines into one long line — a common formatter/tokenizer
// artifact — by comparing whitespace-stripped content.
func restoreMergedLines(e Edit, currentLines []string) Edit {
	if !e.HasPos || len(e.Lines) != 1 {
		return e
	}
	start := e.Pos.Line
	end := start
	if e.HasEnd {
		end = e.End.Line
	}
	span := end - start + 1
	if span < 2 || span > 10 {
		return e
	}
	if start < 1 || end > len(currentLines) {
		return e
	}
	original := currentLines[start-1 : end]
	if stripAllWhitespace(strings.Join(original, "")) == stripAllWhitespace(e.Lines[0]) {
		e.Lines = append([]string(nil), original...)
		e.Warnings = append(e.Warnings, "split merged payload line back into original line boundaries")
	}
	return e
}

// restoreUniqueWrap folds a 2–10-line payload span back into a single
// original line when that span's whitespace-stripped concatenation
// uniquely matches exactly one original line in the file.
func restoreUniqueWrap(e Edit, currentLines []string) Edit {
	if len(e.Lines) < 2 {
		return e
	}
	maxSpan := 10
	if maxSpan > len(e.Lines) {
		maxSpan = len(e.Lines)
	}
	for span := maxSpan; span >= 2; span-- {
		for i := 0; i+span <= len(e.Lines); i++ {
			candidate := stripAllWhitespace(strings.Join(e.Lines[i:i+span], ""))
			if candidate == "" {
				continue
			}
			matchLine, unique := uniqueOriginalMatch(candidate, currentLines)
			if unique {
				folded := append([]string(nil), e.Lines[:i]...)
				folded = append(folded, matchLine)
				folded = append(folded, e.Lines[i+span:]...)
				e.Lines = folded
				e.Warnings = append(e.Warnings, "folded wrapped payload span back into one original line")
				return e
			}
		}
	}
	return e
}

func uniqueOriginalMatch(strippedCandidate string, currentLines []string) (string, bool) {
	match := ""
	count := 0
	for _, l := range currentLines {
		if stripAllWhitespace(l) == strippedCandidate {
			match = l
			count++
			if count > 1 {
				return "", false
			}
		}
	}
	return match, count == 1
}

// restorePairedIndent copies leading whitespace from each original line
// onto the payload line at the same index when the payload's length
// matches the replaced span and the payload line arrived with no leading
// whitespace of its own.
func restorePairedIndent(e Edit, currentLines []string) Edit {
	if !e.HasPos {
		return e
	}
	start := e.Pos.Line
	end := start
	if e.HasEnd {
		end = e.End.Line
	}
	span := end - start + 1
	if len(e.Lines) != span || start < 1 || end > len(currentLines) {
		return e
	}

	changed := false
	out := make([]string, len(e.Lines))
	for i, payloadLine := range e.Lines {
		original := currentLines[start-1+i]
		out[i] = payloadLine

		if leadingWhitespace(payloadLine) != "" {
			continue
		}
		if strings.TrimSpace(original) == "" {
			continue
		}
		if strings.TrimRight(payloadLine, " \t") == strings.TrimSpace(original) {
			continue
		}
		indent := leadingWhitespace(original)
		if indent == "" {
			continue
		}
		out[i] = indent + payloadLine
		changed = true
	}
	if changed {
		e.Lines = out
		e.Warnings = append(e.Warnings, "restored original indentation on payload lines")
	}
	return e
}

func leadingWhitespace(s string) string {
	i := 0
	for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
		i++
	}
	return s[:i]
}
