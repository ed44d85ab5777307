package editop

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// opPrecedence orders same-line edits: Replace before Append before
// Prepend.
func opPrecedence(op Op) int {
	switch op {
	case OpReplace:
		return 0
	case OpAppend:
		return 1
	case OpPrepend:
		return 2
	default:
		return 3
	}
}

func targetLine(e Edit) int {
	if e.HasPos {
		return e.Pos.Line
	}
	// An anchorless append targets EOF and takes the highest possible
	// line, so the descending sort applies it first; an anchorless
	// prepend targets BOF and takes line 0, so it is applied last.
	// Neither shifts the line an anchored edit refers to.
	if e.Op == OpPrepend {
		return 0
	}
	return int(^uint(0) >> 1) // max int: anchorless append goes at EOF
}

// dedupKey builds the canonical duplicate-detection key:
// "{op}|{pos}|{end}|{hash_of_normalized_lines}".
func dedupKey(e Edit) string {
	pos := ""
	if e.HasPos {
		pos = e.Pos.String()
	}
	end := ""
	if e.HasEnd {
		end = e.End.String()
	}
	h := sha256.Sum256([]byte(strings.Join(e.Lines, "\n")))
	return fmt.Sprintf("%s|%s|%s|%s", e.Op, pos, end, hex.EncodeToString(h[:8]))
}

// Dedup drops later edits whose canonical key repeats an earlier one,
// preserving first-seen order, and reports how many were dropped.
func Dedup(edits []Edit) (deduped []Edit, dropped int) {
	seen := make(map[string]bool, len(edits))
	deduped = make([]Edit, 0, len(edits))
	for _, e := range edits {
		key := dedupKey(e)
		if seen[key] {
			dropped++
			continue
		}
		seen[key] = true
		deduped = append(deduped, e)
	}
	return deduped, dropped
}

// Order sorts edits by descending target line, then by op precedence
// (Replace < Append < Prepend) within the same line, so that applying
// them front-to-back never shifts a later anchor's meaning.
func Order(edits []Edit) []Edit {
	out := append([]Edit(nil), edits...)
	sort.SliceStable(out, func(i, j int) bool {
		li, lj := targetLine(out[i]), targetLine(out[j])
		if li != lj {
			return li > lj
		}
		return opPrecedence(out[i].Op) < opPrecedence(out[j].Op)
	})
	return out
}

// DetectOverlaps fails if any two Replace edits with an end anchor have
// overlapping [start..=end] ranges. Single-line replaces (no end) may sit
// between another range's endpoints as long as their line number isn't
// exactly equal to a ranged edit's start or end — this check rejects only
// true range overlaps.
func DetectOverlaps(edits []Edit) error {
	type span struct {
		start, end int
	}
	var ranged []span
	var singles []int
	for _, e := range edits {
		if e.Op != OpReplace {
			continue
		}
		if !e.HasEnd {
			singles = append(singles, e.Pos.Line)
			continue
		}
		s, en := e.Pos.Line, e.End.Line
		if s > en {
			s, en = en, s
		}
		ranged = append(ranged, span{s, en})
	}
	sort.Slice(ranged, func(i, j int) bool {
		if ranged[i].start != ranged[j].start {
			return ranged[i].start < ranged[j].start
		}
		return ranged[i].end < ranged[j].end
	})
	for i := 1; i < len(ranged); i++ {
		if ranged[i].start <= ranged[i-1].end {
			return fmt.Errorf("overlapping range edits detected: [%d..%d] overlaps [%d..%d]",
				ranged[i-1].start, ranged[i-1].end, ranged[i].start, ranged[i].end)
		}
	}
	for _, ln := range singles {
		for _, r := range ranged {
			if ln == r.start || ln == r.end {
				return fmt.Errorf("overlapping range edits detected: single-line replace at %d coincides with an endpoint of [%d..%d]",
					ln, r.start, r.end)
			}
		}
	}
	return nil
}
