package editop

import (
	"encoding/json"
	"testing"

	"github.com/xonecas/hashedit/internal/anchor"
)

func mustRawEdit(t *testing.T, jsonStr string) RawEdit {
	t.Helper()
	var re RawEdit
	if err := json.Unmarshal([]byte(jsonStr), &re); err != nil {
		t.Fatalf("unmarshal %q: %v", jsonStr, err)
	}
	return re
}

func mustAnchor(t *testing.T, s string) anchor.Anchor {
	t.Helper()
	a, err := anchor.Parse(s)
	if err != nil {
		t.Fatalf("anchor.Parse(%q): %v", s, err)
	}
	return a
}

func TestLinesValueString(t *testing.T) {
	re := mustRawEdit(t, `{"op":"replace","pos":"1#ZP","lines":"a\nb"}`)
	if !re.Lines.Present {
		t.Fatal("expected lines present")
	}
	if len(re.Lines.Values) != 2 || re.Lines.Values[0] != "a" || re.Lines.Values[1] != "b" {
		t.Errorf("got %+v", re.Lines.Values)
	}
}

func TestLinesValueArray(t *testing.T) {
	re := mustRawEdit(t, `{"op":"replace","pos":"1#ZP","lines":["a","b"]}`)
	if len(re.Lines.Values) != 2 {
		t.Errorf("got %+v", re.Lines.Values)
	}
}

func TestLinesValueNullIsDeletion(t *testing.T) {
	re := mustRawEdit(t, `{"op":"replace","pos":"1#ZP","lines":null}`)
	if !re.Lines.Present {
		t.Fatal("expected present for explicit null")
	}
	if !re.Lines.IsDeletion() {
		t.Error("expected null to mean deletion")
	}
}

func TestLinesValueAbsent(t *testing.T) {
	re := mustRawEdit(t, `{"op":"replace","pos":"1#ZP"}`)
	if re.Lines != nil {
		t.Fatal("expected nil Lines for absent field")
	}
}

func TestNormalizeReplaceMissingLines(t *testing.T) {
	re := mustRawEdit(t, `{"op":"replace","pos":"2#ZP"}`)
	_, err := Normalize(re)
	if err == nil {
		t.Fatal("expected ErrLinesAbsent")
	}
}

func TestNormalizeReplaceDeletion(t *testing.T) {
	re := mustRawEdit(t, `{"op":"replace","pos":"2#ZP","end":"3#MQ","lines":null}`)
	e, err := Normalize(re)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if !e.Delete {
		t.Error("expected Delete edit")
	}
	if e.Pos.Line != 2 || e.End.Line != 3 {
		t.Errorf("got pos=%v end=%v", e.Pos, e.End)
	}
}

func TestNormalizeAppendCollapsesPosEnd(t *testing.T) {
	re := mustRawEdit(t, `{"op":"append","pos":"2#ZP","end":"3#MQ","lines":["x"]}`)
	e, err := Normalize(re)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if e.Pos.Line != 2 {
		t.Errorf("expected pos to win, got %v", e.Pos)
	}
	if e.HasEnd {
		t.Error("append should not carry an end anchor")
	}
}

func TestNormalizeAppendAnchorless(t *testing.T) {
	re := mustRawEdit(t, `{"op":"append","lines":["x"]}`)
	e, err := Normalize(re)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if e.HasPos {
		t.Error("expected no anchor for EOF append")
	}
}

func TestDedupDropsRepeats(t *testing.T) {
	re1 := mustRawEdit(t, `{"op":"replace","pos":"2#ZP","lines":["x"]}`)
	re2 := mustRawEdit(t, `{"op":"replace","pos":"2#ZP","lines":["x"]}`)
	e1, _ := Normalize(re1)
	e2, _ := Normalize(re2)

	deduped, dropped := Dedup([]Edit{e1, e2})
	if dropped != 1 {
		t.Errorf("expected 1 dropped, got %d", dropped)
	}
	if len(deduped) != 1 {
		t.Errorf("expected 1 remaining, got %d", len(deduped))
	}
}

func TestOrderDescendingLine(t *testing.T) {
	re1 := mustRawEdit(t, `{"op":"replace","pos":"1#ZP","lines":["a"]}`)
	re2 := mustRawEdit(t, `{"op":"replace","pos":"5#ZP","lines":["b"]}`)
	re3 := mustRawEdit(t, `{"op":"replace","pos":"3#ZP","lines":["c"]}`)
	e1, _ := Normalize(re1)
	e2, _ := Normalize(re2)
	e3, _ := Normalize(re3)

	ordered := Order([]Edit{e1, e2, e3})
	if ordered[0].Pos.Line != 5 || ordered[1].Pos.Line != 3 || ordered[2].Pos.Line != 1 {
		t.Errorf("bad order: %d, %d, %d", ordered[0].Pos.Line, ordered[1].Pos.Line, ordered[2].Pos.Line)
	}
}

func TestOrderOpPrecedenceSameLine(t *testing.T) {
	reAppend := mustRawEdit(t, `{"op":"append","pos":"2#ZP","lines":["a"]}`)
	rePrepend := mustRawEdit(t, `{"op":"prepend","pos":"2#ZP","lines":["b"]}`)
	reReplace := mustRawEdit(t, `{"op":"replace","pos":"2#ZP","lines":["c"]}`)
	eAppend, _ := Normalize(reAppend)
	ePrepend, _ := Normalize(rePrepend)
	eReplace, _ := Normalize(reReplace)

	ordered := Order([]Edit{eAppend, ePrepend, eReplace})
	if ordered[0].Op != OpReplace || ordered[1].Op != OpAppend || ordered[2].Op != OpPrepend {
		t.Errorf("bad precedence order: %v %v %v", ordered[0].Op, ordered[1].Op, ordered[2].Op)
	}
}

func TestDetectOverlapsRejectsOverlappingRanges(t *testing.T) {
	re1 := mustRawEdit(t, `{"op":"replace","pos":"1#ZP","end":"3#MQ","lines":["a"]}`)
	re2 := mustRawEdit(t, `{"op":"replace","pos":"2#ZP","end":"4#MQ","lines":["b"]}`)
	e1, _ := Normalize(re1)
	e2, _ := Normalize(re2)

	if err := DetectOverlaps([]Edit{e1, e2}); err == nil {
		t.Fatal("expected overlap error")
	}
}

func TestDetectOverlapsAllowsAdjacentRanges(t *testing.T) {
	re1 := mustRawEdit(t, `{"op":"replace","pos":"1#ZP","end":"2#MQ","lines":["a"]}`)
	re2 := mustRawEdit(t, `{"op":"replace","pos":"3#ZP","end":"4#MQ","lines":["b"]}`)
	e1, _ := Normalize(re1)
	e2, _ := Normalize(re2)

	if err := DetectOverlaps([]Edit{e1, e2}); err != nil {
		t.Errorf("unexpected overlap error: %v", err)
	}
}

func TestStripPrefixesHashline(t *testing.T) {
	lines := []string{"1#ZP|foo", "2#MQ|bar"}
	stripped, applied := stripPrefixes(lines)
	if !applied {
		t.Fatal("expected prefix stripping to apply")
	}
	if stripped[0] != "foo" || stripped[1] != "bar" {
		t.Errorf("got %v", stripped)
	}
}

func TestStripPrefixesRequiresMajority(t *testing.T) {
	lines := []string{"1#ZP|foo", "just a normal line", "another normal line"}
	_, applied := stripPrefixes(lines)
	if applied {
		t.Error("should not strip when fewer than half the lines match")
	}
}

func TestRestorePairedIndent(t *testing.T) {
	e := Edit{
		Op:     OpReplace,
		HasPos: true,
		Pos:    mustAnchor(t, "2#ZP"),
		Lines:  []string{"foo()"},
	}
	currentLines := []string{"package main", "    bar()", "}"}
	out := restorePairedIndent(e, currentLines)
	if out.Lines[0] != "    foo()" {
		t.Errorf("expected indent restored, got %q", out.Lines[0])
	}
}
