package anchor

import (
	"strings"
	"testing"

	"github.com/xonecas/hashedit/internal/hashline"
)

func TestParseClean(t *testing.T) {
	a, err := Parse("3#ZP")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if a.Line != 3 || a.Token != "ZP" {
		t.Errorf("got %+v", a)
	}
}

func TestParseLeadingDiffMarkers(t *testing.T) {
	for _, marker := range []string{">>>", ">>", ">", "+", "-"} {
		a, err := Parse(marker + "3#ZP")
		if err != nil {
			t.Fatalf("marker %q: %v", marker, err)
		}
		if a.Line != 3 || a.Token != "ZP" {
			t.Errorf("marker %q: got %+v", marker, a)
		}
	}
}

func TestParseWhitespaceAroundHash(t *testing.T) {
	a, err := Parse("3 # ZP")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if a.Line != 3 || a.Token != "ZP" {
		t.Errorf("got %+v", a)
	}
}

func TestParseTrailingPipeEcho(t *testing.T) {
	a, err := Parse("3#ZP|some line content")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if a.Line != 3 || a.Token != "ZP" {
		t.Errorf("got %+v", a)
	}
}

func TestParseTruncatesLongHash(t *testing.T) {
	a, err := Parse("3#ZPM")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if a.Token != "ZP" {
		t.Errorf("expected truncated token ZP, got %s", a.Token)
	}
}

func TestParseMultiLineRejected(t *testing.T) {
	_, err := Parse("3#ZP\nsomething else")
	if err == nil {
		t.Fatal("expected error for multi-line anchor")
	}
	if !strings.Contains(err.Error(), "contains 2 lines") {
		t.Errorf("expected line-count message, got: %v", err)
	}
}

func TestParseNonNumericPrefix(t *testing.T) {
	_, err := Parse("line#ZP")
	if err == nil {
		t.Fatal("expected error for non-numeric prefix")
	}
	if !strings.Contains(err.Error(), "line number") {
		t.Errorf("expected line-number guidance, got: %v", err)
	}
}

func TestParseGarbageRejected(t *testing.T) {
	_, err := Parse("not an anchor at all")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "valid") {
		t.Errorf("expected generic validity message, got: %v", err)
	}
}

func TestParseSubstringExtraction(t *testing.T) {
	a, err := Parse("edit at 7#ZP please")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if a.Line != 7 || a.Token != "ZP" {
		t.Errorf("got %+v", a)
	}
}

func TestValidateOutOfRange(t *testing.T) {
	lines := []string{"a", "b"}
	if err := Validate(Anchor{Line: 5, Token: "ZP"}, lines); err == nil {
		t.Error("expected out-of-range error")
	}
	if err := Validate(Anchor{Line: 0, Token: "ZP"}, lines); err == nil {
		t.Error("expected out-of-range error for line 0")
	}
}

func TestValidateMatch(t *testing.T) {
	lines := []string{"alpha", "bravo", "charlie"}
	tok := hashline.Token(2, "bravo")
	if err := Validate(Anchor{Line: 2, Token: tok}, lines); err != nil {
		t.Errorf("valid anchor failed: %v", err)
	}
}

func TestValidateStaleWithSuggestion(t *testing.T) {
	// "bravo" moved to line 3; its token (seed 0, it has letters) is the
	// same there, so the error should point at it.
	lines := []string{"alpha", "bravo-other", "bravo"}
	staleTok := hashline.Token(2, "bravo")
	err := Validate(Anchor{Line: 2, Token: staleTok}, lines)
	if err == nil {
		t.Fatal("expected stale anchor to fail")
	}
	if !strings.Contains(err.Error(), "Did you mean") {
		t.Errorf("expected a Did-you-mean suggestion, got: %v", err)
	}
}

func TestValidateBatchCollectsMismatches(t *testing.T) {
	lines := []string{"alpha", "BRAVO-CHANGED", "charlie"}
	staleTok := hashline.Token(2, "bravo")
	validTok := hashline.Token(1, "alpha")

	err := ValidateBatch([]Anchor{{Line: 1, Token: validTok}, {Line: 2, Token: staleTok}}, lines)
	if err == nil {
		t.Fatal("expected mismatch error")
	}
	mismatchErr, ok := err.(*MismatchError)
	if !ok {
		t.Fatalf("expected *MismatchError, got %T", err)
	}
	if len(mismatchErr.Mismatches) != 1 {
		t.Fatalf("expected 1 mismatch, got %d", len(mismatchErr.Mismatches))
	}
	msg := mismatchErr.Error()
	if !strings.Contains(msg, ">>>2#") {
		t.Errorf("expected marked row for line 2, got: %s", msg)
	}
}

func TestValidateRangeInverted(t *testing.T) {
	lines := []string{"a", "b", "c"}
	h1 := hashline.Token(1, "a")
	h3 := hashline.Token(3, "c")
	if err := ValidateRange(Anchor{3, h3}, Anchor{1, h1}, lines); err == nil {
		t.Error("expected inverted range to fail")
	}
}
