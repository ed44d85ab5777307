// Package envelope canonicalizes raw file bytes into the line-ending- and
// BOM-free form the edit engine operates on, and restores that canonical
// form back to its original on-disk shape when writing.
package envelope

import "strings"

const bom = "\xEF\xBB\xBF"

// LineEnding is one of the two line terminators the engine preserves.
type LineEnding string

const (
	LF   LineEnding = "\n"
	CRLF LineEnding = "\r\n"
)

// Envelope pairs canonical content with the metadata needed to restore it.
type Envelope struct {
	Content    string
	HadBOM     bool
	LineEnding LineEnding
}

// Canonicalize strips a leading BOM and normalizes every line ending to
// "\n". The detected line ending is whichever of "\n" or "\r\n" occurs
// first in the content (before stripping); ties — content with no
// newline at all — favor LF.
func Canonicalize(raw []byte) Envelope {
	s := string(raw)

	hadBOM := false
	if strings.HasPrefix(s, bom) {
		hadBOM = true
		s = strings.TrimPrefix(s, bom)
	}

	detected := detectLineEnding(s)

	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")

	return Envelope{Content: s, HadBOM: hadBOM, LineEnding: detected}
}

func detectLineEnding(s string) LineEnding {
	idx := strings.IndexByte(s, '\n')
	if idx < 0 {
		return LF
	}
	if idx > 0 && s[idx-1] == '\r' {
		return CRLF
	}
	return LF
}

// Restore re-applies the original line ending to every "\n" in content and
// prepends the BOM if one was present at read time. content is assumed to
// already be canonical (LF-only).
func (e Envelope) Restore(content string) []byte {
	out := content
	if e.LineEnding == CRLF {
		out = strings.ReplaceAll(out, "\n", "\r\n")
	}
	if e.HadBOM {
		out = bom + out
	}
	return []byte(out)
}

// WithContent returns a copy of e with Content replaced, keeping the same
// BOM/line-ending metadata — the shape used after edits are applied to
// canonical content, before writing back to disk.
func (e Envelope) WithContent(content string) Envelope {
	e.Content = content
	return e
}
