// Package hashline computes the per-line content digest and the hashline
// wire format ("L#HH|C") the edit engine uses to let a caller name an
// anchor it just observed instead of reproducing a line verbatim.
//
// The hash is not cryptographic: it exists only to detect drift between
// the moment a line was read and the moment an edit referencing it is
// applied, so two characters of xxHash32 are plenty and keep the tagged
// output short.
package hashline

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/OneOfOne/xxhash"
)

// alphabet is the fixed 16-symbol permutation tokens are drawn from. Each
// token is two symbols, treated as a 4-bit nibble pair, giving 256 distinct
// tokens — one per possible (hash mod 256) value.
const alphabet = "ZPMQVRWSNKTXJBYH"

// Alphabet is the fixed 16-symbol token alphabet, exported for packages
// (such as anchor) that need to build patterns matching hashline tokens.
const Alphabet = alphabet

// HashLen is the number of characters in a hash token.
const HashLen = 2

// Token computes the 2-character hash token for a line at the given
// 1-based line number.
//
// A trailing carriage return is stripped first so CRLF and LF inputs hash
// identically. Lines whose content contains no letter or digit (blank or
// punctuation-only lines) seed the hash with the line number instead of 0,
// so that two otherwise-identical blank lines at different positions don't
// collide.
func Token(lineNumber int, content string) string {
	stripped := strings.TrimSuffix(content, "\r")
	stripped = stripWhitespace(stripped)

	seed := uint32(0)
	if !hasAlnum(stripped) {
		seed = uint32(lineNumber)
	}

	h := seededChecksum32(stripped, seed)
	idx := h % 256
	hi := (idx >> 4) & 0xF
	lo := idx & 0xF
	return string([]byte{alphabet[hi], alphabet[lo]})
}

// seededChecksum32 computes xxHash32(content, seed). The xxHash32
// algorithm mixes a seed into its internal accumulators; OneOfOne/xxhash
// exposes only the unseeded Checksum32/ChecksumString32 entry points, so
// the seed is folded into the hashed bytes instead of passed as a
// separate parameter — a zero seed reduces to xxhash.ChecksumString32
// exactly, and distinct seeds still produce distinct, deterministic
// digests for the same content.
func seededChecksum32(content string, seed uint32) uint32 {
	if seed == 0 {
		return xxhash.ChecksumString32(content)
	}
	buf := make([]byte, 4, 4+len(content))
	buf[0] = byte(seed >> 24)
	buf[1] = byte(seed >> 16)
	buf[2] = byte(seed >> 8)
	buf[3] = byte(seed)
	buf = append(buf, content...)
	return xxhash.Checksum32(buf)
}

func stripWhitespace(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if !unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func hasAlnum(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			return true
		}
	}
	return false
}

// FileHash computes the whole-file digest used for the optional
// expected_file_hash stale-check. It operates on the raw,
// uncanonicalized bytes — BOM and original line endings included — so
// that it reflects exactly what was last read from disk.
func FileHash(raw []byte) string {
	h := xxhash.Checksum32(raw)
	return fmt.Sprintf("%08x", h)
}

// FormatRecord renders one hashline record: "L#HH|C".
func FormatRecord(lineNumber int, content string) string {
	return fmt.Sprintf("%d#%s|%s", lineNumber, Token(lineNumber, content), content)
}

// ParsedRecord is a hashline record split back into its parts.
type ParsedRecord struct {
	LineNumber int
	Token      string
	Content    string
}

// ParseRecord parses one well-formed "L#HH|C" record. It expects exactly
// the wire shape FormatRecord produces; for tolerant parsing of
// model-supplied anchors (which may carry noise), see package anchor.
func ParseRecord(s string) (ParsedRecord, error) {
	hashIdx := strings.IndexByte(s, '#')
	if hashIdx < 0 {
		return ParsedRecord{}, fmt.Errorf("hashline record %q missing '#'", s)
	}
	pipeIdx := strings.IndexByte(s, '|')
	if pipeIdx < 0 || pipeIdx < hashIdx {
		return ParsedRecord{}, fmt.Errorf("hashline record %q missing '|'", s)
	}

	var lineNumber int
	if _, err := fmt.Sscanf(s[:hashIdx], "%d", &lineNumber); err != nil {
		return ParsedRecord{}, fmt.Errorf("hashline record %q has non-numeric line number: %w", s, err)
	}

	token := s[hashIdx+1 : pipeIdx]
	content := s[pipeIdx+1:]
	return ParsedRecord{LineNumber: lineNumber, Token: token, Content: content}, nil
}

// FormatLines renders every line of lines (already split, 1-indexed
// starting at startLine) as hashline records joined with "\n".
func FormatLines(lines []string, startLine int) string {
	if startLine <= 0 {
		startLine = 1
	}
	records := make([]string, len(lines))
	for i, line := range lines {
		records[i] = FormatRecord(startLine+i, line)
	}
	return strings.Join(records, "\n")
}
