package hashline

import (
	"strings"
	"testing"
)

func collectChunks(t *testing.T, content string, opts StreamOptions) []string {
	t.Helper()
	var chunks []string
	err := StreamRecords(strings.NewReader(content), opts, func(chunk string) bool {
		chunks = append(chunks, chunk)
		return true
	})
	if err != nil {
		t.Fatalf("StreamRecords: %v", err)
	}
	return chunks
}

func TestStreamRecordsJoinEqualsFormatLines(t *testing.T) {
	content := "alpha\nbravo\ncharlie\n"
	chunks := collectChunks(t, content, StreamOptions{})
	got := strings.Join(chunks, "\n")

	lines := strings.Split(strings.TrimSuffix(content, "\n"), "\n")
	lines = append(lines, "") // trailing newline -> trailing empty record
	want := FormatLines(lines, 1)

	if got != want {
		t.Errorf("stream join mismatch:\ngot:  %q\nwant: %q", got, want)
	}
}

func TestStreamRecordsNoTrailingNewline(t *testing.T) {
	content := "alpha\nbravo"
	chunks := collectChunks(t, content, StreamOptions{})
	got := strings.Join(chunks, "\n")
	want := FormatLines([]string{"alpha", "bravo"}, 1)
	if got != want {
		t.Errorf("got %q want %q", got, want)
	}
}

func TestStreamRecordsEmptySource(t *testing.T) {
	chunks := collectChunks(t, "", StreamOptions{})
	if len(chunks) != 0 {
		t.Errorf("expected no chunks for empty source, got %v", chunks)
	}
}

func TestStreamRecordsChunkingByLines(t *testing.T) {
	content := "a\nb\nc\nd\ne\n"
	chunks := collectChunks(t, content, StreamOptions{MaxChunkLines: 2})
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks (2,2,2: five lines plus the trailing empty record), got %d: %v", len(chunks), chunks)
	}
	for i, c := range chunks[:2] {
		if n := strings.Count(c, "\n") + 1; n != 2 {
			t.Errorf("chunk %d has %d records, want 2", i, n)
		}
	}
}

func TestStreamRecordsChunkingByBytes(t *testing.T) {
	content := strings.Repeat("x", 100) + "\n" + strings.Repeat("y", 100) + "\n"
	chunks := collectChunks(t, content, StreamOptions{MaxChunkBytes: 50})
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks under a tight byte limit, got %d", len(chunks))
	}
}

func TestStreamRecordsStartLine(t *testing.T) {
	chunks := collectChunks(t, "only\n", StreamOptions{StartLine: 5})
	joined := strings.Join(chunks, "\n")
	if !strings.HasPrefix(joined, "5#") {
		t.Errorf("expected record to start at line 5, got %q", joined)
	}
}

func TestStreamLinesMatchesRecords(t *testing.T) {
	lines := []string{"one", "two", "three"}
	var got []string
	StreamLines(lines, StreamOptions{}, func(chunk string) bool {
		got = append(got, chunk)
		return true
	})
	want := FormatLines(lines, 1)
	if strings.Join(got, "\n") != want {
		t.Errorf("StreamLines mismatch:\ngot:  %q\nwant: %q", strings.Join(got, "\n"), want)
	}
}

func TestStreamRecordsEarlyStop(t *testing.T) {
	content := "a\nb\nc\nd\n"
	var seen int
	err := StreamRecords(strings.NewReader(content), StreamOptions{MaxChunkLines: 1}, func(chunk string) bool {
		seen++
		return seen < 2
	})
	if err != nil {
		t.Fatalf("StreamRecords: %v", err)
	}
	if seen != 2 {
		t.Errorf("expected iteration to stop after 2 chunks, got %d", seen)
	}
}
