package fsread

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/xonecas/hashedit/internal/hashline"
)

// MaxFileSize is the hard ceiling on readable file size.
const MaxFileSize = 1 << 20 // 1 MiB

// DefaultWindowLines is the default number of lines returned when no
// window is requested.
const DefaultWindowLines = 2000

// WindowOptions selects a slice of a file's lines to read.
type WindowOptions struct {
	Limit            int
	Offset           int
	AroundLine       int
	Before           int
	After            int
	RespectGitIgnore bool
}

// Result is the output of a single hashline-formatted read.
type Result struct {
	Bytes           int
	Content         string
	NumberedContent string
	TotalLines      int
	StartLine       int
	EndLine         int
	Truncated       bool
	FileHash        string
	LastModified    int64
}

// ReadFileHashlined reads path, honoring RespectGitIgnore via the ignore
// chain rooted at the nearest .git ancestor, enforcing the size limit and
// binary-content rejection, and returning the requested window formatted
// as hashline records.
func ReadFileHashlined(path string, opts WindowOptions) (Result, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Result{}, fmt.Errorf("File not found: %s", path)
	}
	if info.IsDir() {
		return Result{}, fmt.Errorf("%s is a directory, not a file", path)
	}

	if opts.RespectGitIgnore {
		dir := filepath.Dir(path)
		root := findGitRoot(dir)
		chain, err := LoadChain(root, dir)
		if err != nil {
			return Result{}, err
		}
		rel, err := filepath.Rel(root, path)
		if err == nil && chain.Ignored(rel, false) {
			return Result{}, fmt.Errorf("%s is excluded by ignore rules", path)
		}
	}

	if info.Size() > MaxFileSize {
		return Result{}, fmt.Errorf("file too large: %s exceeds the %s limit", path, humanize.Bytes(uint64(MaxFileSize)))
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return Result{}, fmt.Errorf("File not found: %s", path)
	}

	if looksBinary(raw) {
		return Result{}, fmt.Errorf("%s appears to be a binary file", path)
	}

	content := string(raw)
	lines := strings.Split(content, "\n")
	total := len(lines)

	start, end, truncated := computeWindow(opts, total)

	var b strings.Builder
	for i := start; i <= end; i++ {
		if i > start {
			b.WriteByte('\n')
		}
		b.WriteString(hashline.FormatRecord(i, lines[i-1]))
	}

	return Result{
		Bytes:           len(raw),
		Content:         content,
		NumberedContent: b.String(),
		TotalLines:      total,
		StartLine:       start,
		EndLine:         end,
		Truncated:       truncated,
		FileHash:        hashline.FileHash(raw),
		LastModified:    info.ModTime().Unix(),
	}, nil
}

func computeWindow(opts WindowOptions, total int) (start, end int, truncated bool) {
	if opts.AroundLine > 0 {
		before := opts.Before
		after := opts.After
		if before == 0 && after == 0 {
			before, after = DefaultWindowLines/2, DefaultWindowLines/2
		}
		start = opts.AroundLine - before
		end = opts.AroundLine + after
	} else {
		start = opts.Offset + 1
		limit := opts.Limit
		if limit <= 0 {
			limit = DefaultWindowLines
		}
		end = start + limit - 1
	}

	if start < 1 {
		start = 1
	}
	if end > total {
		end = total
		truncated = false
	} else if end < total {
		truncated = true
	}
	if end < start {
		end = start
	}
	if total == 0 {
		return 1, 1, false
	}
	if start > total {
		start = total
	}
	return start, end, truncated
}

// looksBinary samples up to 4096 bytes: any NUL byte, or 30%+ non-printable
// bytes, marks the content as binary.
func looksBinary(raw []byte) bool {
	sample := raw
	if len(sample) > 4096 {
		sample = sample[:4096]
	}
	if len(sample) == 0 {
		return false
	}

	nonPrintable := 0
	for _, b := range sample {
		if b == 0x00 {
			return true
		}
		if b < 0x09 || (b > 0x0d && b < 0x20) {
			nonPrintable++
		}
	}
	return float64(nonPrintable)/float64(len(sample)) >= 0.30
}
