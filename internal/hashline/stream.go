package hashline

import (
	"bufio"
	"io"
	"strings"
)

// StreamOptions bounds the streaming hashline producer.
type StreamOptions struct {
	StartLine    int // 1-indexed; defaults to 1
	MaxChunkLines int // records per chunk; 0 = unbounded
	MaxChunkBytes int // bytes of record text per chunk; 0 = unbounded
}

func (o StreamOptions) normalized() StreamOptions {
	if o.StartLine <= 0 {
		o.StartLine = 1
	}
	return o
}

// StreamRecords converts src into a sequence of hashline-formatted chunks,
// delivered to yield in order. Concatenating the yielded chunks with "\n"
// reproduces FormatLines's output for the same content split on "\n",
// except that a trailing "\r" is dropped from each line's record text.
// yield returning false stops iteration early.
//
// Memory use is bounded by MaxChunkBytes plus one pending line, regardless
// of the size of src: the reader is consumed incrementally and a chunk is
// flushed as soon as either limit is reached.
func StreamRecords(src io.Reader, opts StreamOptions, yield func(chunk string) bool) error {
	opts = opts.normalized()

	reader := bufio.NewReader(src)
	lineNum := opts.StartLine

	var chunk strings.Builder
	chunkLines := 0

	flush := func() bool {
		if chunk.Len() == 0 {
			return true
		}
		ok := yield(chunk.String())
		chunk.Reset()
		chunkLines = 0
		return ok
	}

	appendRecord := func(content string) bool {
		if chunk.Len() > 0 {
			chunk.WriteByte('\n')
		}
		chunk.WriteString(FormatRecord(lineNum, content))
		lineNum++
		chunkLines++

		overLines := opts.MaxChunkLines > 0 && chunkLines >= opts.MaxChunkLines
		overBytes := opts.MaxChunkBytes > 0 && chunk.Len() >= opts.MaxChunkBytes
		if overLines || overBytes {
			return flush()
		}
		return true
	}

	var pending strings.Builder
	sawAny := false
	endedWithNewline := false
	for {
		line, err := reader.ReadString('\n')
		if len(line) > 0 {
			sawAny = true
			if strings.HasSuffix(line, "\n") {
				content := strings.TrimSuffix(line, "\n")
				content = strings.TrimSuffix(content, "\r")
				if !appendRecord(content) {
					return nil
				}
				endedWithNewline = true
				pending.Reset()
			} else {
				pending.WriteString(line)
				endedWithNewline = false
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
	}

	if pending.Len() > 0 {
		if !appendRecord(pending.String()) {
			return nil
		}
	} else if sawAny && endedWithNewline {
		// Source ended with '\n': emit the trailing empty-content record
		// so line counts match the canonical split-on-'\n' behavior.
		if !appendRecord("") {
			return nil
		}
	}

	flush()
	return nil
}

// StreamLines is the line-iterator entry point: it accepts lines the
// caller already has split out (e.g. from a grep match list) instead of
// a raw byte source.
func StreamLines(lines []string, opts StreamOptions, yield func(chunk string) bool) {
	opts = opts.normalized()
	lineNum := opts.StartLine

	var chunk strings.Builder
	chunkLines := 0

	flush := func() bool {
		if chunk.Len() == 0 {
			return true
		}
		ok := yield(chunk.String())
		chunk.Reset()
		chunkLines = 0
		return ok
	}

	for _, content := range lines {
		if chunk.Len() > 0 {
			chunk.WriteByte('\n')
		}
		chunk.WriteString(FormatRecord(lineNum, content))
		lineNum++
		chunkLines++

		overLines := opts.MaxChunkLines > 0 && chunkLines >= opts.MaxChunkLines
		overBytes := opts.MaxChunkBytes > 0 && chunk.Len() >= opts.MaxChunkBytes
		if overLines || overBytes {
			if !flush() {
				return
			}
		}
	}
	flush()
}
