// Package engine wires the hashline edit pipeline end to end: repair,
// normalize, dedup, clean up, validate, overlap-check, order, apply, and
// atomically write — exposing the four public operations named in the
// engine's external interface.
package engine

import (
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/xonecas/hashedit/internal/anchor"
	"github.com/xonecas/hashedit/internal/config"
	"github.com/xonecas/hashedit/internal/editapply"
	"github.com/xonecas/hashedit/internal/editop"
	"github.com/xonecas/hashedit/internal/envelope"
	"github.com/xonecas/hashedit/internal/fsread"
	"github.com/xonecas/hashedit/internal/hashline"
	"github.com/xonecas/hashedit/internal/pathsafe"
	"github.com/xonecas/hashedit/internal/repair"
)

// Engine is the bound configuration an edit/read operation runs against.
type Engine struct {
	cfg *config.Config
}

// New builds an Engine from cfg. A nil cfg yields built-in defaults.
func New(cfg *config.Config) *Engine {
	if cfg == nil {
		cfg = &config.Config{}
	}
	return &Engine{cfg: cfg}
}

// Summary reports the outcome of ExecuteEdit.
type Summary struct {
	Action        string // "created" | "updated"
	EditsApplied  int
	LineDelta     int
	Warnings      []string
	SoftReject    string // non-empty iff the escalation ladder bailed out
}

// ExecuteEdit applies a batch of raw edits to path: repair, normalize,
// dedup, clean up, validate anchors, check overlaps, order, apply, and
// atomically write.
func (e *Engine) ExecuteEdit(path string, rawEdits []editop.RawEdit, expectedFileHash string) (Summary, error) {
	correlationID := uuid.NewString()
	logger := log.With().Str("correlation_id", correlationID).Str("path", path).Logger()

	absPath, err := pathsafe.Resolve(path, e.cfg.Engine.ProjectRootOrDefault())
	if err != nil {
		return Summary{}, err
	}

	raw, existed, err := readExisting(absPath)
	if err != nil {
		return Summary{}, err
	}

	if !existed {
		if err := requireCreatableBatch(rawEdits); err != nil {
			return Summary{}, err
		}
		raw = []byte("")
	}

	env := envelope.Canonicalize(raw)
	if expectedFileHash != "" {
		actual := hashline.FileHash(raw)
		if actual != expectedFileHash {
			return Summary{}, fmt.Errorf("File changed since read_file output. expected=%s, current=%s", expectedFileHash, actual)
		}
	}

	lines := strings.Split(env.Content, "\n")

	edits, warnings, softReject, err := prepareBatch(rawEdits, lines, absPath)
	if err != nil {
		return Summary{}, err
	}
	if softReject != "" {
		return Summary{SoftReject: softReject}, nil
	}

	if err := validateEdits(edits, lines); err != nil {
		return Summary{}, err
	}
	if err := editop.DetectOverlaps(edits); err != nil {
		return Summary{}, err
	}

	ordered := editop.Order(edits)
	newLines, results, err := editapply.ApplyBatch(ordered, lines)
	if err != nil {
		return Summary{}, err
	}

	noOps := 0
	for _, r := range results {
		if r.NoOp {
			noOps++
		}
	}
	if noOps == len(results) && len(results) > 0 {
		return Summary{}, fmt.Errorf("No changes made — every edit in this batch was a no-op. Re-read the file for current anchors.")
	}
	if noOps > 0 {
		warnings = append(warnings, fmt.Sprintf("%d edit(s) were no-ops (content already matched)", noOps))
	}

	newContent := strings.Join(newLines, "\n")
	if err := pathsafe.AtomicWrite(absPath, env.Restore(newContent), 0644); err != nil {
		return Summary{}, err
	}

	action := "updated"
	if !existed {
		action = "created"
	}

	logger.Info().Int("edits", len(ordered)).Str("action", action).Msg("execute_edit completed")

	return Summary{
		Action:       action,
		EditsApplied: len(ordered),
		LineDelta:    len(newLines) - len(lines),
		Warnings:     warnings,
	}, nil
}

func readExisting(absPath string) ([]byte, bool, error) {
	raw, err := os.ReadFile(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read %s: %w", absPath, err)
	}
	return raw, true, nil
}

func requireCreatableBatch(rawEdits []editop.RawEdit) error {
	for _, re := range rawEdits {
		if re.Op == editop.OpReplace {
			return fmt.Errorf("File not found: cannot replace into a missing file")
		}
		if strings.TrimSpace(re.Pos) != "" || strings.TrimSpace(re.End) != "" {
			return fmt.Errorf("File not found: anchored append/prepend against a missing file is not allowed")
		}
	}
	return nil
}

// prepareBatch runs repair then normalize on every raw edit, accumulating
// warnings. A Replace with no lines field drives the missing-lines
// ladder; once it bails out, softReject is returned and the caller must
// not write.
func prepareBatch(rawEdits []editop.RawEdit, lines []string, filePath string) (edits []editop.Edit, warnings []string, softReject string, err error) {
	for _, re := range rawEdits {
		repaired := repair.Repair(re)
		warnings = append(warnings, repaired.Warnings...)

		normalized, nerr := editop.Normalize(repaired.Edit)
		if nerr == nil {
			edits = append(edits, normalized)
			continue
		}

		if repaired.Edit.Op != editop.OpReplace || repaired.Edit.Lines != nil {
			return nil, warnings, "", nerr
		}

		a, hasAnchor := parseAnchorLoose(repaired.Edit.Pos)
		msg, soft := repair.MissingLines(repaired.Edit.Pos, a, hasAnchor, lines, filePath)
		if soft {
			return nil, warnings, msg, nil
		}
		return nil, warnings, "", fmt.Errorf("%s", msg)
	}

	deduped, dropped := editop.Dedup(edits)
	if dropped > 0 {
		warnings = append(warnings, fmt.Sprintf("dropped %d duplicate edit(s)", dropped))
	}
	cleaned := editop.CleanupBatch(deduped, lines)
	for _, e := range cleaned {
		warnings = append(warnings, e.Warnings...)
	}
	return cleaned, warnings, "", nil
}

func parseAnchorLoose(posText string) (anchor.Anchor, bool) {
	a, err := anchor.Parse(posText)
	if err != nil {
		return anchor.Anchor{}, false
	}
	return a, true
}

func validateEdits(edits []editop.Edit, lines []string) error {
	var anchors []anchor.Anchor
	for _, e := range edits {
		if e.HasPos {
			anchors = append(anchors, e.Pos)
		}
		if e.HasEnd {
			anchors = append(anchors, e.End)
		}
	}
	return anchor.ValidateBatch(anchors, lines)
}

// ReadFileHashlined exposes the fsread collaborator through the engine so
// callers only need one entry point.
func (e *Engine) ReadFileHashlined(path string, opts fsread.WindowOptions) (fsread.Result, error) {
	absPath, err := pathsafe.Resolve(path, e.cfg.Engine.ProjectRootOrDefault())
	if err != nil {
		return fsread.Result{}, err
	}
	return fsread.ReadFileHashlined(absPath, opts)
}

// ResetFailureLedger clears the process-wide missing-lines failure
// counters, for use between independent sessions or tests.
func (e *Engine) ResetFailureLedger() {
	repair.Reset()
}

// StreamHashlines exposes the lazy hashline formatter.
func (e *Engine) StreamHashlines(content string, opts hashline.StreamOptions, yield func(string) bool) {
	hashline.StreamLines(strings.Split(content, "\n"), opts, yield)
}
