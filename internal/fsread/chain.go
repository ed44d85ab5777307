package fsread

import (
	"bufio"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"golang.org/x/sync/errgroup"
)

// defaultDenyDirs are always ignored regardless of any ignore file.
var defaultDenyDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
	".hg":          true,
	".svn":         true,
	"vendor":       true,
	".DS_Store":    true,
}

// ignoreFileNames are layered, in this priority order, from the
// repository root down through the target directory, plus
// .git/info/exclude.
var ignoreFileNames = []string{".gitignore", ".ignore", ".fdignore"}

// ignoreRule is one parsed line of an ignore file.
type ignoreRule struct {
	pattern  string
	regex    *regexp.Regexp
	negation bool
	dirOnly  bool
	anchored bool
}

// layer holds the parsed rules of a single ignore file.
type layer struct {
	rules []*ignoreRule
}

// loadLayer parses an ignore file at path into a layer. A missing file
// yields an empty layer rather than an error, since most candidate paths
// in a chain won't exist.
func loadLayer(path string) (*layer, error) {
	l := &layer{}

	if path == "" {
		return l, nil
	}

	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return l, nil
		}
		return nil, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if rule := parseIgnoreRule(line); rule != nil {
			l.rules = append(l.rules, rule)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return l, nil
}

// matches reports whether path (relative, slash-separated) is ignored by
// this layer's rules. Later rules in the file win over earlier ones, so a
// trailing negation can re-include something an earlier pattern excluded.
func (l *layer) matches(path string, isDir bool) bool {
	if l == nil || len(l.rules) == 0 {
		return false
	}

	path = filepath.ToSlash(path)

	var lastMatch bool
	for _, rule := range l.rules {
		if rule.dirOnly {
			if isDir && rule.regex.MatchString(path) {
				lastMatch = !rule.negation
			} else if !isDir && rule.regex.MatchString(filepath.Dir(path)) {
				lastMatch = !rule.negation
			}
			continue
		}

		if rule.anchored {
			if rule.regex.MatchString(path) {
				lastMatch = !rule.negation
			}
		} else if rule.regex.MatchString(path) || rule.regex.MatchString(filepath.Base(path)) {
			lastMatch = !rule.negation
		}
	}

	return lastMatch
}

// parseIgnoreRule converts one ignore-file line into a compiled rule.
func parseIgnoreRule(line string) *ignoreRule {
	original := line
	negation := false
	dirOnly := false
	anchored := false

	if strings.HasPrefix(line, "!") {
		negation = true
		line = line[1:]
	}

	if strings.HasPrefix(line, "/") {
		anchored = true
	}

	if strings.HasSuffix(line, "/") {
		dirOnly = true
		line = strings.TrimSuffix(line, "/")
	}

	regexPattern := globToRegex(line)
	regex, err := regexp.Compile(regexPattern)
	if err != nil {
		return nil
	}

	return &ignoreRule{
		pattern:  original,
		regex:    regex,
		negation: negation,
		dirOnly:  dirOnly,
		anchored: anchored,
	}
}

// globToRegex converts an ignore-file glob pattern to a regex, following
// gitignore's matching rules: '*' stops at '/', '**' crosses directory
// boundaries, a leading '/' anchors to the start of the matched path.
func globToRegex(pattern string) string {
	var result strings.Builder

	anchored := false
	if strings.HasPrefix(pattern, "/") {
		result.WriteString("^")
		pattern = pattern[1:]
		anchored = true
	} else {
		result.WriteString("(^|/)")
	}

	i := 0
	for i < len(pattern) {
		ch := pattern[i]
		switch ch {
		case '*':
			if i+1 < len(pattern) && pattern[i+1] == '*' {
				if i+2 < len(pattern) && pattern[i+2] == '/' {
					result.WriteString("(.*/)?")
					i += 3
					continue
				}
				result.WriteString(".*")
				i += 2
			} else {
				result.WriteString("[^/]*")
				i++
			}
		case '?':
			result.WriteString("[^/]")
			i++
		case '.', '+', '(', ')', '|', '^', '$', '@', '%':
			result.WriteByte('\\')
			result.WriteByte(ch)
			i++
		case '[':
			j := i + 1
			for j < len(pattern) && pattern[j] != ']' {
				j++
			}
			if j < len(pattern) {
				result.WriteString(pattern[i : j+1])
				i = j + 1
			} else {
				result.WriteString("\\[")
				i++
			}
		case '\\':
			if i+1 < len(pattern) {
				result.WriteByte('\\')
				result.WriteByte(pattern[i+1])
				i += 2
			} else {
				result.WriteString("\\\\")
				i++
			}
		default:
			result.WriteByte(ch)
			i++
		}
	}

	if anchored {
		result.WriteString("$")
	} else {
		result.WriteString("(/.*)?$")
	}

	return result.String()
}

// Chain layers multiple ignore-file matchers: built-in deny list first,
// then each layer loaded along the path from the repository root down to
// the target directory, most specific last. Every layer's rules are
// matched against the path relative to the chain's root, including layers
// loaded from subdirectories. A path is ignored when any layer ignores
// it; a negation re-includes a path only within its own file and does not
// override an ignore from another layer.
type Chain struct {
	layers []*layer
}

// LoadChain concurrently loads every applicable ignore file between root
// and dir (inclusive), plus .git/info/exclude at root, using errgroup so
// the several file reads overlap.
func LoadChain(root, dir string) (*Chain, error) {
	dirs := dirsFromRootTo(root, dir)

	var candidates []string
	for _, d := range dirs {
		for _, name := range ignoreFileNames {
			candidates = append(candidates, filepath.Join(d, name))
		}
	}
	candidates = append(candidates, filepath.Join(root, ".git", "info", "exclude"))

	results := make([]*layer, len(candidates))
	var g errgroup.Group
	for i, path := range candidates {
		i, path := i, path
		g.Go(func() error {
			l, err := loadLayer(path)
			if err != nil {
				return err
			}
			results[i] = l
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	chain := &Chain{}
	for _, l := range results {
		if l != nil && len(l.rules) > 0 {
			chain.layers = append(chain.layers, l)
		}
	}
	return chain, nil
}

func dirsFromRootTo(root, dir string) []string {
	rootAbs, err1 := filepath.Abs(root)
	dirAbs, err2 := filepath.Abs(dir)
	if err1 != nil || err2 != nil {
		return []string{dir}
	}
	rel, err := filepath.Rel(rootAbs, dirAbs)
	if err != nil || strings.HasPrefix(rel, "..") {
		return []string{dirAbs}
	}

	dirs := []string{rootAbs}
	if rel == "." {
		return dirs
	}
	parts := strings.Split(filepath.ToSlash(rel), "/")
	cur := rootAbs
	for _, p := range parts {
		cur = filepath.Join(cur, p)
		dirs = append(dirs, cur)
	}
	return dirs
}

// Ignored reports whether relPath (relative to the chain's root, slash
// separated) is ignored by the built-in deny list or by any layered
// matcher.
func (c *Chain) Ignored(relPath string, isDir bool) bool {
	for _, part := range strings.Split(filepath.ToSlash(relPath), "/") {
		if defaultDenyDirs[part] {
			return true
		}
	}
	if c == nil {
		return false
	}
	ignored := false
	for _, l := range c.layers {
		if l.matches(relPath, isDir) {
			ignored = true
		}
	}
	return ignored
}

// findGitRoot walks upward from dir looking for a .git directory,
// returning dir itself if none is found.
func findGitRoot(dir string) string {
	cur := dir
	for {
		if info, err := os.Stat(filepath.Join(cur, ".git")); err == nil && info.IsDir() {
			return cur
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return dir
		}
		cur = parent
	}
}
