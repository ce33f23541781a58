package analyzer

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
)

// ignoreMatcher applies the root .gitignore plus extra exclude patterns.
type ignoreMatcher struct {
	root     string
	ignore   []string
	negation []string
}

func newIgnoreMatcher(root string, exclude []string) *ignoreMatcher {
	m := &ignoreMatcher{root: root}
	m.load(filepath.Join(root, ".gitignore"))
	for _, pattern := range exclude {
		m.add(pattern)
	}
	return m
}

func (m *ignoreMatcher) load(path string) {
	file, err := os.Open(path)
	if err != nil {
		return
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		m.add(scanner.Text())
	}
}

func (m *ignoreMatcher) add(line string) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return
	}
	if pattern, ok := strings.CutPrefix(line, "!"); ok {
		m.negation = append(m.negation, pattern)
		return
	}
	m.ignore = append(m.ignore, line)
}

// Ignored reports whether path, inside root, is excluded.
func (m *ignoreMatcher) Ignored(path string, isDir bool) bool {
	rel, err := filepath.Rel(m.root, path)
	if err != nil || rel == "." {
		return false
	}
	rel = filepath.ToSlash(rel)

	ignored := false
	for _, pattern := range m.ignore {
		if matchPattern(pattern, rel, isDir) {
			ignored = true
			break
		}
	}
	if !ignored {
		return false
	}
	for _, pattern := range m.negation {
		if matchPattern(pattern, rel, isDir) {
			return false
		}
	}
	return true
}

// matchPattern matches one gitignore pattern against a slash separated
// path relative to the root.
func matchPattern(pattern, rel string, isDir bool) bool {
	parts := strings.Split(rel, "/")

	if dirPattern, ok := strings.CutSuffix(pattern, "/"); ok {
		// a directory pattern also excludes everything below it
		for i, part := range parts {
			if i == len(parts)-1 && !isDir {
				break
			}
			if matchGlob(dirPattern, part) || matchGlob(dirPattern, strings.Join(parts[:i+1], "/")) {
				return true
			}
		}
		return false
	}

	if anchored, ok := strings.CutPrefix(pattern, "/"); ok {
		return matchGlob(anchored, rel) || hasMatchingPrefix(anchored, parts)
	}

	if strings.Contains(pattern, "/") {
		return hasMatchingPrefix(pattern, parts)
	}

	for _, part := range parts {
		if matchGlob(pattern, part) {
			return true
		}
	}
	return false
}

func hasMatchingPrefix(pattern string, parts []string) bool {
	for i := range parts {
		if matchGlob(pattern, strings.Join(parts[:i+1], "/")) {
			return true
		}
	}
	return false
}

func matchGlob(pattern, name string) bool {
	if pattern == name {
		return true
	}
	ok, err := filepath.Match(pattern, name)
	return err == nil && ok
}
