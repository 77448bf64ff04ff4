package engine

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
)

// ignoreMatcher holds the compiled ignore patterns of a run.
type ignoreMatcher struct {
	patterns []ignorePattern
}

type ignorePattern struct {
	raw  string
	full glob.Glob
	base glob.Glob // set for **/ patterns, matched against the file name
}

func newIgnoreMatcher(patterns []string) (*ignoreMatcher, error) {
	m := &ignoreMatcher{}
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		full, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid ignore pattern %q: %w", p, err)
		}
		ip := ignorePattern{raw: p, full: full}
		if rest, ok := strings.CutPrefix(p, "**/"); ok && !strings.Contains(rest, "/") {
			base, err := glob.Compile(rest, '/')
			if err != nil {
				return nil, fmt.Errorf("invalid ignore pattern %q: %w", p, err)
			}
			ip.base = base
		}
		m.patterns = append(m.patterns, ip)
	}
	return m, nil
}

// match reports whether relPath is ignored. A directory also matches
// patterns that cover everything below it, such as "target/**".
func (m *ignoreMatcher) match(relPath string, isDir bool) bool {
	relPath = filepath.ToSlash(relPath)
	for _, p := range m.patterns {
		if p.full.Match(relPath) {
			return true
		}
		if isDir && p.full.Match(relPath+"/") {
			return true
		}
		if p.base != nil && p.base.Match(path.Base(relPath)) {
			return true
		}
	}
	return false
}
