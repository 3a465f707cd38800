package repo

import (
	"strings"

	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// DefaultIgnorePatterns are always excluded from the working tree.
var DefaultIgnorePatterns = []string{MetaDirName, ".git", "target"}

type ignoreMatcher struct {
	m gitignore.Matcher
}

func newIgnoreMatcher() *ignoreMatcher {
	ps := make([]gitignore.Pattern, 0, len(DefaultIgnorePatterns))
	for _, p := range DefaultIgnorePatterns {
		ps = append(ps, gitignore.ParsePattern(p, nil))
	}
	return &ignoreMatcher{m: gitignore.NewMatcher(ps)}
}

// IsIgnored reports whether the repository-relative slash path p is excluded.
// A pattern matching any component of p excludes it.
func (r *Repo) IsIgnored(p string, isDir bool) bool {
	if p == "" || p == "." {
		return false
	}
	return r.ignore.m.Match(strings.Split(p, "/"), isDir)
}
