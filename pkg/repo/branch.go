package repo

import (
	"fmt"
	"strings"

	"github.com/odvcencio/rgit/pkg/object"
)

const (
	branchPrefix = "refs/heads/"
	tagPrefix    = "refs/tags/"
	remotePrefix = "refs/remote/"
)

// validateShortRefName checks a branch or tag name before it is joined to
// a namespace.
func validateShortRefName(kind, name string) error {
	if name == "" {
		return fmt.Errorf("%s name is required", kind)
	}
	if name == "@" || name == HeadRef || strings.ContainsAny(name, " \t\n\r") {
		return fmt.Errorf("invalid %s name %q", kind, name)
	}
	return validateRefName(name)
}

// CreateBranch points refs/heads/<name> at target, replacing any existing
// branch of that name.
func (r *Repo) CreateBranch(name string, target object.OID) error {
	if err := validateShortRefName("branch", name); err != nil {
		return fmt.Errorf("create branch: %w", err)
	}
	if err := r.UpdateRef(branchPrefix+name, DirectRef(target), true); err != nil {
		return fmt.Errorf("create branch %q: %w", name, err)
	}
	return nil
}

// IsBranch reports whether refs/heads/<name> resolves to a value.
func (r *Repo) IsBranch(name string) bool {
	if validateShortRefName("branch", name) != nil {
		return false
	}
	v, err := r.GetRef(branchPrefix+name, true)
	return err == nil && v.Value != ""
}

// BranchNames returns the names under refs/heads/, sorted.
func (r *Repo) BranchNames() ([]string, error) {
	refs, err := r.IterRefs(branchPrefix, false)
	if err != nil {
		return nil, fmt.Errorf("list branches: %w", err)
	}
	names := make([]string, 0, len(refs))
	for _, ref := range refs {
		names = append(names, strings.TrimPrefix(ref.Name, branchPrefix))
	}
	return names, nil
}

// CurrentBranch returns the branch HEAD points at symbolically, or "" when
// HEAD is detached.
func (r *Repo) CurrentBranch() (string, error) {
	head, err := r.GetRef(HeadRef, false)
	if err != nil {
		return "", fmt.Errorf("current branch: %w", err)
	}
	if !head.Symbolic {
		return "", nil
	}
	name, ok := strings.CutPrefix(head.Value, branchPrefix)
	if !ok {
		return "", nil
	}
	return name, nil
}
