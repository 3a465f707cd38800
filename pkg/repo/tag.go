package repo

import (
	"fmt"
	"strings"

	"github.com/odvcencio/rgit/pkg/object"
)

// CreateTag points refs/tags/<name> at target.
func (r *Repo) CreateTag(name string, target object.OID) error {
	if err := validateShortRefName("tag", name); err != nil {
		return fmt.Errorf("create tag: %w", err)
	}
	if err := r.UpdateRef(tagPrefix+name, DirectRef(target), true); err != nil {
		return fmt.Errorf("create tag %q: %w", name, err)
	}
	return nil
}

// TagNames returns the names under refs/tags/, sorted.
func (r *Repo) TagNames() ([]string, error) {
	refs, err := r.IterRefs(tagPrefix, false)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	names := make([]string, 0, len(refs))
	for _, ref := range refs {
		names = append(names, strings.TrimPrefix(ref.Name, tagPrefix))
	}
	return names, nil
}
