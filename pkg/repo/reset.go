package repo

import (
	"fmt"

	"github.com/odvcencio/rgit/pkg/object"
)

// Reset moves HEAD, through the current branch, to oid. The index and
// working tree are left alone.
func (r *Repo) Reset(oid object.OID) error {
	if _, err := r.GetCommit(oid); err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	if err := r.UpdateRef(HeadRef, DirectRef(oid), true); err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	return nil
}
