package repo

import (
	"fmt"
)

// Checkout switches the working directory and index to the commit named by
// name. When name is a branch, HEAD becomes a symbolic ref to it; otherwise
// HEAD is detached at the resolved OID.
func (r *Repo) Checkout(name string) error {
	oid := r.GetOID(name)
	c, err := r.GetCommit(oid)
	if err != nil {
		return fmt.Errorf("checkout %s: %w", name, err)
	}
	if err := r.ReadTree(c.Tree, true); err != nil {
		return fmt.Errorf("checkout %s: %w", name, err)
	}

	head := DirectRef(oid)
	if r.IsBranch(name) {
		head = SymbolicRef(branchPrefix + name)
	}
	if err := r.UpdateRef(HeadRef, head, false); err != nil {
		return fmt.Errorf("checkout %s: %w", name, err)
	}
	r.log.Info("checked out", "name", name, "oid", oid)
	return nil
}
