package repo

import (
	"errors"
	"fmt"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/go-git/go-billy/v5/util"

	"github.com/odvcencio/rgit/pkg/object"
)

const (
	HeadRef      = "HEAD"
	MergeHeadRef = "MERGE_HEAD"

	symbolicPrefix = "ref: "

	// maxRefDepth bounds symbolic dereferencing. Longer chains and cycles
	// resolve to an empty value.
	maxRefDepth = 10
)

var errRefTooDeep = errors.New("symbolic ref chain too deep")

// RefValue is the content of a ref file: either an OID (direct) or the name
// of another ref (symbolic).
type RefValue struct {
	Symbolic bool
	Value    string
}

// DirectRef returns a RefValue pointing at oid.
func DirectRef(oid object.OID) RefValue {
	return RefValue{Value: string(oid)}
}

// SymbolicRef returns a RefValue pointing at another ref.
func SymbolicRef(name string) RefValue {
	return RefValue{Symbolic: true, Value: name}
}

// OID returns the value as an OID. Symbolic values yield "".
func (v RefValue) OID() object.OID {
	if v.Symbolic {
		return ""
	}
	return object.OID(v.Value)
}

func (v RefValue) String() string {
	if v.Symbolic {
		return symbolicPrefix + v.Value
	}
	return v.Value
}

// NamedRef pairs a ref name with its value.
type NamedRef struct {
	Name  string
	Value RefValue
}

func validateRefName(name string) error {
	if name == "" {
		return fmt.Errorf("empty ref name")
	}
	clean, err := cleanRelPath(name)
	if err != nil || clean != name || clean == "." {
		return fmt.Errorf("invalid ref name %q", name)
	}
	return nil
}

// readRefFile returns the stored value of name. A missing ref, or a path
// naming a directory, yields ok == false.
func (r *Repo) readRefFile(name string) (RefValue, bool, error) {
	if err := validateRefName(name); err != nil {
		return RefValue{}, false, err
	}
	info, err := r.Meta.Stat(name)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return RefValue{}, false, nil
		}
		return RefValue{}, false, fmt.Errorf("read ref %s: %w: %w", name, object.ErrIO, err)
	}
	if info.IsDir() {
		return RefValue{}, false, nil
	}
	data, err := util.ReadFile(r.Meta, name)
	if err != nil {
		return RefValue{}, false, fmt.Errorf("read ref %s: %w: %w", name, object.ErrIO, err)
	}
	text := strings.TrimSpace(string(data))
	if target, ok := strings.CutPrefix(text, symbolicPrefix); ok {
		return SymbolicRef(strings.TrimSpace(target)), true, nil
	}
	return RefValue{Value: text}, true, nil
}

// resolveRef returns the name of the ref that finally holds a value and
// that value. With deref, symbolic refs are followed up to maxRefDepth.
func (r *Repo) resolveRef(name string, deref bool, depth int) (string, RefValue, error) {
	v, ok, err := r.readRefFile(name)
	if err != nil {
		return name, RefValue{}, err
	}
	if !ok {
		return name, RefValue{}, nil
	}
	if !v.Symbolic || !deref {
		return name, v, nil
	}
	if depth >= maxRefDepth {
		return name, RefValue{}, errRefTooDeep
	}
	return r.resolveRef(v.Value, true, depth+1)
}

// GetRef reads the ref name. With deref, symbolic chains are followed to the
// final direct value. Missing refs, missing targets and cycles yield a
// RefValue with an empty Value.
func (r *Repo) GetRef(name string, deref bool) (RefValue, error) {
	_, v, err := r.resolveRef(name, deref, 0)
	if errors.Is(err, errRefTooDeep) {
		r.log.Warn("symbolic ref chain does not terminate", "ref", name)
		return RefValue{}, nil
	}
	if err != nil {
		return RefValue{}, err
	}
	return v, nil
}

// UpdateRef writes value to name, creating parent directories. With deref,
// the final ref of a symbolic chain starting at name is written instead.
func (r *Repo) UpdateRef(name string, value RefValue, deref bool) error {
	target, _, err := r.resolveRef(name, deref, 0)
	if err != nil {
		return fmt.Errorf("update ref %s: %w", name, err)
	}
	if value.Value == "" {
		return fmt.Errorf("update ref %s: empty value", name)
	}
	if err := writeFileAtomic(r.Meta, target, []byte(value.String()+"\n")); err != nil {
		return fmt.Errorf("update ref %s: %w", target, err)
	}
	r.log.Debug("updated ref", "ref", target, "value", value.String())
	return nil
}

// DeleteRef removes name, or the final ref of its chain with deref. Deleting
// a missing ref is not an error.
func (r *Repo) DeleteRef(name string, deref bool) error {
	target, _, err := r.resolveRef(name, deref, 0)
	if err != nil {
		return fmt.Errorf("delete ref %s: %w", name, err)
	}
	if err := r.Meta.Remove(target); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete ref %s: %w: %w", target, object.ErrIO, err)
	}
	r.log.Debug("deleted ref", "ref", target)
	return nil
}

// GetOID resolves a user-supplied name to an OID. It tries, in order, name,
// refs/<name>, refs/tags/<name> and refs/heads/<name>; the first ref with a
// value wins. "@" is an alias for HEAD. A name that matches no ref is
// returned unchanged as a literal OID.
func (r *Repo) GetOID(name string) object.OID {
	if name == "@" {
		name = HeadRef
	}
	for _, candidate := range []string{
		name,
		"refs/" + name,
		"refs/tags/" + name,
		"refs/heads/" + name,
	} {
		v, err := r.GetRef(candidate, true)
		if err != nil {
			r.log.Debug("skip ref candidate", "ref", candidate, "err", err)
			continue
		}
		if v.Value != "" {
			return v.OID()
		}
	}
	return object.OID(name)
}

// IterRefs lists HEAD, MERGE_HEAD and everything under refs/ whose name
// starts with prefix, sorted by name. The pseudo-refs are listed only when
// they exist.
func (r *Repo) IterRefs(prefix string, deref bool) ([]NamedRef, error) {
	var names []string
	for _, pseudo := range []string{HeadRef, MergeHeadRef} {
		if _, ok, err := r.readRefFile(pseudo); err != nil {
			return nil, err
		} else if ok {
			names = append(names, pseudo)
		}
	}
	if err := r.walkRefs("refs", &names); err != nil {
		return nil, fmt.Errorf("iter refs: %w", err)
	}
	sort.Strings(names)

	var out []NamedRef
	for _, name := range names {
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		v, err := r.GetRef(name, deref)
		if err != nil {
			return nil, err
		}
		out = append(out, NamedRef{Name: name, Value: v})
	}
	return out, nil
}

func (r *Repo) walkRefs(dir string, names *[]string) error {
	entries, err := r.Meta.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("%w: %w", object.ErrIO, err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".") {
			continue
		}
		full := path.Join(dir, e.Name())
		if e.IsDir() {
			if err := r.walkRefs(full, names); err != nil {
				return err
			}
			continue
		}
		*names = append(*names, full)
	}
	return nil
}
