package repo

import (
	"testing"

	"github.com/go-git/go-billy/v5/util"

	"github.com/odvcencio/rgit/pkg/object"
)

const (
	oidA = object.OID("aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
	oidB = object.OID("bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb")
)

// Test 1: UpdateRef + GetRef round-trip for a direct ref.
func TestUpdateRef_GetRef_RoundTrip(t *testing.T) {
	r := newMemRepo(t)

	if err := r.UpdateRef("refs/heads/master", DirectRef(oidA), false); err != nil {
		t.Fatalf("UpdateRef: %v", err)
	}
	v, err := r.GetRef("refs/heads/master", true)
	if err != nil {
		t.Fatalf("GetRef: %v", err)
	}
	if v.Symbolic || v.OID() != oidA {
		t.Errorf("GetRef = %+v, want direct %s", v, oidA)
	}

	data, err := util.ReadFile(r.Meta, "refs/heads/master")
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != string(oidA)+"\n" {
		t.Errorf("ref file = %q, want OID plus newline", data)
	}
}

// Test 2: HEAD dereferences through the symbolic chain.
func TestGetRef_FollowsSymbolicHead(t *testing.T) {
	r := newMemRepo(t)

	raw, err := r.GetRef(HeadRef, false)
	if err != nil {
		t.Fatalf("GetRef(HEAD, false): %v", err)
	}
	if !raw.Symbolic || raw.Value != "refs/heads/master" {
		t.Errorf("HEAD = %+v, want symbolic refs/heads/master", raw)
	}

	// Unborn branch: deref yields the empty value.
	v, err := r.GetRef(HeadRef, true)
	if err != nil {
		t.Fatalf("GetRef(HEAD, true): %v", err)
	}
	if v.Value != "" {
		t.Errorf("unborn HEAD = %+v, want empty", v)
	}

	if err := r.UpdateRef(HeadRef, DirectRef(oidB), true); err != nil {
		t.Fatalf("UpdateRef(HEAD, deref): %v", err)
	}
	if got := r.GetOID("refs/heads/master"); got != oidB {
		t.Errorf("branch = %q, want %q (deref update must write the branch)", got, oidB)
	}
	raw, _ = r.GetRef(HeadRef, false)
	if !raw.Symbolic {
		t.Error("HEAD lost its symbolic value after deref update")
	}
}

// Test 3: a symbolic cycle resolves to the empty value instead of looping.
func TestGetRef_CycleIsEmpty(t *testing.T) {
	r := newMemRepo(t)

	if err := r.UpdateRef("refs/heads/x", SymbolicRef("refs/heads/y"), false); err != nil {
		t.Fatalf("UpdateRef x: %v", err)
	}
	if err := r.UpdateRef("refs/heads/y", SymbolicRef("refs/heads/x"), false); err != nil {
		t.Fatalf("UpdateRef y: %v", err)
	}

	v, err := r.GetRef("refs/heads/x", true)
	if err != nil {
		t.Fatalf("GetRef: %v", err)
	}
	if v.Value != "" {
		t.Errorf("cyclic ref = %+v, want empty", v)
	}
	if got := r.GetOID("x"); got != "x" {
		t.Errorf("GetOID(x) = %q, want literal fallback", got)
	}
}

// Test 4: GetOID search order, @ alias and literal fallback.
func TestGetOID_SearchOrder(t *testing.T) {
	r := newMemRepo(t)

	if err := r.UpdateRef("refs/heads/v1", DirectRef(oidA), false); err != nil {
		t.Fatalf("UpdateRef: %v", err)
	}
	if got := r.GetOID("v1"); got != oidA {
		t.Errorf("GetOID(v1) = %q, want branch %q", got, oidA)
	}

	// A tag of the same name is found before the branch.
	if err := r.UpdateRef("refs/tags/v1", DirectRef(oidB), false); err != nil {
		t.Fatalf("UpdateRef: %v", err)
	}
	if got := r.GetOID("v1"); got != oidB {
		t.Errorf("GetOID(v1) = %q, want tag %q", got, oidB)
	}

	if err := r.UpdateRef(HeadRef, DirectRef(oidA), true); err != nil {
		t.Fatalf("UpdateRef HEAD: %v", err)
	}
	if got := r.GetOID("@"); got != oidA {
		t.Errorf("GetOID(@) = %q, want %q", got, oidA)
	}

	literal := "0123456789abcdef0123456789abcdef01234567"
	if got := r.GetOID(literal); string(got) != literal {
		t.Errorf("GetOID(literal) = %q, want %q", got, literal)
	}
	if got := r.GetOID("../escape"); got != "../escape" {
		t.Errorf("GetOID(../escape) = %q, want literal", got)
	}
}

// Test 5: DeleteRef is a no-op on a missing ref.
func TestDeleteRef(t *testing.T) {
	r := newMemRepo(t)

	if err := r.DeleteRef("refs/heads/none", false); err != nil {
		t.Fatalf("DeleteRef missing: %v", err)
	}
	if err := r.UpdateRef(MergeHeadRef, DirectRef(oidA), false); err != nil {
		t.Fatalf("UpdateRef: %v", err)
	}
	if err := r.DeleteRef(MergeHeadRef, false); err != nil {
		t.Fatalf("DeleteRef: %v", err)
	}
	if v, _ := r.GetRef(MergeHeadRef, true); v.Value != "" {
		t.Errorf("MERGE_HEAD = %+v after delete", v)
	}
}

// Test 6: IterRefs lists pseudo-refs only when present, sorted, with prefix.
func TestIterRefs(t *testing.T) {
	r := newMemRepo(t)

	for name, oid := range map[string]object.OID{
		"refs/heads/master":      oidA,
		"refs/heads/feature/one": oidB,
		"refs/tags/v1":           oidA,
	} {
		if err := r.UpdateRef(name, DirectRef(oid), false); err != nil {
			t.Fatalf("UpdateRef(%s): %v", name, err)
		}
	}

	refs, err := r.IterRefs("", true)
	if err != nil {
		t.Fatalf("IterRefs: %v", err)
	}
	var names []string
	for _, ref := range refs {
		names = append(names, ref.Name)
	}
	want := []string{"HEAD", "refs/heads/feature/one", "refs/heads/master", "refs/tags/v1"}
	if len(names) != len(want) {
		t.Fatalf("IterRefs names = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("IterRefs[%d] = %q, want %q", i, names[i], want[i])
		}
	}
	if refs[0].Value.OID() != oidA {
		t.Errorf("HEAD deref = %+v, want %s", refs[0].Value, oidA)
	}

	heads, err := r.IterRefs("refs/heads/", false)
	if err != nil {
		t.Fatalf("IterRefs(prefix): %v", err)
	}
	if len(heads) != 2 {
		t.Errorf("IterRefs(refs/heads/) = %v, want 2 refs", heads)
	}

	if err := r.UpdateRef(MergeHeadRef, DirectRef(oidB), false); err != nil {
		t.Fatalf("UpdateRef: %v", err)
	}
	refs, _ = r.IterRefs("MERGE", true)
	if len(refs) != 1 || refs[0].Name != MergeHeadRef {
		t.Errorf("IterRefs(MERGE) = %v, want MERGE_HEAD", refs)
	}
}

// Test 7: invalid ref names are rejected on write.
func TestUpdateRef_InvalidName(t *testing.T) {
	r := newMemRepo(t)

	for _, name := range []string{"", "/abs", "../out", "refs/../HEAD"} {
		if err := r.UpdateRef(name, DirectRef(oidA), false); err == nil {
			t.Errorf("UpdateRef(%q) should fail", name)
		}
	}
}
