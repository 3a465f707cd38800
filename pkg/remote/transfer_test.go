package remote

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odvcencio/rgit/pkg/merge"
	"github.com/odvcencio/rgit/pkg/object"
	"github.com/odvcencio/rgit/pkg/repo"
)

// newDiskRepo initializes a repository in a fresh temporary directory.
// Transfers copy objects concurrently, so these tests use the OS filesystem.
func newDiskRepo(t *testing.T) *repo.Repo {
	t.Helper()
	r, err := repo.Init(t.TempDir(), repo.WithMerger(merge.Builtin{}))
	require.NoError(t, err)
	return r
}

func commitFiles(t *testing.T, r *repo.Repo, files map[string]string, msg string) object.OID {
	t.Helper()
	paths := make([]string, 0, len(files))
	for p, content := range files {
		full := filepath.Join(r.RootDir, p)
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
		paths = append(paths, p)
	}
	require.NoError(t, r.Add(paths))
	oid, err := r.Commit(msg)
	require.NoError(t, err)
	return oid
}

func TestObjectsInCommits_Closure(t *testing.T) {
	r := newDiskRepo(t)
	c1 := commitFiles(t, r, map[string]string{"a.txt": "a\n", "dir/b.txt": "b\n"}, "one")
	c2 := commitFiles(t, r, map[string]string{"a.txt": "a2\n"}, "two")

	set, err := ObjectsInCommits(context.Background(), r, []object.OID{c2})
	require.NoError(t, err)

	// c1, c2, two root trees, dir/ tree, a, a2, b
	assert.Len(t, set, 8)
	for _, oid := range []object.OID{c1, c2, object.HashBytes([]byte("b\n")), object.HashBytes([]byte("a2\n"))} {
		assert.Contains(t, set, oid)
	}
	sorted := set.Sorted()
	for i := 1; i < len(sorted); i++ {
		assert.Less(t, string(sorted[i-1]), string(sorted[i]))
	}
}

func TestObjectsInCommits_SkipsMissingTree(t *testing.T) {
	r := newDiskRepo(t)
	missingTree := object.HashBytes([]byte("nowhere"))
	c, err := r.Store.WriteCommit(&object.Commit{Tree: missingTree, Message: "dangling"})
	require.NoError(t, err)

	set, err := ObjectsInCommits(context.Background(), r, []object.OID{c})
	require.NoError(t, err)
	assert.Equal(t, ObjectSet{c: {}}, set)
}

func TestObjectsInCommits_Canceled(t *testing.T) {
	r := newDiskRepo(t)
	c := commitFiles(t, r, map[string]string{"a": "1"}, "one")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := ObjectsInCommits(ctx, r, []object.OID{c})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFetch_CopiesClosureAndTrackingRefs(t *testing.T) {
	upstream := newDiskRepo(t)
	tip := commitFiles(t, upstream, map[string]string{"f.txt": "hello\n"}, "init")
	require.NoError(t, upstream.CreateBranch("dev", tip))
	devTip := commitFiles(t, upstream, map[string]string{"g.txt": "more\n"}, "second")
	require.NoError(t, upstream.CreateBranch("dev", devTip))

	local := newDiskRepo(t)
	res, err := Fetch(context.Background(), local, upstream.RootDir)
	require.NoError(t, err)

	assert.Equal(t, map[string]object.OID{
		"refs/remote/master": devTip,
		"refs/remote/dev":    devTip,
	}, res.Refs)
	assert.Equal(t, devTip, local.GetOID("remote/master"))

	want, err := ObjectsInCommits(context.Background(), upstream, []object.OID{devTip})
	require.NoError(t, err)
	assert.Equal(t, len(want), res.Objects)
	for oid := range want {
		assert.True(t, local.Store.Has(oid), "missing %s", oid)
	}

	// A second fetch finds nothing new.
	again, err := Fetch(context.Background(), local, upstream.RootDir)
	require.NoError(t, err)
	assert.Zero(t, again.Objects)
}

func TestFetch_SkipsObjectsAlreadyPresent(t *testing.T) {
	upstream := newDiskRepo(t)
	tip := commitFiles(t, upstream, map[string]string{"a.txt": "a\n", "b.txt": "b\n", "c.txt": "c\n"}, "init")
	closure, err := ObjectsInCommits(context.Background(), upstream, []object.OID{tip})
	require.NoError(t, err)

	local := newDiskRepo(t)
	preexisting := 0
	for _, content := range []string{"a\n", "b\n"} {
		oid, err := local.Store.Write(object.KindBlob, []byte(content))
		require.NoError(t, err)
		require.Contains(t, closure, oid)
		preexisting++
	}

	res, err := Fetch(context.Background(), local, upstream.RootDir)
	require.NoError(t, err)
	assert.Equal(t, len(closure)-preexisting, res.Objects)
	assert.Zero(t, res.Missing)
	for oid := range closure {
		assert.True(t, local.Store.Has(oid), "missing %s", oid)
	}
}

// A blob deleted from the remote store is reported, and the fetch still
// copies everything else and writes the tracking ref.
func TestFetch_MissingRemoteObjectSkipped(t *testing.T) {
	upstream := newDiskRepo(t)
	tip := commitFiles(t, upstream, map[string]string{"good.txt": "good\n", "bad.txt": "bad\n"}, "init")
	bad := object.HashBytes([]byte("bad\n"))
	require.NoError(t, os.Remove(filepath.Join(upstream.MetaDir, "objects", string(bad))))

	local := newDiskRepo(t)
	res, err := Fetch(context.Background(), local, upstream.RootDir)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Missing)
	assert.Equal(t, 3, res.Objects) // commit, tree, good.txt
	assert.Equal(t, tip, res.Refs["refs/remote/master"])
	assert.Equal(t, tip, local.GetOID("remote/master"))
	assert.False(t, local.Store.Has(bad))
}

func TestFetch_NotARepository(t *testing.T) {
	local := newDiskRepo(t)
	_, err := Fetch(context.Background(), local, t.TempDir())
	assert.Error(t, err)
}

func TestPush_SendsOnlyUnknownObjects(t *testing.T) {
	local := newDiskRepo(t)
	c1 := commitFiles(t, local, map[string]string{"a.txt": "1\n"}, "one")

	upstream := newDiskRepo(t)
	res, err := Push(context.Background(), local, upstream.RootDir, "master", PushOptions{})
	require.NoError(t, err)
	assert.Equal(t, "refs/heads/master", res.Ref)
	assert.Empty(t, res.Old)
	assert.Equal(t, c1, res.New)
	assert.Equal(t, 3, res.Objects) // commit, tree, blob
	assert.Equal(t, c1, upstream.GetOID("master"))

	c2 := commitFiles(t, local, map[string]string{"b.txt": "2\n"}, "two")
	res, err = Push(context.Background(), local, upstream.RootDir, "refs/heads/master", PushOptions{})
	require.NoError(t, err)
	assert.Equal(t, c1, res.Old)
	assert.Equal(t, 3, res.Objects) // commit, new root tree, b.txt
	assert.Equal(t, c2, upstream.GetOID("master"))

	// The pushed history is complete on the remote.
	entries, err := upstream.Log([]object.OID{c2}, 0)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestPush_RejectsNonFastForward(t *testing.T) {
	local := newDiskRepo(t)
	commitFiles(t, local, map[string]string{"a": "1"}, "one")

	upstream := newDiskRepo(t)
	remoteTip := commitFiles(t, upstream, map[string]string{"z": "remote"}, "theirs")

	_, err := Push(context.Background(), local, upstream.RootDir, "master", PushOptions{})
	require.ErrorIs(t, err, ErrNonFastForward)
	assert.Equal(t, remoteTip, upstream.GetOID("master"))

	res, err := Push(context.Background(), local, upstream.RootDir, "master", PushOptions{Force: true})
	require.NoError(t, err)
	assert.Equal(t, remoteTip, res.Old)
	assert.Equal(t, local.GetOID("master"), upstream.GetOID("master"))
}

// Objects reachable only from a detached remote HEAD are not sent again.
func TestPush_DetachedRemoteHeadIsKnown(t *testing.T) {
	local := newDiskRepo(t)
	commitFiles(t, local, map[string]string{"a.txt": "1\n"}, "one")
	upstream := newDiskRepo(t)
	_, err := Push(context.Background(), local, upstream.RootDir, "master", PushOptions{})
	require.NoError(t, err)

	c2 := commitFiles(t, local, map[string]string{"b.txt": "2\n"}, "two")
	require.NoError(t, local.CreateBranch("tmp", c2))
	_, err = Push(context.Background(), local, upstream.RootDir, "tmp", PushOptions{})
	require.NoError(t, err)
	require.NoError(t, upstream.Checkout(string(c2)))
	require.NoError(t, upstream.DeleteRef("refs/heads/tmp", false))

	commitFiles(t, local, map[string]string{"c.txt": "3\n"}, "three")
	res, err := Push(context.Background(), local, upstream.RootDir, "master", PushOptions{})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Objects) // commit, new root tree, c.txt
}

func TestPush_UnknownRef(t *testing.T) {
	local := newDiskRepo(t)
	upstream := newDiskRepo(t)
	_, err := Push(context.Background(), local, upstream.RootDir, "nope", PushOptions{})
	assert.Error(t, err)
}

func TestCopyObjects_UsesConfiguredConcurrency(t *testing.T) {
	src := newDiskRepo(t)
	files := make(map[string]string)
	for _, name := range []string{"a", "b", "c", "d", "e", "f"} {
		files[name] = name + "\n"
	}
	tip := commitFiles(t, src, files, "many")
	set, err := ObjectsInCommits(context.Background(), src, []object.OID{tip})
	require.NoError(t, err)

	dst := newDiskRepo(t)
	assert.Equal(t, repo.DefaultTransferConcurrency, concurrency(dst))
	cfg, err := dst.ReadConfig()
	require.NoError(t, err)
	cfg.Transfer.Concurrency = 2
	require.NoError(t, dst.WriteConfig(cfg))
	require.Equal(t, 2, concurrency(dst))

	stats, err := copyObjects(context.Background(), dst.Logger(), dst.Store, src.Store, set.Sorted(), concurrency(dst))
	require.NoError(t, err)
	assert.Equal(t, copyStats{Copied: len(set)}, stats)

	raw, err := dst.Store.ReadRaw(tip)
	require.NoError(t, err)
	want, err := src.Store.ReadRaw(tip)
	require.NoError(t, err)
	assert.Equal(t, want, raw)
}

func TestCopyObjects_ZeroConcurrencyRunsSerially(t *testing.T) {
	src := newDiskRepo(t)
	tip := commitFiles(t, src, map[string]string{"a": "1"}, "one")
	dst := newDiskRepo(t)

	stats, err := copyObjects(context.Background(), dst.Logger(), dst.Store, src.Store, []object.OID{tip}, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Copied)
}

func TestCopyObjects_MissingSourceSkipped(t *testing.T) {
	src := newDiskRepo(t)
	present := commitFiles(t, src, map[string]string{"a": "1"}, "one")
	dst := newDiskRepo(t)

	absent := object.HashBytes([]byte("x"))
	stats, err := copyObjects(context.Background(), dst.Logger(), dst.Store, src.Store, []object.OID{absent, present}, 2)
	require.NoError(t, err)
	assert.Equal(t, copyStats{Copied: 1, Missing: 1}, stats)
	assert.True(t, dst.Store.Has(present))
	assert.False(t, dst.Store.Has(absent))
}
