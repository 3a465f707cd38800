package merge

import (
	"context"
	"errors"
	"os/exec"
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/stretchr/testify/require"

	"github.com/odvcencio/rgit/pkg/object"
)

// countingMerger records how often it is invoked and delegates to Builtin.
type countingMerger struct {
	calls int
}

func (c *countingMerger) Merge(ctx context.Context, base, head, other []byte) ([]byte, error) {
	c.calls++
	return Builtin{}.Merge(ctx, base, head, other)
}

type failingMerger struct{}

func (failingMerger) Merge(context.Context, []byte, []byte, []byte) ([]byte, error) {
	return nil, object.ErrIO
}

func blob(t *testing.T, s *object.Store, content string) object.OID {
	t.Helper()
	oid, err := s.Write(object.KindBlob, []byte(content))
	require.NoError(t, err)
	return oid
}

func TestTrees_TrivialPathsSkipMerger(t *testing.T) {
	s := object.NewStore(memfs.New())
	a := blob(t, s, "a\n")
	a2 := blob(t, s, "a changed\n")
	b := blob(t, s, "b\n")
	c := blob(t, s, "c\n")

	base := map[string]object.OID{"same": a, "head-only-change": a, "other-only-change": a, "deleted-by-other": b}
	head := map[string]object.OID{"same": a, "head-only-change": a2, "other-only-change": a, "deleted-by-other": b, "added-by-head": c}
	other := map[string]object.OID{"same": a, "head-only-change": a, "other-only-change": a2}

	m := &countingMerger{}
	res, err := Trees(context.Background(), s, m, base, head, other)
	require.NoError(t, err)
	require.Zero(t, m.calls)
	require.Empty(t, res.Conflicts)
	require.Empty(t, res.Files)
	require.Equal(t, map[string]object.OID{
		"same":              a,
		"head-only-change":  a2,
		"other-only-change": a2,
		"added-by-head":     c,
	}, res.Kept)
}

// Trivially resolved paths are carried by OID, so their blobs need not be
// present.
func TestTrees_TrivialPathsNotRead(t *testing.T) {
	s := object.NewStore(memfs.New())
	gone := object.HashBytes([]byte("never written"))
	head := map[string]object.OID{"f": gone}

	res, err := Trees(context.Background(), s, Builtin{}, nil, head, nil)
	require.NoError(t, err)
	require.Equal(t, map[string]object.OID{"f": gone}, res.Kept)
	require.Empty(t, res.Skipped)
}

func TestTrees_DivergentPathUsesMerger(t *testing.T) {
	s := object.NewStore(memfs.New())
	base := map[string]object.OID{"f": blob(t, s, "one\ntwo\nthree\n")}
	head := map[string]object.OID{"f": blob(t, s, "ONE\ntwo\nthree\n")}
	other := map[string]object.OID{"f": blob(t, s, "one\ntwo\nTHREE\n")}

	m := &countingMerger{}
	res, err := Trees(context.Background(), s, m, base, head, other)
	require.NoError(t, err)
	require.Equal(t, 1, m.calls)
	require.Equal(t, "ONE\ntwo\nTHREE\n", string(res.Files["f"]))
	require.Empty(t, res.Conflicts)
}

func TestTrees_ConflictReported(t *testing.T) {
	s := object.NewStore(memfs.New())
	base := map[string]object.OID{"f": blob(t, s, "x\n")}
	head := map[string]object.OID{"f": blob(t, s, "head\n")}
	other := map[string]object.OID{"f": blob(t, s, "other\n")}

	res, err := Trees(context.Background(), s, Builtin{}, base, head, other)
	require.NoError(t, err)
	require.Equal(t, []string{"f"}, res.Conflicts)
	require.Equal(t,
		"<<<<<<< HEAD\nhead\n||||||| BASE\nx\n=======\nother\n>>>>>>> MERGE_HEAD\n",
		string(res.Files["f"]))
}

func TestTrees_AddedOnBothSidesDifferently(t *testing.T) {
	s := object.NewStore(memfs.New())
	head := map[string]object.OID{"new": blob(t, s, "mine\n")}
	other := map[string]object.OID{"new": blob(t, s, "theirs\n")}

	res, err := Trees(context.Background(), s, Builtin{}, nil, head, other)
	require.NoError(t, err)
	require.Contains(t, string(res.Files["new"]), "<<<<<<< HEAD\nmine\n")
	require.Equal(t, []string{"new"}, res.Conflicts)
}

func TestTrees_MergerErrorAborts(t *testing.T) {
	s := object.NewStore(memfs.New())
	base := map[string]object.OID{"f": blob(t, s, "x\n")}
	head := map[string]object.OID{"f": blob(t, s, "y\n")}
	other := map[string]object.OID{"f": blob(t, s, "z\n")}

	_, err := Trees(context.Background(), s, failingMerger{}, base, head, other)
	require.ErrorIs(t, err, object.ErrIO)
}

func TestTrees_UnreadableSideMergedAsEmpty(t *testing.T) {
	s := object.NewStore(memfs.New())
	base := map[string]object.OID{"f": blob(t, s, "x\n"), "g": blob(t, s, "one\n")}
	head := map[string]object.OID{"f": object.HashBytes([]byte("never written")), "g": blob(t, s, "ONE\n")}
	other := map[string]object.OID{"f": blob(t, s, "y\n"), "g": base["g"]}

	res, err := Trees(context.Background(), s, Builtin{}, base, head, other)
	require.NoError(t, err)
	require.Equal(t, []string{"f"}, res.Skipped)
	require.Contains(t, res.Files, "f")
	require.Equal(t, map[string]object.OID{"g": head["g"]}, res.Kept)
}

func TestBlobs_MissingBlob(t *testing.T) {
	s := object.NewStore(memfs.New())
	_, err := Blobs(context.Background(), s, Builtin{}, "", object.HashBytes([]byte("never written")), "")
	require.ErrorIs(t, err, object.ErrNotFound)
}

func TestBlobs_AbsentSidesAreEmpty(t *testing.T) {
	s := object.NewStore(memfs.New())
	other := blob(t, s, "content\n")

	out, err := Blobs(context.Background(), s, Builtin{}, "", "", other)
	require.NoError(t, err)
	require.Equal(t, "content\n", string(out))
}

func TestNew(t *testing.T) {
	m, err := New("builtin", "")
	require.NoError(t, err)
	require.IsType(t, Builtin{}, m)

	m, err = New("", "")
	require.NoError(t, err)
	require.Equal(t, ExternalTool{}, m)

	_, err = New("kdiff", "")
	require.Error(t, err)
}

func TestExternalTool_MissingCommand(t *testing.T) {
	tool := ExternalTool{Command: "rgit-no-such-merge-tool"}
	_, err := tool.Merge(context.Background(), nil, []byte("a\n"), []byte("b\n"))
	require.ErrorIs(t, err, object.ErrIO)
}

func TestExternalTool_Diff3(t *testing.T) {
	if _, err := exec.LookPath(DefaultCommand); err != nil {
		t.Skip("diff3 not installed")
	}
	tool := ExternalTool{}

	out, err := tool.Merge(context.Background(),
		[]byte("one\ntwo\nthree\n"),
		[]byte("ONE\ntwo\nthree\n"),
		[]byte("one\ntwo\nTHREE\n"))
	require.NoError(t, err)
	require.Equal(t, "ONE\ntwo\nTHREE\n", string(out))

	out, err = tool.Merge(context.Background(), []byte("x\n"), []byte("head\n"), []byte("other\n"))
	require.NoError(t, err)
	require.Contains(t, string(out), "<<<<<<< HEAD")
	require.Contains(t, string(out), ">>>>>>> MERGE_HEAD")
}

func TestBuiltin_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Builtin{}.Merge(ctx, nil, nil, nil)
	require.True(t, errors.Is(err, context.Canceled))
}
