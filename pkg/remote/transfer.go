package remote

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5/osfs"

	"github.com/odvcencio/rgit/pkg/object"
	"github.com/odvcencio/rgit/pkg/repo"
)

const (
	headsPrefix  = "refs/heads/"
	remotePrefix = "refs/remote/"
)

// ErrNonFastForward is returned by Push when the remote ref would lose
// commits it currently points at.
var ErrNonFastForward = errors.New("non-fast-forward push rejected")

// FetchResult reports what a fetch changed locally.
type FetchResult struct {
	// Refs maps each remote-tracking ref written to its new OID.
	Refs    map[string]object.OID
	Objects int
	// Missing counts closure objects absent from the remote store.
	Missing int
}

// PushOptions controls push behavior.
type PushOptions struct {
	Force bool
}

// PushResult reports what a push changed on the remote.
type PushResult struct {
	Ref     string
	Old     object.OID
	New     object.OID
	Objects int
	Missing int // closure objects absent from the local store
}

// OpenRemote opens the repository whose working tree is at path.
func OpenRemote(local *repo.Repo, path string) (*repo.Repo, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("open remote %q: %w", path, err)
	}
	rr, err := repo.OpenFS(abs, osfs.New(abs), repo.WithLogger(local.Logger().With("remote", abs)))
	if err != nil {
		return nil, fmt.Errorf("open remote %q: %w", path, err)
	}
	return rr, nil
}

// Fetch copies the branches of the repository at remotePath into local.
func Fetch(ctx context.Context, local *repo.Repo, remotePath string) (*FetchResult, error) {
	rr, err := OpenRemote(local, remotePath)
	if err != nil {
		return nil, err
	}
	return FetchFrom(ctx, local, rr)
}

// FetchFrom copies every object reachable from rr's branches into local
// and points refs/remote/<branch> at each branch tip. Refs are written only
// after all objects have been copied.
func FetchFrom(ctx context.Context, local, rr *repo.Repo) (*FetchResult, error) {
	heads, err := rr.IterRefs(headsPrefix, true)
	if err != nil {
		return nil, fmt.Errorf("fetch: list remote branches: %w", err)
	}
	tips := make([]object.OID, 0, len(heads))
	for _, h := range heads {
		if oid := h.Value.OID(); oid != "" {
			tips = append(tips, oid)
		}
	}

	closure, err := ObjectsInCommits(ctx, rr, tips)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	stats, err := copyObjects(ctx, local.Logger(), local.Store, rr.Store, closure.Sorted(), concurrency(local))
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}

	res := &FetchResult{Refs: make(map[string]object.OID, len(heads)), Objects: stats.Copied, Missing: stats.Missing}
	for _, h := range heads {
		oid := h.Value.OID()
		if oid == "" {
			continue
		}
		name := remotePrefix + strings.TrimPrefix(h.Name, headsPrefix)
		if err := local.UpdateRef(name, repo.DirectRef(oid), true); err != nil {
			return res, fmt.Errorf("fetch: %w", err)
		}
		res.Refs[name] = oid
	}
	local.Logger().Info("fetch complete", "refs", len(res.Refs), "objects", res.Objects, "missing", res.Missing)
	return res, nil
}

// Push sends refName from local to the repository at remotePath.
func Push(ctx context.Context, local *repo.Repo, remotePath, refName string, opts PushOptions) (*PushResult, error) {
	rr, err := OpenRemote(local, remotePath)
	if err != nil {
		return nil, err
	}
	return PushTo(ctx, local, rr, refName, opts)
}

// PushTo copies the objects behind local's refName that rr does not already
// know about, then points the same ref in rr at the local OID. A short name
// is taken to be a branch.
func PushTo(ctx context.Context, local, rr *repo.Repo, refName string, opts PushOptions) (*PushResult, error) {
	full := refName
	if !strings.HasPrefix(full, "refs/") {
		full = headsPrefix + refName
	}
	v, err := local.GetRef(full, true)
	if err != nil {
		return nil, fmt.Errorf("push %s: %w", full, err)
	}
	oid := v.OID()
	if oid == "" {
		return nil, fmt.Errorf("push %s: ref does not exist locally", full)
	}

	old, err := rr.GetRef(full, true)
	if err != nil {
		return nil, fmt.Errorf("push %s: read remote ref: %w", full, err)
	}
	oldOID := old.OID()
	if oldOID != "" && oldOID != oid && !opts.Force && !local.IsAncestorOf(oid, oldOID) {
		return nil, fmt.Errorf("push %s: %w", full, ErrNonFastForward)
	}

	known, err := knownObjects(ctx, local, rr)
	if err != nil {
		return nil, fmt.Errorf("push %s: %w", full, err)
	}
	closure, err := ObjectsInCommits(ctx, local, []object.OID{oid})
	if err != nil {
		return nil, fmt.Errorf("push %s: %w", full, err)
	}
	send := make([]object.OID, 0, len(closure))
	for _, o := range closure.Sorted() {
		if _, ok := known[o]; !ok {
			send = append(send, o)
		}
	}

	stats, err := copyObjects(ctx, local.Logger(), rr.Store, local.Store, send, concurrency(local))
	if err != nil {
		return nil, fmt.Errorf("push %s: %w", full, err)
	}
	if err := rr.UpdateRef(full, repo.DirectRef(oid), true); err != nil {
		return nil, fmt.Errorf("push %s: %w", full, err)
	}
	local.Logger().Info("push complete", "ref", full, "old", oldOID, "new", oid, "objects", stats.Copied, "missing", stats.Missing)
	return &PushResult{Ref: full, Old: oldOID, New: oid, Objects: stats.Copied, Missing: stats.Missing}, nil
}

// knownObjects returns the closure, computed in local, of every remote ref
// value that local also has. HEAD counts, so a detached remote HEAD is
// known too.
func knownObjects(ctx context.Context, local, rr *repo.Repo) (ObjectSet, error) {
	refs, err := rr.IterRefs("", true)
	if err != nil {
		return nil, fmt.Errorf("list remote refs: %w", err)
	}
	var seeds []object.OID
	for _, ref := range refs {
		if oid := ref.Value.OID(); oid != "" && local.Store.Has(oid) {
			seeds = append(seeds, oid)
		}
	}
	return ObjectsInCommits(ctx, local, seeds)
}

func concurrency(r *repo.Repo) int {
	cfg, err := r.ReadConfig()
	if err != nil {
		r.Logger().Warn("read config, using default transfer concurrency", "err", err)
		return repo.DefaultTransferConcurrency
	}
	return cfg.TransferConcurrency()
}
