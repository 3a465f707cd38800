package repo

import (
	"log/slog"

	"github.com/go-git/go-billy/v5"

	"github.com/odvcencio/rgit/pkg/merge"
	"github.com/odvcencio/rgit/pkg/object"
)

// MetaDirName is the name of the repository metadata directory.
const MetaDirName = ".rgit"

// Repo represents an opened rgit repository.
type Repo struct {
	RootDir  string           // working directory root
	MetaDir  string           // .rgit/ directory
	Worktree billy.Filesystem // rooted at RootDir
	Meta     billy.Filesystem // rooted at MetaDir
	Store    *object.Store    // content-addressed object store
	Index    IndexStore       // staging area persistence

	log    *slog.Logger
	merger merge.Merger
	ignore *ignoreMatcher
}

// Option configures a Repo at Init or Open time.
type Option func(*Repo)

// WithLogger sets the logger used for degraded-path reporting. The default
// discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(r *Repo) {
		if l != nil {
			r.log = l
		}
	}
}

// WithMerger overrides the blob merger selected from config.toml.
func WithMerger(m merge.Merger) Option {
	return func(r *Repo) {
		r.merger = m
	}
}

// WithIndexStore replaces the JSON index file with another persistence.
func WithIndexStore(s IndexStore) Option {
	return func(r *Repo) {
		if s != nil {
			r.Index = s
		}
	}
}

func newRepo(root, meta string, wt billy.Filesystem, opts []Option) (*Repo, error) {
	metaFS, err := wt.Chroot(MetaDirName)
	if err != nil {
		return nil, err
	}
	r := &Repo{
		RootDir:  root,
		MetaDir:  meta,
		Worktree: wt,
		Meta:     metaFS,
		Store:    object.NewStore(metaFS),
		log:      slog.New(slog.DiscardHandler),
		ignore:   newIgnoreMatcher(),
	}
	r.Index = NewFileIndex(metaFS)
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Logger returns the repository logger.
func (r *Repo) Logger() *slog.Logger {
	return r.log
}

// Merger returns the blob merger used by Merge. Unless overridden with
// WithMerger it is chosen from the [merge] section of config.toml.
func (r *Repo) Merger() (merge.Merger, error) {
	if r.merger != nil {
		return r.merger, nil
	}
	cfg, err := r.ReadConfig()
	if err != nil {
		return nil, err
	}
	return cfg.Merge.merger()
}
