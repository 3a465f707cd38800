package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/odvcencio/rgit/pkg/merge"
	"github.com/odvcencio/rgit/pkg/object"
	"github.com/odvcencio/rgit/pkg/repo"
)

// app holds state shared by every subcommand of one invocation.
type app struct {
	v   *viper.Viper
	log *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New(), log: slog.New(slog.DiscardHandler)}

	root := &cobra.Command{
		Use:           "rgit",
		Short:         "A minimal content-addressed version control system",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.initConfig(cmd)
		},
	}

	root.PersistentFlags().String("config", "", "config file (default: ~/.config/rgit/config.yaml)")
	root.PersistentFlags().BoolP("verbose", "v", false, "log debug output to stderr")
	root.PersistentFlags().String("merge-tool", "", `blob merger: "diff3" or "builtin"`)
	_ = a.v.BindPFlag("verbose", root.PersistentFlags().Lookup("verbose"))
	_ = a.v.BindPFlag("merge.tool", root.PersistentFlags().Lookup("merge-tool"))

	root.AddCommand(
		newInitCmd(a),
		newHashObjectCmd(a),
		newCatFileCmd(a),
		newWriteTreeCmd(a),
		newReadTreeCmd(a),
		newAddCmd(a),
		newCommitCmd(a),
		newLogCmd(a),
		newCheckoutCmd(a),
		newBranchCmd(a),
		newTagCmd(a),
		newResetCmd(a),
		newStatusCmd(a),
		newDiffCmd(a),
		newMergeCmd(a),
		newMergeBaseCmd(a),
		newFetchCmd(a),
		newPushCmd(a),
		newRemoteCmd(a),
	)
	return root
}

func (a *app) initConfig(cmd *cobra.Command) error {
	if cfg, _ := cmd.Flags().GetString("config"); cfg != "" {
		a.v.SetConfigFile(cfg)
	} else {
		a.v.AddConfigPath(configDir())
		a.v.SetConfigName("config")
		a.v.SetConfigType("yaml")
	}

	a.v.SetEnvPrefix("RGIT")
	a.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	a.v.AutomaticEnv()

	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("read config %s: %w", a.v.ConfigFileUsed(), err)
		}
	}

	level := slog.LevelWarn
	if a.v.GetBool("verbose") {
		level = slog.LevelDebug
	}
	a.log = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	return nil
}

func configDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "rgit")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".config", "rgit")
	}
	return ".rgit"
}

// repoOptions turns CLI settings into repository options. A merge tool or
// command set here takes precedence over the repository's config.toml; a
// command on its own selects the external tool.
func (a *app) repoOptions() ([]repo.Option, error) {
	opts := []repo.Option{repo.WithLogger(a.log)}
	tool, command := a.v.GetString("merge.tool"), a.v.GetString("merge.command")
	if tool != "" || command != "" {
		m, err := merge.New(tool, command)
		if err != nil {
			return nil, err
		}
		opts = append(opts, repo.WithMerger(m))
	}
	return opts, nil
}

func (a *app) openRepo() (*repo.Repo, error) {
	opts, err := a.repoOptions()
	if err != nil {
		return nil, err
	}
	return repo.Open(".", opts...)
}

// repoPath converts a path given on the command line, relative to the
// current directory, into a slash-separated path relative to the
// repository root.
func repoPath(r *repo.Repo, arg string) (string, error) {
	abs, err := filepath.Abs(arg)
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(r.RootDir, abs)
	if err != nil {
		return "", err
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%s is outside repository %s", arg, r.RootDir)
	}
	return filepath.ToSlash(rel), nil
}

// resolveCommit resolves name with GetOID and checks that the result is a
// readable commit.
func resolveCommit(r *repo.Repo, name string) (object.OID, error) {
	oid := r.GetOID(name)
	if _, err := r.GetCommit(oid); err != nil {
		return "", fmt.Errorf("%s does not name a commit: %w", name, err)
	}
	return oid, nil
}

// firstLine returns the commit summary line.
func firstLine(msg string) string {
	line, _, _ := strings.Cut(msg, "\n")
	return line
}
