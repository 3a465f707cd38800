package repo

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-git/go-billy/v5/util"

	"github.com/odvcencio/rgit/pkg/merge"
	"github.com/odvcencio/rgit/pkg/object"
)

const configFile = "config.toml"

// DefaultTransferConcurrency bounds parallel object copies during fetch
// and push.
const DefaultTransferConcurrency = 4

// Config stores repository-local settings from .rgit/config.toml.
type Config struct {
	Merge    MergeConfig             `toml:"merge"`
	Transfer TransferConfig          `toml:"transfer"`
	Remotes  map[string]RemoteConfig `toml:"remotes"`
}

// MergeConfig selects the blob merger.
type MergeConfig struct {
	Tool    string `toml:"tool,omitempty"`    // "diff3" (external, default) or "builtin"
	Command string `toml:"command,omitempty"` // executable for the external tool
}

func (c MergeConfig) merger() (merge.Merger, error) {
	return merge.New(c.Tool, c.Command)
}

// TransferConfig tunes fetch and push.
type TransferConfig struct {
	Concurrency int `toml:"concurrency,omitempty"`
}

// RemoteConfig names another repository on the local filesystem.
type RemoteConfig struct {
	Path string `toml:"path"`
}

// TransferConcurrency returns the configured copy concurrency, or the
// default when unset.
func (c *Config) TransferConcurrency() int {
	if c.Transfer.Concurrency > 0 {
		return c.Transfer.Concurrency
	}
	return DefaultTransferConcurrency
}

// ReadConfig reads .rgit/config.toml. A missing file yields an empty config.
func (r *Repo) ReadConfig() (*Config, error) {
	cfg := &Config{Remotes: make(map[string]RemoteConfig)}
	data, err := util.ReadFile(r.Meta, configFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w: %w", object.ErrIO, err)
	}
	if _, err := toml.Decode(string(data), cfg); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if cfg.Remotes == nil {
		cfg.Remotes = make(map[string]RemoteConfig)
	}
	return cfg, nil
}

// WriteConfig atomically writes .rgit/config.toml.
func (r *Repo) WriteConfig(cfg *Config) error {
	if cfg == nil {
		cfg = &Config{}
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("write config: encode: %w", err)
	}
	if err := writeFileAtomic(r.Meta, configFile, buf.Bytes()); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// SetRemote stores or updates a named remote path.
func (r *Repo) SetRemote(name, remotePath string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("set remote: remote name is required")
	}
	remotePath = strings.TrimSpace(remotePath)
	if remotePath == "" {
		return fmt.Errorf("set remote: remote path is required")
	}

	cfg, err := r.ReadConfig()
	if err != nil {
		return fmt.Errorf("set remote: %w", err)
	}
	cfg.Remotes[name] = RemoteConfig{Path: remotePath}
	return r.WriteConfig(cfg)
}

// RemotePath resolves a configured remote name to its path.
func (r *Repo) RemotePath(name string) (string, error) {
	cfg, err := r.ReadConfig()
	if err != nil {
		return "", err
	}
	rc, ok := cfg.Remotes[name]
	if !ok || rc.Path == "" {
		return "", fmt.Errorf("remote %q not found", name)
	}
	return rc.Path, nil
}

// RemoteNames returns configured remote names in sorted order.
func (r *Repo) RemoteNames() ([]string, error) {
	cfg, err := r.ReadConfig()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(cfg.Remotes))
	for name := range cfg.Remotes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
