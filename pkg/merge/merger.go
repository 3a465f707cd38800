// Package merge performs three-way merges of flat path to blob mappings,
// delegating the content merge of individual blobs to a Merger.
package merge

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/odvcencio/rgit/pkg/diff3"
	"github.com/odvcencio/rgit/pkg/object"
)

// Conflict marker labels for the three inputs.
const (
	LabelHead      = "HEAD"
	LabelBase      = "BASE"
	LabelMergeHead = "MERGE_HEAD"
)

// DefaultCommand is the external merge tool used when none is configured.
const DefaultCommand = "diff3"

// Merger merges three versions of a file. Conflicts are reported inside the
// returned content as marker blocks, not as errors.
type Merger interface {
	Merge(ctx context.Context, base, head, other []byte) ([]byte, error)
}

// ExternalTool runs a diff3-compatible command:
//
//	<command> -m -L HEAD <head> -L BASE <base> -L MERGE_HEAD <other>
//
// Exit status 0 (clean) and 1 (conflicts) both yield the merged output.
type ExternalTool struct {
	Command string // defaults to DefaultCommand
}

func (t ExternalTool) command() string {
	if t.Command == "" {
		return DefaultCommand
	}
	return t.Command
}

// Merge writes the three inputs to temporary files and runs the tool.
// Failure to start it, or an exit status above 1, wraps ErrIO.
func (t ExternalTool) Merge(ctx context.Context, base, head, other []byte) ([]byte, error) {
	dir, err := os.MkdirTemp("", "rgit-merge-")
	if err != nil {
		return nil, fmt.Errorf("merge tool: %w: %w", object.ErrIO, err)
	}
	defer os.RemoveAll(dir)

	paths := make(map[string]string, 3)
	for name, data := range map[string][]byte{"base": base, "head": head, "other": other} {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, data, 0o600); err != nil {
			return nil, fmt.Errorf("merge tool: %w: %w", object.ErrIO, err)
		}
		paths[name] = p
	}

	cmd := exec.CommandContext(ctx, t.command(),
		"-m",
		"-L", LabelHead, paths["head"],
		"-L", LabelBase, paths["base"],
		"-L", LabelMergeHead, paths["other"],
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err == nil {
		return out, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
		return out, nil
	}
	return nil, fmt.Errorf("merge tool %s: %w: %w: %s", t.command(), object.ErrIO, err, bytes.TrimSpace(stderr.Bytes()))
}

// Builtin merges in process with the line-based diff3 algorithm and renders
// the same labeled markers as ExternalTool.
type Builtin struct{}

func (Builtin) Merge(ctx context.Context, base, head, other []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	res := diff3.MergeLabeled(base, head, other, diff3.Labels{
		Ours:   LabelHead,
		Base:   LabelBase,
		Theirs: LabelMergeHead,
	})
	return res.Merged, nil
}

// New returns the Merger named by tool: "builtin" or "diff3" (external).
// command overrides the executable for the external tool.
func New(tool, command string) (Merger, error) {
	switch tool {
	case "", "diff3", "external":
		return ExternalTool{Command: command}, nil
	case "builtin":
		return Builtin{}, nil
	default:
		return nil, fmt.Errorf("unknown merge tool %q", tool)
	}
}
