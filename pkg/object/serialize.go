package object

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
)

// ---------------------------------------------------------------------------
// Tree
// ---------------------------------------------------------------------------

// MarshalTree serializes a Tree. Entries are sorted by Name so that equal
// directory contents always produce the same OID. Each entry is one line:
//
//	<Kind> <OID> <Name>
func MarshalTree(t *Tree) ([]byte, error) {
	sorted := make([]TreeEntry, len(t.Entries))
	copy(sorted, t.Entries)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Name < sorted[j].Name
	})

	var buf bytes.Buffer
	for i, e := range sorted {
		if err := ValidateEntryName(e.Name); err != nil {
			return nil, fmt.Errorf("marshal tree: %w", err)
		}
		if i > 0 && sorted[i-1].Name == e.Name {
			return nil, fmt.Errorf("marshal tree: %w: duplicate entry %q", ErrMalformedObject, e.Name)
		}
		if e.Kind != KindBlob && e.Kind != KindTree {
			return nil, fmt.Errorf("marshal tree: %w: entry %q has kind %q", ErrMalformedObject, e.Name, e.Kind)
		}
		fmt.Fprintf(&buf, "%s %s %s\n", e.Kind, e.OID, e.Name)
	}
	return buf.Bytes(), nil
}

// ValidateEntryName rejects names that cannot be stored as a single tree
// entry.
func ValidateEntryName(name string) error {
	switch {
	case name == "", name == ".", name == "..":
		return fmt.Errorf("%w: invalid entry name %q", ErrMalformedObject, name)
	case strings.ContainsAny(name, "/\n\x00"):
		return fmt.Errorf("%w: invalid character in entry name %q", ErrMalformedObject, name)
	}
	return nil
}

// UnmarshalTree parses a Tree from its serialized form. Entry kinds are kept
// as stored; callers decide what to do with kinds they do not expect.
func UnmarshalTree(data []byte) (*Tree, error) {
	t := &Tree{}
	text := strings.TrimRight(string(data), "\n")
	if text == "" {
		return t, nil
	}
	for _, line := range strings.Split(text, "\n") {
		parts := strings.SplitN(line, " ", 3)
		if len(parts) != 3 || parts[2] == "" {
			return nil, fmt.Errorf("unmarshal tree: %w: malformed entry %q", ErrMalformedObject, line)
		}
		t.Entries = append(t.Entries, TreeEntry{
			Kind: Kind(parts[0]),
			OID:  OID(parts[1]),
			Name: parts[2],
		})
	}
	return t, nil
}

// ---------------------------------------------------------------------------
// Commit
// ---------------------------------------------------------------------------

// MarshalCommit serializes a Commit:
//
//	tree H
//	parent H     (zero or more)
//
//	message
func MarshalCommit(c *Commit) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "tree %s\n", c.Tree)
	for _, p := range c.Parents {
		fmt.Fprintf(&buf, "parent %s\n", p)
	}
	buf.WriteByte('\n')
	buf.WriteString(c.Message)
	return buf.Bytes()
}

// UnmarshalCommit parses a Commit. The tree line must come first, followed
// only by parent lines.
func UnmarshalCommit(data []byte) (*Commit, error) {
	idx := bytes.Index(data, []byte("\n\n"))
	if idx < 0 {
		return nil, fmt.Errorf("unmarshal commit: %w: missing header/message separator", ErrMalformedObject)
	}
	header := string(data[:idx])
	c := &Commit{Message: string(data[idx+2:])}

	for i, line := range strings.Split(header, "\n") {
		key, val, ok := strings.Cut(line, " ")
		if !ok || val == "" {
			return nil, fmt.Errorf("unmarshal commit: %w: malformed header line %q", ErrMalformedObject, line)
		}
		switch {
		case i == 0 && key == "tree":
			c.Tree = OID(val)
		case i > 0 && key == "parent":
			c.Parents = append(c.Parents, OID(val))
		default:
			return nil, fmt.Errorf("unmarshal commit: %w: unexpected header line %q", ErrMalformedObject, line)
		}
	}
	return c, nil
}
