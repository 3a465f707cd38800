package object

import "fmt"

// OID is a 40-character hex-encoded SHA-1 digest of an object's untagged
// content.
type OID string

// Short returns the first eight characters of the OID.
func (o OID) Short() string {
	if len(o) > 8 {
		return string(o[:8])
	}
	return string(o)
}

// Kind tags the stored form of an object.
type Kind string

const (
	KindBlob   Kind = "Blob"
	KindTree   Kind = "Tree"
	KindCommit Kind = "Commit"

	// KindAny disables the kind check in Store.Read.
	KindAny Kind = "*"
)

// ParseKind maps a stored kind tag back to a Kind.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindBlob, KindTree, KindCommit:
		return Kind(s), nil
	}
	return "", fmt.Errorf("%w: unknown kind %q", ErrMalformedObject, s)
}

// TreeEntry is one line of a tree object.
type TreeEntry struct {
	Kind Kind // KindBlob or KindTree
	OID  OID
	Name string
}

// Tree holds the entries of one directory snapshot.
type Tree struct {
	Entries []TreeEntry // sorted by Name once marshaled
}

// Commit references a root tree, zero or more parents and a message.
type Commit struct {
	Tree    OID
	Parents []OID // first parent is the prior HEAD
	Message string
}
