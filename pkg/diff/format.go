package diff

import (
	"fmt"
	"strings"

	"github.com/odvcencio/rgit/pkg/diff3"
)

// FormatLineDiff renders a line diff of one file:
//
//	--- a/path
//	+++ b/path
//	 unchanged
//	-old line
//	+new line
//
// Identical content yields "".
func FormatLineDiff(path string, before, after []byte) string {
	lines := diff3.LineDiff(before, after)
	changed := false
	for _, l := range lines {
		if l.Type != diff3.Equal {
			changed = true
			break
		}
	}
	if !changed {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "--- a/%s\n+++ b/%s\n", path, path)
	for _, l := range lines {
		switch l.Type {
		case diff3.Insert:
			b.WriteString("+")
		case diff3.Delete:
			b.WriteString("-")
		default:
			b.WriteString(" ")
		}
		b.WriteString(l.Content)
		b.WriteString("\n")
	}
	return b.String()
}
