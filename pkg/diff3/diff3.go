package diff3

import (
	"bytes"
	"strings"
)

// HunkType classifies a hunk in a three-way merge result.
type HunkType int

const (
	HunkClean    HunkType = iota // Hunk was merged cleanly.
	HunkConflict                 // Hunk has a conflict that requires manual resolution.
)

// Hunk represents a contiguous section of the merge output.
type Hunk struct {
	Type                       HunkType
	Base, Ours, Theirs, Merged []byte
}

// Result holds the outcome of a three-way merge.
type Result struct {
	Merged       []byte // Full merged content (with conflict markers if conflicts exist).
	HasConflicts bool   // True if any hunk is a conflict.
	Hunks        []Hunk // Individual hunks in document order.
}

// Labels name the three inputs in conflict markers.
type Labels struct {
	Ours, Base, Theirs string
}

// DefaultLabels are used by Merge.
var DefaultLabels = Labels{Ours: "ours", Base: "base", Theirs: "theirs"}

// DiffLine is a single line in the output of LineDiff.
type DiffLine struct {
	Type    DiffType
	Content string
}

// LineDiff computes a line-level diff between byte slices a and b.
func LineDiff(a, b []byte) []DiffLine {
	ops := MyersDiff(splitLines(string(a)), splitLines(string(b)))

	result := make([]DiffLine, len(ops))
	for i, op := range ops {
		result[i] = DiffLine{Type: op.Type, Content: op.Line}
	}
	return result
}

// Merge performs a three-way merge of base, ours and theirs with
// DefaultLabels.
func Merge(base, ours, theirs []byte) Result {
	return MergeLabeled(base, ours, theirs, DefaultLabels)
}

// MergeLabeled performs a three-way merge of base, ours and theirs.
//
// Both sides are diffed against base. Base lines kept by both sides are
// stable; the regions between stable lines are resolved one at a time:
//   - a side equal to base takes the other side
//   - identical changes on both sides are taken once
//   - anything else is a conflict, rendered in diff3 style with the base
//     section between ||||||| and =======
func MergeLabeled(base, ours, theirs []byte, labels Labels) Result {
	baseLines := splitLines(string(base))
	oursLines := splitLines(string(ours))
	theirsLines := splitLines(string(theirs))

	matchOurs := matchBase(baseLines, oursLines)
	matchTheirs := matchBase(baseLines, theirsLines)

	var (
		res    Result
		buf    bytes.Buffer
		stable []string
	)
	flushStable := func() {
		if len(stable) == 0 {
			return
		}
		text := joinLines(stable)
		buf.Write(text)
		res.Hunks = append(res.Hunks, Hunk{Type: HunkClean, Base: text, Ours: text, Theirs: text, Merged: text})
		stable = nil
	}

	i, o, t := 0, 0, 0
	for {
		j := i
		for j < len(baseLines) && (matchOurs[j] < 0 || matchTheirs[j] < 0) {
			j++
		}
		if j < len(baseLines) && j == i && matchOurs[j] == o && matchTheirs[j] == t {
			stable = append(stable, baseLines[i])
			i, o, t = i+1, o+1, t+1
			continue
		}

		oEnd, tEnd := len(oursLines), len(theirsLines)
		if j < len(baseLines) {
			oEnd, tEnd = matchOurs[j], matchTheirs[j]
		}
		if i < j || o < oEnd || t < tEnd {
			flushStable()
			h := resolve(baseLines[i:j], oursLines[o:oEnd], theirsLines[t:tEnd], labels)
			buf.Write(h.Merged)
			res.Hunks = append(res.Hunks, h)
			if h.Type == HunkConflict {
				res.HasConflicts = true
			}
		}
		i, o, t = j, oEnd, tEnd
		if j >= len(baseLines) {
			break
		}
	}
	flushStable()

	res.Merged = buf.Bytes()
	return res
}

// resolve merges one unstable region.
func resolve(base, ours, theirs []string, labels Labels) Hunk {
	h := Hunk{
		Type:   HunkClean,
		Base:   joinLines(base),
		Ours:   joinLines(ours),
		Theirs: joinLines(theirs),
	}
	switch {
	case linesEqual(ours, base):
		h.Merged = h.Theirs
	case linesEqual(theirs, base), linesEqual(ours, theirs):
		h.Merged = h.Ours
	default:
		h.Type = HunkConflict
		h.Merged = renderConflict(h, labels)
	}
	return h
}

func renderConflict(h Hunk, labels Labels) []byte {
	var buf bytes.Buffer
	buf.WriteString("<<<<<<< " + labels.Ours + "\n")
	buf.Write(h.Ours)
	buf.WriteString("||||||| " + labels.Base + "\n")
	buf.Write(h.Base)
	buf.WriteString("=======\n")
	buf.Write(h.Theirs)
	buf.WriteString(">>>>>>> " + labels.Theirs + "\n")
	return buf.Bytes()
}

// HasConflictMarkers reports whether data contains a line opening a
// conflict block.
func HasConflictMarkers(data []byte) bool {
	return bytes.HasPrefix(data, []byte("<<<<<<< ")) || bytes.Contains(data, []byte("\n<<<<<<< "))
}

// splitLines splits s into lines. A trailing newline does not produce
// an extra empty element.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.Split(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func joinLines(lines []string) []byte {
	if len(lines) == 0 {
		return nil
	}
	return []byte(strings.Join(lines, "\n") + "\n")
}

func linesEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
