package diff3

// DiffType classifies a line in an edit script.
type DiffType int

const (
	Equal  DiffType = iota // Line is unchanged between a and b.
	Insert                 // Line was inserted (present in b only).
	Delete                 // Line was deleted (present in a only).
)

// DiffOp is a single operation in an edit script produced by MyersDiff.
type DiffOp struct {
	Type DiffType
	Line string
}

// MyersDiff computes the shortest edit script turning a into b, line by
// line. It runs in O((N+M)*D) time where D is the edit distance.
func MyersDiff(a, b []string) []DiffOp {
	n, m := len(a), len(b)
	if n == 0 && m == 0 {
		return nil
	}

	offset := n + m
	v := make([]int, 2*offset+2)
	var trace [][]int

search:
	for d := 0; d <= n+m; d++ {
		for k := -d; k <= d; k += 2 {
			var x int
			if k == -d || (k != d && v[offset+k-1] < v[offset+k+1]) {
				x = v[offset+k+1]
			} else {
				x = v[offset+k-1] + 1
			}
			y := x - k
			for x < n && y < m && a[x] == b[y] {
				x++
				y++
			}
			v[offset+k] = x
			if x >= n && y >= m {
				trace = append(trace, append([]int(nil), v...))
				break search
			}
		}
		trace = append(trace, append([]int(nil), v...))
	}

	return backtrack(trace, a, b, offset)
}

// backtrack walks the saved frontiers from the end of both inputs back to
// the start, emitting operations in reverse.
func backtrack(trace [][]int, a, b []string, offset int) []DiffOp {
	x, y := len(a), len(b)
	var ops []DiffOp

	for d := len(trace) - 1; d > 0; d-- {
		prev := trace[d-1]
		k := x - y
		var prevK int
		if k == -d || (k != d && prev[offset+k-1] < prev[offset+k+1]) {
			prevK = k + 1
		} else {
			prevK = k - 1
		}
		prevX := prev[offset+prevK]
		prevY := prevX - prevK

		for x > prevX && y > prevY {
			x--
			y--
			ops = append(ops, DiffOp{Type: Equal, Line: a[x]})
		}
		if prevK == k+1 {
			y--
			ops = append(ops, DiffOp{Type: Insert, Line: b[y]})
		} else {
			x--
			ops = append(ops, DiffOp{Type: Delete, Line: a[x]})
		}
	}
	for x > 0 && y > 0 {
		x--
		y--
		ops = append(ops, DiffOp{Type: Equal, Line: a[x]})
	}

	for i, j := 0, len(ops)-1; i < j; i, j = i+1, j-1 {
		ops[i], ops[j] = ops[j], ops[i]
	}
	return ops
}

// matchBase maps each line of base to the index of the equal line in side,
// or -1 when the line was deleted or replaced.
func matchBase(base, side []string) []int {
	match := make([]int, len(base))
	i, j := 0, 0
	for _, op := range MyersDiff(base, side) {
		switch op.Type {
		case Equal:
			match[i] = j
			i++
			j++
		case Delete:
			match[i] = -1
			i++
		case Insert:
			j++
		}
	}
	return match
}
