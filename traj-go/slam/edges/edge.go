package edges

// Edge is one relative-pose measurement between two frames.
// The six confidence fields are assumed measurement uncertainties
// (smaller = more trusted); they are the only fields the weighting
// policy may change, and it does so by returning a new Edge.
type Edge struct {
	FromIndex int
	ToIndex   int

	EulerX float64
	EulerY float64
	EulerZ float64
	TX     float64
	TY     float64
	TZ     float64

	EulerXConfidence float64
	EulerYConfidence float64
	EulerZConfidence float64
	TXConfidence     float64
	TYConfidence     float64
	TZConfidence     float64

	// Diff is the index distance ToIndex-FromIndex; diff=1 is a
	// consecutive-frame edge, larger values are loop candidates.
	Diff int
}

// Table is the ordered edge set of one trajectory. Tables are built
// once by the loader and treated as read-only afterwards.
type Table struct {
	Name  string
	Edges []Edge
}

// ConsecutiveLen counts edges with diff == 1. Used for progress
// reporting only.
func (t Table) ConsecutiveLen() int {
	var n int
	for _, e := range t.Edges {
		if e.Diff == 1 {
			n++
		}
	}
	return n
}

// FilterMinDiff returns a new Table holding only edges with
// diff > minDiff. The receiver is not modified.
func (t Table) FilterMinDiff(minDiff int) Table {
	kept := make([]Edge, 0, len(t.Edges))
	for _, e := range t.Edges {
		if e.Diff > minDiff {
			kept = append(kept, e)
		}
	}
	return Table{Name: t.Name, Edges: kept}
}

// Concat merges tables in order into one Table under the given name.
func Concat(name string, tables ...Table) Table {
	var total int
	for _, t := range tables {
		total += len(t.Edges)
	}
	merged := make([]Edge, 0, total)
	for _, t := range tables {
		merged = append(merged, t.Edges...)
	}
	return Table{Name: name, Edges: merged}
}
