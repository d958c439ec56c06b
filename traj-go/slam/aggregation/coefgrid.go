package aggregation

// CoefGrid enumerates the full Cartesian power values^depth as tuples
// of length depth. Tuples come out in lexicographic order over the
// value list (the first position varies slowest), and there are
// exactly len(values)^depth of them.
//
// The enumeration is index-based: each linear index is decomposed by
// repeated division into one digit per tuple position, so no recursion
// or intermediate levels are materialized.
func CoefGrid(values []float64, depth int) [][]float64 {
	if depth <= 0 || len(values) == 0 {
		return nil
	}

	n := len(values)
	total := 1
	for i := 0; i < depth; i++ {
		total *= n
	}

	grid := make([][]float64, 0, total)
	for idx := 0; idx < total; idx++ {
		tuple := make([]float64, depth)
		rem := idx
		for pos := depth - 1; pos >= 0; pos-- {
			tuple[pos] = values[rem%n]
			rem /= n
		}
		grid = append(grid, tuple)
	}
	return grid
}

// CoefCandidates zips every grid tuple with the given strides,
// producing the whole-map candidates the search samples from.
func CoefCandidates(strides []int, grid [][]float64) []map[int]float64 {
	candidates := make([]map[int]float64, 0, len(grid))
	for _, tuple := range grid {
		m := make(map[int]float64, len(strides))
		for i, s := range strides {
			if i < len(tuple) {
				m[s] = tuple[i]
			}
		}
		candidates = append(candidates, m)
	}
	return candidates
}
