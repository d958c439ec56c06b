package aggregation

import (
	"github.com/trajkit/trajkit/traj-go/slam/edges"
)

// missingStrideCoef effectively removes an edge whose stride has no
// explicit coefficient and is not past the loop threshold.
const missingStrideCoef = 1e7

// ApplyWeights converts a raw edge into a solver-weighted edge.
//
// The scale factor is chosen in priority order: an explicit Coef entry
// for the edge's stride wins even when the stride exceeds the loop
// threshold; otherwise loop edges get CoefLoop and everything else the
// missing-stride fallback. All six confidences are multiplied by the
// scale factor and the three rotation confidences additionally by
// RotationScale. Mean estimates are never touched; the input edge is
// returned unchanged as a new value.
func ApplyWeights(e edges.Edge, c Config) edges.Edge {
	scale, ok := c.Coef[e.Diff]
	if !ok {
		if e.Diff > c.LoopThreshold {
			scale = c.CoefLoop
		} else {
			scale = missingStrideCoef
		}
	}

	out := e
	out.EulerXConfidence *= scale * c.RotationScale
	out.EulerYConfidence *= scale * c.RotationScale
	out.EulerZConfidence *= scale * c.RotationScale
	out.TXConfidence *= scale
	out.TYConfidence *= scale
	out.TZConfidence *= scale
	return out
}

// ApplyWeightsTable applies the weighting policy to every edge of a
// table, producing a new table.
func ApplyWeightsTable(t edges.Table, c Config) edges.Table {
	weighted := make([]edges.Edge, len(t.Edges))
	for i, e := range t.Edges {
		weighted[i] = ApplyWeights(e, c)
	}
	return edges.Table{Name: t.Name, Edges: weighted}
}
