// Package graphopt solves a pose graph of weighted relative-pose
// measurements into one globally consistent trajectory.
//
// The solver runs weighted Gauss-Seidel relaxation: each sweep
// re-estimates every node from the predictions of its incident edges,
// averaging translations linearly and rotations chordally with an
// SVD projection back onto SO(3). Edge weights are inverse
// confidences, so edges whose confidences were inflated by the
// weighting policy contribute nothing.
package graphopt

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/trajkit/trajkit/traj-go/slam/edges"
	"github.com/trajkit/trajkit/traj-go/slam/pose"
	"github.com/trajkit/trajkit/traj-golib/errors"
)

// weightCap bounds the information weight of a near-zero confidence so
// a perfectly trusted edge stays finite.
const weightCap = 1e12

const convergenceTol = 1e-10

// Optimizer accumulates weighted edges and solves for the global
// trajectory. The graph has one node per frame index referenced by an
// edge. With online=true every Append immediately re-solves; otherwise
// solving happens once in Trajectory.
type Optimizer struct {
	maxIterations int
	online        bool

	edges  []edges.Edge
	nodes  pose.Trajectory
	solved bool
}

// New constructs an Optimizer. maxIterations must be >= 1; the value
// is validated when solving.
func New(maxIterations int, online bool) *Optimizer {
	return &Optimizer{maxIterations: maxIterations, online: online}
}

// Append adds a trajectory's weighted edge table to the graph.
func (o *Optimizer) Append(t edges.Table) error {
	for _, e := range t.Edges {
		if e.FromIndex < 0 || e.ToIndex <= e.FromIndex {
			return errors.Errorf("invalid edge %d -> %d", e.FromIndex, e.ToIndex)
		}
	}
	o.edges = append(o.edges, t.Edges...)
	o.solved = false
	if o.online {
		return o.solve()
	}
	return nil
}

// Trajectory solves the accumulated graph (unless already solved by an
// online Append) and returns one pose per referenced frame, in frame
// order.
func (o *Optimizer) Trajectory() (pose.Trajectory, error) {
	if !o.solved {
		if err := o.solve(); err != nil {
			return nil, err
		}
	}
	return o.nodes, nil
}

func (o *Optimizer) solve() error {
	if o.maxIterations < 1 {
		return errors.Errorf("max iterations must be >= 1, got %d", o.maxIterations)
	}
	if len(o.edges) == 0 {
		return errors.New("empty pose graph")
	}

	frames := o.frames()
	position := make(map[int]int, len(frames))
	for pos, frame := range frames {
		position[frame] = pos
	}

	nodes, err := o.initialize(frames, position)
	if err != nil {
		return err
	}

	incident := make([][]int, len(nodes))
	for idx, e := range o.edges {
		incident[position[e.FromIndex]] = append(incident[position[e.FromIndex]], idx)
		incident[position[e.ToIndex]] = append(incident[position[e.ToIndex]], idx)
	}

	for iter := 0; iter < o.maxIterations; iter++ {
		var maxShift float64
		// the first node anchors the gauge and never moves
		for i := 1; i < len(nodes); i++ {
			updated, ok := o.reestimate(nodes, position, incident[i], frames[i])
			if !ok {
				continue
			}
			maxShift = math.Max(maxShift, shift(nodes[i], updated))
			nodes[i] = updated
		}
		if maxShift < convergenceTol {
			break
		}
	}

	o.nodes = nodes
	o.solved = true
	return nil
}

// frames returns the sorted distinct frame indices referenced by the
// accumulated edges.
func (o *Optimizer) frames() []int {
	seen := make(map[int]bool, 2*len(o.edges))
	var frames []int
	for _, e := range o.edges {
		for _, idx := range [2]int{e.FromIndex, e.ToIndex} {
			if !seen[idx] {
				seen[idx] = true
				frames = append(frames, idx)
			}
		}
	}
	sort.Ints(frames)
	return frames
}

// initialize composes a first estimate along a breadth-first spanning
// tree rooted at the earliest frame. An unreachable frame means the
// graph is disconnected, which is an error.
func (o *Optimizer) initialize(frames []int, position map[int]int) (pose.Trajectory, error) {
	type link struct {
		edge    edges.Edge
		forward bool
		next    int
	}
	adj := make([][]link, len(frames))
	for _, e := range o.edges {
		from, to := position[e.FromIndex], position[e.ToIndex]
		adj[from] = append(adj[from], link{e, true, to})
		adj[to] = append(adj[to], link{e, false, from})
	}

	nodes := make(pose.Trajectory, len(frames))
	visited := make([]bool, len(frames))
	nodes[0] = pose.Identity()
	visited[0] = true
	queue := []int{0}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, l := range adj[cur] {
			if visited[l.next] {
				continue
			}
			m := measurement(l.edge)
			if l.forward {
				nodes[l.next] = nodes[cur].Compose(m)
			} else {
				nodes[l.next] = nodes[cur].Compose(m.Inverse())
			}
			visited[l.next] = true
			queue = append(queue, l.next)
		}
	}

	for i, ok := range visited {
		if !ok {
			return nil, errors.Errorf("pose graph is disconnected: frame %d unreachable from frame %d", frames[i], frames[0])
		}
	}
	return nodes, nil
}

// reestimate computes the node of the given frame as the weighted mean
// of the predictions of its incident edges.
func (o *Optimizer) reestimate(nodes pose.Trajectory, position map[int]int, incident []int, frame int) (pose.Pose, bool) {
	var sumWT, sumWR float64
	t := mat.NewVecDense(3, nil)
	r := mat.NewDense(3, 3, nil)

	for _, idx := range incident {
		e := o.edges[idx]

		var predicted pose.Pose
		if e.ToIndex == frame {
			predicted = nodes[position[e.FromIndex]].Compose(measurement(e))
		} else {
			predicted = nodes[position[e.ToIndex]].Compose(measurement(e).Inverse())
		}

		wT := information(e.TXConfidence, e.TYConfidence, e.TZConfidence)
		wR := information(e.EulerXConfidence, e.EulerYConfidence, e.EulerZConfidence)

		t.AddScaledVec(t, wT, predicted.T)
		sumWT += wT

		scaled := mat.NewDense(3, 3, nil)
		scaled.Scale(wR, predicted.R)
		r.Add(r, scaled)
		sumWR += wR
	}

	if sumWT <= 0 || sumWR <= 0 {
		return pose.Pose{}, false
	}

	t.ScaleVec(1/sumWT, t)
	r.Scale(1/sumWR, r)
	return pose.Pose{R: projectSO3(r), T: t}, true
}

func measurement(e edges.Edge) pose.Pose {
	return pose.New(e.EulerX, e.EulerY, e.EulerZ, e.TX, e.TY, e.TZ)
}

// information converts three confidences (assumed std deviations,
// smaller = more trusted) into one scalar weight.
func information(a, b, c float64) float64 {
	sigma := (a + b + c) / 3
	if sigma <= 1/weightCap {
		return weightCap
	}
	return 1 / sigma
}

// projectSO3 maps a weighted rotation mean back onto the rotation
// group via SVD: R = U * diag(1,1,det(U V^T)) * V^T.
func projectSO3(m *mat.Dense) *mat.Dense {
	var svd mat.SVD
	if !svd.Factorize(m, mat.SVDFull) {
		// degenerate mean; keep it unprojected rather than guess
		return m
	}
	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)

	var uvt mat.Dense
	uvt.Mul(&u, v.T())
	d := mat.Det(&uvt)

	s := mat.NewDense(3, 3, nil)
	s.Set(0, 0, 1)
	s.Set(1, 1, 1)
	s.Set(2, 2, d)

	r := mat.NewDense(3, 3, nil)
	r.Mul(&u, s)
	r.Mul(r, v.T())
	return r
}

func shift(a, b pose.Pose) float64 {
	ax, ay, az := a.Translation()
	bx, by, bz := b.Translation()
	dx, dy, dz := ax-bx, ay-by, az-bz
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}
