package evaluation

import (
	"math"

	"github.com/trajkit/trajkit/traj-go/slam/pose"
	"github.com/trajkit/trajkit/traj-golib/errors"
)

// Indices selects the RPE segment scheme.
type Indices string

// Supported segment schemes. Full evaluates every frame pair, KITTI
// the standard 100..800 meter segments.
const (
	Full  Indices = "full"
	KITTI Indices = "kitti"
)

var kittiSegments = []float64{100, 200, 300, 400, 500, 600, 700, 800}

// Record holds one trajectory's metric values, keyed by metric name.
type Record map[string]float64

// CalculateMetrics scores a predicted trajectory against ground truth.
// Both trajectories are re-rooted at their first pose before
// comparison. Trajectories must have equal length.
func CalculateMetrics(gt, pred pose.Trajectory, indices Indices) (Record, error) {
	if len(gt) != len(pred) {
		return nil, errors.Errorf("trajectory length mismatch: ground truth %d, predicted %d", len(gt), len(pred))
	}
	if len(gt) < 2 {
		return nil, errors.Errorf("trajectory too short to score: %d poses", len(gt))
	}
	if indices != Full && indices != KITTI {
		return nil, errors.Errorf("unknown rpe indices scheme %q", indices)
	}

	gt = rebase(gt)
	pred = rebase(pred)

	record := Record{"ate": ate(gt, pred)}
	rpeT, rpeR := rpe(gt, pred, indices)
	record["rpe_t"] = rpeT
	record["rpe_r"] = rpeR
	return record, nil
}

// NormalizeMetrics converts a raw record into display units: ATE in
// meters, translational RPE in percent, rotational RPE in deg/m.
func NormalizeMetrics(record Record) map[string]float64 {
	return map[string]float64{
		"ate_m":         record["ate"],
		"rpe_t_percent": record["rpe_t"] * 100,
		"rpe_r_deg_m":   record["rpe_r"] * 180 / math.Pi,
	}
}

// AverageMetrics computes the per-key arithmetic mean across records.
// Every record is expected to carry the same keys.
func AverageMetrics(records []Record) Record {
	sums := Record{}
	counts := map[string]int{}
	for _, r := range records {
		for k, v := range r {
			sums[k] += v
			counts[k]++
		}
	}
	avg := Record{}
	for k, sum := range sums {
		avg[k] = sum / float64(counts[k])
	}
	return avg
}

func rebase(t pose.Trajectory) pose.Trajectory {
	origin := t[0].Inverse()
	out := make(pose.Trajectory, len(t))
	for i, p := range t {
		out[i] = origin.Compose(p)
	}
	return out
}

func ate(gt, pred pose.Trajectory) float64 {
	var sum float64
	for i := range gt {
		gx, gy, gz := gt[i].Translation()
		px, py, pz := pred[i].Translation()
		dx, dy, dz := gx-px, gy-py, gz-pz
		sum += dx*dx + dy*dy + dz*dz
	}
	return math.Sqrt(sum / float64(len(gt)))
}

// rpe averages, over the scheme's segments, the translational error
// per meter of ground-truth path and the rotational error per meter.
func rpe(gt, pred pose.Trajectory, indices Indices) (rpeT, rpeR float64) {
	dist := cumulativeDistance(gt)

	var sumT, sumR float64
	var n int
	score := func(i, j int) {
		length := dist[j] - dist[i]
		if length < 1e-9 {
			return
		}
		gtDelta := gt[i].Delta(gt[j])
		predDelta := pred[i].Delta(pred[j])
		err := gtDelta.Delta(predDelta)
		sumT += err.TranslationNorm() / length
		sumR += err.RotationAngle() / length
		n++
	}

	switch indices {
	case KITTI:
		for _, length := range kittiSegments {
			for i := range gt {
				j := endOfSegment(dist, i, length)
				if j < 0 {
					break
				}
				score(i, j)
			}
		}
	default: // Full
		for i := 0; i < len(gt); i++ {
			for j := i + 1; j < len(gt); j++ {
				score(i, j)
			}
		}
	}

	if n == 0 {
		return 0, 0
	}
	return sumT / float64(n), sumR / float64(n)
}

func cumulativeDistance(t pose.Trajectory) []float64 {
	dist := make([]float64, len(t))
	for i := 1; i < len(t); i++ {
		dist[i] = dist[i-1] + t[i-1].Delta(t[i]).TranslationNorm()
	}
	return dist
}

// endOfSegment returns the first index j > i whose path distance from
// i reaches length, or -1 when the trajectory ends first.
func endOfSegment(dist []float64, i int, length float64) int {
	for j := i + 1; j < len(dist); j++ {
		if dist[j]-dist[i] >= length {
			return j
		}
	}
	return -1
}
