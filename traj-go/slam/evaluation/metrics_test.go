package evaluation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trajkit/trajkit/traj-go/slam/pose"
)

func line(n int, step float64) pose.Trajectory {
	rel := make(pose.RelativeTrajectory, n-1)
	for i := range rel {
		rel[i] = pose.New(0, 0, 0, step, 0, 0)
	}
	return rel.ToGlobal()
}

func TestCalculateMetricsPerfect(t *testing.T) {
	gt := line(10, 1)
	record, err := CalculateMetrics(gt, gt, Full)
	require.NoError(t, err)

	assert.InDelta(t, 0, record["ate"], 1e-9)
	assert.InDelta(t, 0, record["rpe_t"], 1e-9)
	assert.InDelta(t, 0, record["rpe_r"], 1e-9)
}

func TestCalculateMetricsDrift(t *testing.T) {
	gt := line(10, 1)
	pred := line(10, 1.1)

	record, err := CalculateMetrics(gt, pred, Full)
	require.NoError(t, err)

	// 10% longer steps: relative translation error is 10% per meter
	assert.InDelta(t, 0.1, record["rpe_t"], 1e-9)
	assert.Greater(t, record["ate"], 0.0)
	assert.InDelta(t, 0, record["rpe_r"], 1e-9)
}

func TestCalculateMetricsLengthMismatch(t *testing.T) {
	_, err := CalculateMetrics(line(10, 1), line(9, 1), Full)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "length mismatch")
}

func TestCalculateMetricsUnknownScheme(t *testing.T) {
	_, err := CalculateMetrics(line(10, 1), line(10, 1), Indices("tum"))
	require.Error(t, err)
}

func TestKITTISegments(t *testing.T) {
	// 900 one-meter steps: segments up to 800m exist
	gt := line(901, 1)
	pred := line(901, 1.05)

	record, err := CalculateMetrics(gt, pred, KITTI)
	require.NoError(t, err)
	assert.InDelta(t, 0.05, record["rpe_t"], 1e-6)
}

func TestKITTITooShort(t *testing.T) {
	// no 100m segment fits: RPE must be zero, not NaN
	gt := line(10, 1)
	record, err := CalculateMetrics(gt, gt, KITTI)
	require.NoError(t, err)
	assert.Equal(t, 0.0, record["rpe_t"])
}

func TestNormalizeMetrics(t *testing.T) {
	norm := NormalizeMetrics(Record{"ate": 2, "rpe_t": 0.1, "rpe_r": 0.5})
	assert.InDelta(t, 2, norm["ate_m"], 1e-9)
	assert.InDelta(t, 10, norm["rpe_t_percent"], 1e-9)
	assert.InDelta(t, 28.64788975654116, norm["rpe_r_deg_m"], 1e-9)
}

func TestAverageMetrics(t *testing.T) {
	avg := AverageMetrics([]Record{
		{"ate": 1, "rpe_t": 0.2},
		{"ate": 3, "rpe_t": 0.4},
	})
	assert.InDelta(t, 2, avg["ate"], 1e-9)
	assert.InDelta(t, 0.3, avg["rpe_t"], 1e-9)
}

func TestAverageMetricsGroupIndependence(t *testing.T) {
	group0 := []Record{{"ate": 1}, {"ate": 2}}
	group1 := []Record{{"ate": 100}, {"ate": 200}}

	before := AverageMetrics(group0)["ate"]

	// perturbing the other group must not change group 0's aggregate
	group1[0]["ate"] = 1e9
	after := AverageMetrics(group0)["ate"]

	assert.Equal(t, before, after)
	assert.NotEqual(t, before, AverageMetrics(group1)["ate"])
}
