package aggregation

import (
	"log"
	"time"

	"github.com/trajkit/trajkit/traj-go/slam/edges"
	"github.com/trajkit/trajkit/traj-go/slam/evaluation"
	"github.com/trajkit/trajkit/traj-go/slam/graphopt"
	"github.com/trajkit/trajkit/traj-go/slam/pose"
	"github.com/trajkit/trajkit/traj-golib/errors"
)

// Estimator scores one weighting configuration: it reweights each
// trajectory's edges, solves the pose graph and compares the result
// with ground truth. Hyperparameters are fixed at construction; there
// is no fitted state.
type Estimator struct {
	Config  Config
	Indices evaluation.Indices
	Verbose bool
}

// Calibrate is a deliberate no-op kept for run logs: the estimator has
// nothing to fit.
func (e Estimator) Calibrate(X []edges.Table, y []pose.Trajectory) {
	log.Printf("running estimator with %s", e.Config)
}

// Evaluate solves and scores every trajectory, returning the per-key
// mean metric record. X and y are parallel; a length mismatch is a
// contract error. Solver and metric errors propagate unmodified.
func (e Estimator) Evaluate(X []edges.Table, y []pose.Trajectory) (evaluation.Record, error) {
	if len(X) != len(y) {
		return nil, errors.Errorf("evaluate: %d edge tables but %d ground truth trajectories", len(X), len(y))
	}
	if len(X) == 0 {
		return nil, errors.New("evaluate: no trajectories")
	}

	start := time.Now()
	if e.Verbose {
		log.Printf("predicting for %d trajectories", len(X))
	}

	records := make([]evaluation.Record, 0, len(X))
	for i, table := range X {
		if e.Verbose {
			log.Printf("\t%d. %s: %d consecutive edges", i+1, table.Name, table.ConsecutiveLen())
		}

		weighted := ApplyWeightsTable(table, e.Config)

		opt := graphopt.New(e.Config.MaxIterations, e.Config.Online)
		if err := opt.Append(weighted); err != nil {
			return nil, err
		}
		predicted, err := opt.Trajectory()
		if err != nil {
			return nil, err
		}

		record, err := evaluation.CalculateMetrics(y[i], predicted, e.Indices)
		if err != nil {
			return nil, err
		}
		if e.Verbose {
			for k, v := range evaluation.NormalizeMetrics(record) {
				log.Printf("\t\t%s: %g", k, v)
			}
		}
		records = append(records, record)
	}

	if e.Verbose {
		log.Printf("predicting completed in %.3fs", time.Since(start).Seconds())
	}
	return evaluation.AverageMetrics(records), nil
}
