package aggregation

import (
	"log"
	"math/rand"
	"sort"

	"github.com/kr/pretty"

	"github.com/trajkit/trajkit/traj-go/slam/edges"
	"github.com/trajkit/trajkit/traj-go/slam/evaluation"
	"github.com/trajkit/trajkit/traj-go/slam/pose"
	"github.com/trajkit/trajkit/traj-golib/errors"
	"github.com/trajkit/trajkit/traj-golib/workerpool"
)

// rankingKey is the scalar metric the candidate table is ranked by,
// taken from the validation group. Lower is better.
const rankingKey = "rpe_t"

// ParamDistributions enumerates the candidate values of every
// hyperparameter dimension. Coef candidates are whole stride->
// multiplier maps sampled as one indivisible value.
type ParamDistributions struct {
	Coef          []map[int]float64
	CoefLoop      []float64
	LoopThreshold []int
	RotationScale []float64
	MaxIterations []int

	// Online is optional; when empty every trial runs offline.
	Online []bool
}

func (d ParamDistributions) validate() error {
	switch {
	case len(d.Coef) == 0:
		return errors.New("empty candidate list for coef")
	case len(d.CoefLoop) == 0:
		return errors.New("empty candidate list for coef_loop")
	case len(d.LoopThreshold) == 0:
		return errors.New("empty candidate list for loop_threshold")
	case len(d.RotationScale) == 0:
		return errors.New("empty candidate list for rotation_scale")
	case len(d.MaxIterations) == 0:
		return errors.New("empty candidate list for max_iterations")
	}
	return nil
}

// sample draws one value uniformly and independently from each
// dimension. The draw order is fixed so a seeded run is reproducible.
func (d ParamDistributions) sample(r *rand.Rand) Config {
	cfg := Config{
		Coef:          d.Coef[r.Intn(len(d.Coef))],
		CoefLoop:      d.CoefLoop[r.Intn(len(d.CoefLoop))],
		LoopThreshold: d.LoopThreshold[r.Intn(len(d.LoopThreshold))],
		RotationScale: d.RotationScale[r.Intn(len(d.RotationScale))],
		MaxIterations: d.MaxIterations[r.Intn(len(d.MaxIterations))],
	}
	if len(d.Online) > 0 {
		cfg.Online = d.Online[r.Intn(len(d.Online))]
	}
	return cfg.clone()
}

// Candidate is one evaluated trial: the sampled config, one aggregated
// metric record per group, and the ranking score.
type Candidate struct {
	Trial  int
	Config Config
	Groups map[int]evaluation.Record
	Score  float64
}

// ResultTable is the full candidate table of a search run.
type ResultTable struct {
	Candidates []Candidate
}

// SearchOptions controls a RandomSearch run.
type SearchOptions struct {
	NIter   int
	NJobs   int
	Seed    int64
	Indices evaluation.Indices
	Verbose bool
}

// RandomSearch samples NIter configurations, evaluates each across all
// trajectories on up to NJobs workers, aggregates metric records per
// group and returns the table sorted ascending by the validation
// ranking score (stable, so ties keep sampling order).
//
// X, y and groups are parallel and read-only for the whole run. Any
// trial failure aborts the entire search.
func RandomSearch(X []edges.Table, y []pose.Trajectory, groups []int, dist ParamDistributions, opts SearchOptions) (ResultTable, error) {
	if len(X) != len(y) || len(X) != len(groups) {
		return ResultTable{}, errors.Errorf("search: mismatched inputs: %d edge tables, %d ground truth trajectories, %d group labels",
			len(X), len(y), len(groups))
	}
	if len(X) == 0 {
		return ResultTable{}, errors.New("search: no trajectories")
	}
	if opts.NIter < 1 {
		return ResultTable{}, errors.Errorf("search: n_iter must be >= 1, got %d", opts.NIter)
	}
	if err := dist.validate(); err != nil {
		return ResultTable{}, err
	}
	if opts.Indices == "" {
		opts.Indices = evaluation.Full
	}
	njobs := opts.NJobs
	if njobs < 1 {
		njobs = 1
	}

	if opts.Verbose {
		log.Printf("param distributions: %# v", pretty.Formatter(dist))
	}

	// sample every config up front so the draw sequence does not
	// depend on worker scheduling
	rng := rand.New(rand.NewSource(opts.Seed))
	configs := make([]Config, opts.NIter)
	for i := range configs {
		configs[i] = dist.sample(rng)
	}

	candidates := make([]Candidate, opts.NIter)
	jobs := make([]workerpool.Job, 0, opts.NIter)
	for i := range configs {
		trial := i
		jobs = append(jobs, func() error {
			cand, err := runTrial(trial, configs[trial], X, y, groups, opts)
			if err != nil {
				return errors.WrapfOrNil(err, "trial %d (%s)", trial, configs[trial])
			}
			candidates[trial] = cand
			return nil
		})
	}

	pool := workerpool.New(njobs)
	defer pool.Stop()
	pool.Add(jobs)
	if err := pool.Wait(); err != nil {
		return ResultTable{}, err
	}

	result := ResultTable{Candidates: candidates}
	result.sortByScore()
	return result, nil
}

// runTrial evaluates one configuration against every trajectory and
// aggregates the records per group. Groups never mix before this
// aggregation.
func runTrial(trial int, cfg Config, X []edges.Table, y []pose.Trajectory, groups []int, opts SearchOptions) (Candidate, error) {
	est := Estimator{Config: cfg, Indices: opts.Indices, Verbose: opts.Verbose}

	grouped := make(map[int][]evaluation.Record)
	for i := range X {
		record, err := est.Evaluate(X[i:i+1], y[i:i+1])
		if err != nil {
			return Candidate{}, err
		}
		grouped[groups[i]] = append(grouped[groups[i]], record)
	}

	aggregated := make(map[int]evaluation.Record, len(grouped))
	for g, records := range grouped {
		aggregated[g] = evaluation.AverageMetrics(records)
	}

	return Candidate{
		Trial:  trial,
		Config: cfg,
		Groups: aggregated,
		Score:  rankingScore(aggregated),
	}, nil
}

// rankingScore reads the ranking metric from the lowest group label
// present (group 0 is the validation cohort).
func rankingScore(aggregated map[int]evaluation.Record) float64 {
	labels := groupLabels(aggregated)
	return aggregated[labels[0]][rankingKey]
}

func groupLabels(aggregated map[int]evaluation.Record) []int {
	labels := make([]int, 0, len(aggregated))
	for g := range aggregated {
		labels = append(labels, g)
	}
	sort.Ints(labels)
	return labels
}

func (rt *ResultTable) sortByScore() {
	sort.SliceStable(rt.Candidates, func(i, j int) bool {
		return rt.Candidates[i].Score < rt.Candidates[j].Score
	})
}

// Best returns the top-ranked candidate.
func (rt ResultTable) Best() (Candidate, error) {
	if len(rt.Candidates) == 0 {
		return Candidate{}, errors.New("empty result table")
	}
	return rt.Candidates[0], nil
}
