package main

import (
	"log"
	"time"

	"github.com/alexflint/go-arg"
	"github.com/dustin/go-humanize"

	"github.com/trajkit/trajkit/traj-go/slam/aggregation"
	"github.com/trajkit/trajkit/traj-go/slam/configs"
	"github.com/trajkit/trajkit/traj-go/slam/dataset"
	"github.com/trajkit/trajkit/traj-golib/errors"
)

func main() {
	args := struct {
		DatasetRoot string `arg:"required" help:"root directory of ground-truth trajectories"`
		OutputPath  string `arg:"required" help:"where to write the ranked result table (csv)"`
		Registry    string `arg:"required" help:"yaml file with named prediction config sets"`
		ConfigType  string `arg:"required" help:"name of the config set to run"`
		NJobs       int    `help:"parallel trial workers"`
		NIter       int    `help:"number of sampled configurations"`
		Seed        int64  `help:"sampling seed"`
		Verbose     bool

		// optional fixed overrides; an omitted dimension falls back
		// to the built-in candidate list
		Coef          []float64 `help:"fixed coef tuple, one value per stride"`
		CoefLoop      []float64
		LoopThreshold []int
		RotationScale []float64
		MaxIterations []int
	}{
		NJobs: 3,
		NIter: 1,
	}
	arg.MustParse(&args)

	start := time.Now()

	registry, err := configs.LoadRegistry(args.Registry)
	if err != nil {
		log.Fatal(err)
	}
	set, err := registry.Lookup(args.ConfigType)
	if err != nil {
		log.Fatal(err)
	}

	log.Printf("loading trajectories for config set %s", args.ConfigType)
	X, y, groups, err := dataset.Load(args.DatasetRoot, set)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("loaded %d trajectories", len(X))

	dist, err := distributions(set, args.Coef, args.CoefLoop, args.LoopThreshold, args.RotationScale, args.MaxIterations)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("coef space holds %s candidates", humanize.Comma(int64(len(dist.Coef))))

	result, err := aggregation.RandomSearch(X, y, groups, dist, aggregation.SearchOptions{
		NIter:   args.NIter,
		NJobs:   args.NJobs,
		Seed:    args.Seed,
		Indices: set.Indices(),
		Verbose: args.Verbose,
	})
	if err != nil {
		log.Fatal(err)
	}

	if err := result.WriteCSV(args.OutputPath); err != nil {
		log.Fatal(err)
	}

	best, err := result.Best()
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("best candidate: %s (score %g)", best.Config, best.Score)
	log.Printf("wrote %d ranked candidates to %s in %s",
		len(result.Candidates), args.OutputPath, humanize.RelTime(start, time.Now(), "", ""))
}

// distributions assembles the search space: explicit CLI overrides
// where given, built-in candidate lists otherwise.
func distributions(set configs.Set, coef, coefLoop []float64, loopThreshold []int, rotationScale []float64, maxIterations []int) (aggregation.ParamDistributions, error) {
	strides := set.Strides()

	var candidates []map[int]float64
	if len(coef) > 0 {
		if len(coef) != len(strides) {
			return aggregation.ParamDistributions{}, errors.Errorf(
				"coef override has %d values but the config set has %d strides", len(coef), len(strides))
		}
		candidates = aggregation.CoefCandidates(strides, [][]float64{coef})
	} else {
		grid := aggregation.CoefGrid(configs.CoefValues(), len(strides))
		candidates = aggregation.CoefCandidates(strides, grid)
	}

	dist := aggregation.ParamDistributions{
		Coef:          candidates,
		CoefLoop:      coefLoop,
		LoopThreshold: loopThreshold,
		RotationScale: rotationScale,
		MaxIterations: maxIterations,
	}
	if len(dist.CoefLoop) == 0 {
		dist.CoefLoop = configs.CoefValues()
	}
	if len(dist.LoopThreshold) == 0 {
		dist.LoopThreshold = configs.LoopThresholds()
	}
	if len(dist.RotationScale) == 0 {
		dist.RotationScale = configs.RotationScales()
	}
	if len(dist.MaxIterations) == 0 {
		dist.MaxIterations = configs.MaxIterations()
	}
	return dist, nil
}
