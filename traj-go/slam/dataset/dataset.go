// Package dataset assembles the search inputs: per-trajectory merged
// multi-stride edge tables, ground-truth global trajectories and
// cohort labels. Everything is loaded once, before any search begins,
// and treated as immutable afterwards.
package dataset

import (
	"path/filepath"

	"github.com/trajkit/trajkit/traj-go/slam/configs"
	"github.com/trajkit/trajkit/traj-go/slam/edges"
	"github.com/trajkit/trajkit/traj-go/slam/locate"
	"github.com/trajkit/trajkit/traj-go/slam/pose"
	"github.com/trajkit/trajkit/traj-golib/errors"
)

// loopMinDiff drops the short-range rows of loop prediction files.
const loopMinDiff = 49

// Load resolves and reads every trajectory of the config set. The
// returned slices are parallel: merged edge table, ground-truth global
// trajectory and group label per trajectory.
func Load(datasetRoot string, set configs.Set) (X []edges.Table, y []pose.Trajectory, groups []int, err error) {
	if err := set.Validate(); err != nil {
		return nil, nil, nil, err
	}

	names, err := locate.TrajectoryNames(set["1"][0])
	if err != nil {
		return nil, nil, nil, err
	}

	for _, name := range names {
		table, group, err := loadPredictions(set, name)
		if err != nil {
			return nil, nil, nil, err
		}

		gt, err := loadGroundTruth(datasetRoot, name)
		if err != nil {
			return nil, nil, nil, err
		}

		X = append(X, table)
		y = append(y, gt)
		groups = append(groups, group)
	}
	return X, y, groups, nil
}

// loadPredictions resolves one file per stride root, merges the tables
// and classifies the trajectory's cohort from its stride-1 location.
func loadPredictions(set configs.Set, name string) (edges.Table, int, error) {
	var tables []edges.Table
	group := -1

	for _, key := range set.Keys() {
		for i, root := range set[key] {
			path, err := locate.ResolvePath(root, name)
			if err != nil {
				return edges.Table{}, 0, err
			}

			table, err := edges.ReadTable(path, name)
			if err != nil {
				return edges.Table{}, 0, err
			}
			if key == configs.LoopsKey {
				table = table.FilterMinDiff(loopMinDiff)
			}
			tables = append(tables, table)

			// the cohort comes from the first stride-1 prediction
			if key == "1" && i == 0 {
				group, err = locate.Classify(path)
				if err != nil {
					return edges.Table{}, 0, err
				}
			}
		}
	}

	if group < 0 {
		return edges.Table{}, 0, errors.Errorf("no stride-1 prediction resolved for trajectory %s", name)
	}
	return edges.Concat(name, tables...), group, nil
}

func loadGroundTruth(datasetRoot, name string) (pose.Trajectory, error) {
	rt, err := edges.ReadRelativeTrajectory(filepath.Join(datasetRoot, name, "df.csv"))
	if err != nil {
		return nil, err
	}
	return rt.ToGlobal(), nil
}
