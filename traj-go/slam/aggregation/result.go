package aggregation

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/trajkit/trajkit/traj-golib/errors"
)

// GroupPrefix names a group label in the result table: 0 is the
// validation cohort, 1 the test cohort.
func GroupPrefix(group int) string {
	switch group {
	case 0:
		return "val"
	case 1:
		return "test"
	default:
		return fmt.Sprintf("group%d", group)
	}
}

// WriteCSV persists the ranked candidate table as the run's artifact.
// Column order is deterministic: trial, config dimensions, per-group
// metric columns (groups ascending, metric keys sorted), score.
func (rt ResultTable) WriteCSV(path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return errors.WrapfOrNil(err, "creating result table %s", path)
	}
	defer errors.Defer(&err, f.Close)

	groups, keys := rt.columns()

	header := []string{"trial", "coef", "coef_loop", "loop_threshold", "rotation_scale", "max_iterations", "online"}
	for _, g := range groups {
		for _, k := range keys {
			header = append(header, GroupPrefix(g)+"_"+k)
		}
	}
	header = append(header, "score")

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return errors.Wrapf(err, "writing result table %s", path)
	}

	for _, cand := range rt.Candidates {
		row := []string{
			strconv.Itoa(cand.Trial),
			coefString(cand.Config.Coef),
			formatFloat(cand.Config.CoefLoop),
			strconv.Itoa(cand.Config.LoopThreshold),
			formatFloat(cand.Config.RotationScale),
			strconv.Itoa(cand.Config.MaxIterations),
			strconv.FormatBool(cand.Config.Online),
		}
		for _, g := range groups {
			for _, k := range keys {
				if record, ok := cand.Groups[g]; ok {
					row = append(row, formatFloat(record[k]))
				} else {
					row = append(row, "")
				}
			}
		}
		row = append(row, formatFloat(cand.Score))
		if err := w.Write(row); err != nil {
			return errors.Wrapf(err, "writing result table %s", path)
		}
	}

	w.Flush()
	return errors.WrapfOrNil(w.Error(), "flushing result table %s", path)
}

// columns collects the distinct group labels and metric keys across
// all candidates, both sorted.
func (rt ResultTable) columns() (groups []int, keys []string) {
	groupSet := make(map[int]bool)
	keySet := make(map[string]bool)
	for _, cand := range rt.Candidates {
		for g, record := range cand.Groups {
			groupSet[g] = true
			for k := range record {
				keySet[k] = true
			}
		}
	}
	for g := range groupSet {
		groups = append(groups, g)
	}
	sort.Ints(groups)
	for k := range keySet {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return groups, keys
}

func coefString(coef map[int]float64) string {
	strides := make([]int, 0, len(coef))
	for s := range coef {
		strides = append(strides, s)
	}
	sort.Ints(strides)

	var out string
	for i, s := range strides {
		if i > 0 {
			out += ";"
		}
		out += fmt.Sprintf("%d:%s", s, formatFloat(coef[s]))
	}
	return out
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
