package edges

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"

	"github.com/trajkit/trajkit/traj-go/slam/pose"
	"github.com/trajkit/trajkit/traj-golib/errors"
)

var requiredColumns = []string{
	"from_index", "to_index",
	"euler_x", "euler_y", "euler_z",
	"t_x", "t_y", "t_z",
	"euler_x_confidence", "euler_y_confidence", "euler_z_confidence",
	"t_x_confidence", "t_y_confidence", "t_z_confidence",
}

var meanColumns = []string{
	"euler_x", "euler_y", "euler_z",
	"t_x", "t_y", "t_z",
}

// ReadTable loads a prediction CSV into a Table named after the
// trajectory. A missing required column is a schema error. The diff
// column is optional; when absent it is derived from the indices.
func ReadTable(path, name string) (t Table, err error) {
	f, err := os.Open(path)
	if err != nil {
		return Table{}, errors.WrapfOrNil(err, "opening prediction table %s", path)
	}
	defer errors.Defer(&err, f.Close)

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return Table{}, errors.Wrapf(err, "reading header of %s", path)
	}
	cols, err := columnIndex(header, path, requiredColumns)
	if err != nil {
		return Table{}, err
	}
	diffCol, hasDiff := indexOf(header, "diff")

	t = Table{Name: name}
	for line := 2; ; line++ {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Table{}, errors.Wrapf(err, "reading %s line %d", path, line)
		}

		e := Edge{}
		e.FromIndex, err = intField(record, cols["from_index"])
		if err == nil {
			e.ToIndex, err = intField(record, cols["to_index"])
		}
		if err != nil {
			return Table{}, errors.Wrapf(err, "parsing %s line %d", path, line)
		}

		floats := map[string]*float64{
			"euler_x": &e.EulerX, "euler_y": &e.EulerY, "euler_z": &e.EulerZ,
			"t_x": &e.TX, "t_y": &e.TY, "t_z": &e.TZ,
			"euler_x_confidence": &e.EulerXConfidence,
			"euler_y_confidence": &e.EulerYConfidence,
			"euler_z_confidence": &e.EulerZConfidence,
			"t_x_confidence":     &e.TXConfidence,
			"t_y_confidence":     &e.TYConfidence,
			"t_z_confidence":     &e.TZConfidence,
		}
		for col, dst := range floats {
			*dst, err = strconv.ParseFloat(record[cols[col]], 64)
			if err != nil {
				return Table{}, errors.Wrapf(err, "parsing %s column %s line %d", path, col, line)
			}
		}

		if hasDiff {
			e.Diff, err = intField(record, diffCol)
			if err != nil {
				return Table{}, errors.Wrapf(err, "parsing %s column diff line %d", path, line)
			}
		} else {
			e.Diff = e.ToIndex - e.FromIndex
		}
		t.Edges = append(t.Edges, e)
	}
	return t, nil
}

// ReadRelativeTrajectory loads a ground-truth CSV of per-frame
// relative poses. Only the six mean columns are required.
func ReadRelativeTrajectory(path string) (rt pose.RelativeTrajectory, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WrapfOrNil(err, "opening ground truth %s", path)
	}
	defer errors.Defer(&err, f.Close)

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, errors.Wrapf(err, "reading header of %s", path)
	}
	cols, err := columnIndex(header, path, meanColumns)
	if err != nil {
		return nil, err
	}

	for line := 2; ; line++ {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "reading %s line %d", path, line)
		}
		vals := make([]float64, len(meanColumns))
		for i, col := range meanColumns {
			vals[i], err = strconv.ParseFloat(record[cols[col]], 64)
			if err != nil {
				return nil, errors.Wrapf(err, "parsing %s column %s line %d", path, col, line)
			}
		}
		rt = append(rt, pose.New(vals[0], vals[1], vals[2], vals[3], vals[4], vals[5]))
	}
	return rt, nil
}

func columnIndex(header []string, path string, required []string) (map[string]int, error) {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[name] = i
	}
	for _, name := range required {
		if _, ok := cols[name]; !ok {
			return nil, errors.Errorf("%s: missing required column %q", path, name)
		}
	}
	return cols, nil
}

func indexOf(header []string, name string) (int, bool) {
	for i, h := range header {
		if h == name {
			return i, true
		}
	}
	return 0, false
}

func intField(record []string, i int) (int, error) {
	// index columns are occasionally written as floats
	v, err := strconv.ParseFloat(record[i], 64)
	if err != nil {
		return 0, err
	}
	return int(v), nil
}
