// Package locate resolves prediction files for a trajectory across
// stride-keyed root directories and classifies them into the
// validation/test cohorts.
package locate

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/trajkit/trajkit/traj-golib/errors"
)

// epochMarker is the fixed substring of artifact directory names; the
// three digits immediately before it are the epoch number.
const epochMarker = "_val_RPE"

// Validation and test cohort labels.
const (
	GroupVal  = 0
	GroupTest = 1
)

// EpochFromDirname extracts the 3-digit epoch number embedded next to
// the marker substring of an artifact directory name.
func EpochFromDirname(dirname string) (int, error) {
	pos := strings.Index(dirname, epochMarker)
	if pos < 3 {
		return 0, errors.Errorf("could not find epoch number in %q", dirname)
	}
	epoch, err := strconv.Atoi(dirname[pos-3 : pos])
	if err != nil {
		return 0, errors.Errorf("could not find epoch number in %q", dirname)
	}
	return epoch, nil
}

// ResolvePath finds the single prediction file for a trajectory under
// a stride root. With several matches the one under the highest epoch
// (embedded in its grandparent directory name) wins; zero matches is a
// resolution error.
func ResolvePath(prefix, trajectoryName string) (string, error) {
	suffix := trajectoryName + ".csv"
	var matches []string
	err := filepath.WalkDir(prefix, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(filepath.Base(path), suffix) {
			matches = append(matches, path)
		}
		return nil
	})
	if err != nil {
		return "", errors.WrapfOrNil(err, "searching for trajectory %s under %s", trajectoryName, prefix)
	}

	switch len(matches) {
	case 0:
		return "", errors.Errorf("could not find trajectory %s in dir %s", trajectoryName, prefix)
	case 1:
		return matches[0], nil
	}

	best := ""
	bestEpoch := -1
	for _, m := range matches {
		epoch, err := EpochFromDirname(filepath.Base(filepath.Dir(filepath.Dir(m))))
		if err != nil {
			return "", errors.Wrapf(err, "ambiguous matches for trajectory %s: %s", trajectoryName, strings.Join(matches, ", "))
		}
		if epoch > bestEpoch {
			bestEpoch = epoch
			best = m
		}
	}
	return best, nil
}

// Classify maps a prediction file to its cohort from the parent
// directory name. Anything but val or test is a schema error.
func Classify(path string) (int, error) {
	switch filepath.Base(filepath.Dir(path)) {
	case "val":
		return GroupVal, nil
	case "test":
		return GroupTest, nil
	default:
		return 0, errors.Errorf("unexpected parent dir of prediction %s: parent dir must be val or test", path)
	}
}

// TrajectoryNames enumerates the validation trajectories of the
// latest-epoch artifact directory under prefix plus the test
// trajectories, with stride prefixes stripped from the names.
func TrajectoryNames(prefix string) ([]string, error) {
	valDir, err := latestValDir(prefix)
	if err != nil {
		return nil, err
	}

	valNames, err := stems(filepath.Join(valDir, "val"))
	if err != nil {
		return nil, err
	}
	testNames, err := stems(filepath.Join(prefix, "test", "test"))
	if err != nil && !os.IsNotExist(errors.Cause(err)) {
		return nil, err
	}

	names := append(valNames, testNames...)
	if len(names) == 0 {
		return nil, errors.Errorf("no trajectories found under %s", prefix)
	}
	for i, name := range names {
		names[i] = stripStridePrefix(name)
	}
	return names, nil
}

// latestValDir picks the validation artifact directory with the
// highest embedded epoch.
func latestValDir(prefix string) (string, error) {
	entries, err := os.ReadDir(prefix)
	if err != nil {
		return "", errors.WrapfOrNil(err, "listing %s", prefix)
	}

	best := ""
	bestEpoch := -1
	var candidates []string
	for _, entry := range entries {
		if !entry.IsDir() || !strings.Contains(entry.Name(), "val") {
			continue
		}
		candidates = append(candidates, entry.Name())
		epoch, err := EpochFromDirname(entry.Name())
		if err != nil {
			continue
		}
		if epoch > bestEpoch {
			bestEpoch = epoch
			best = filepath.Join(prefix, entry.Name())
		}
	}
	if best == "" {
		return "", errors.Errorf("could not find val directories under %s, candidates: %s", prefix, strings.Join(candidates, ", "))
	}
	return best, nil
}

func stems(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.WrapfOrNil(err, "listing %s", dir)
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".csv") {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), ".csv"))
	}
	sort.Strings(names)
	return names, nil
}

// stripStridePrefix drops a leading "<int>_" from a trajectory name.
// Some artifact layouts prepend the stride to the name.
func stripStridePrefix(name string) string {
	parts := strings.SplitN(name, "_", 2)
	if len(parts) == 2 {
		if _, err := strconv.Atoi(parts[0]); err == nil {
			return parts[1]
		}
	}
	return name
}
