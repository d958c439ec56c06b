// Package configs holds the named prediction-set registry and the
// built-in hyperparameter candidate lists. A set is resolved by name
// exactly once at startup and passed explicitly from there on.
package configs

import (
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/trajkit/trajkit/traj-go/slam/evaluation"
	"github.com/trajkit/trajkit/traj-golib/errors"
)

// LoopsKey is the stride key of loop-closure prediction roots.
const LoopsKey = "loops"

// Set maps stride keys (decimal stride distances plus LoopsKey) to the
// prediction root directories of that stride.
type Set map[string][]string

// Validate checks the stride keys and requires the consecutive stride.
func (s Set) Validate() error {
	if len(s["1"]) == 0 {
		return errors.New("config set has no roots for stride 1")
	}
	for key, roots := range s {
		if key != LoopsKey {
			if _, err := strconv.Atoi(key); err != nil {
				return errors.Errorf("config set has invalid stride key %q", key)
			}
		}
		if len(roots) == 0 {
			return errors.Errorf("config set has no roots for stride %s", key)
		}
	}
	return nil
}

// Strides returns the integer strides of the set in ascending order,
// excluding the loops key.
func (s Set) Strides() []int {
	var strides []int
	for key := range s {
		if key == LoopsKey {
			continue
		}
		stride, err := strconv.Atoi(key)
		if err != nil {
			continue
		}
		strides = append(strides, stride)
	}
	sort.Ints(strides)
	return strides
}

// Keys returns all stride keys in deterministic order: numeric strides
// ascending, then the loops key.
func (s Set) Keys() []string {
	keys := make([]string, 0, len(s))
	for _, stride := range s.Strides() {
		keys = append(keys, strconv.Itoa(stride))
	}
	if _, ok := s[LoopsKey]; ok {
		keys = append(keys, LoopsKey)
	}
	return keys
}

// Indices picks the RPE segment scheme from the dataset identity
// embedded in the stride-1 root path.
func (s Set) Indices() evaluation.Indices {
	if len(s["1"]) > 0 && strings.Contains(s["1"][0], "kitti") {
		return evaluation.KITTI
	}
	return evaluation.Full
}

// Registry resolves config sets by name.
type Registry map[string]Set

// LoadRegistry reads a YAML file mapping set names to stride->roots
// config sets.
func LoadRegistry(path string) (Registry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapfOrNil(err, "reading config registry %s", path)
	}
	var reg Registry
	if err := yaml.Unmarshal(raw, &reg); err != nil {
		return nil, errors.Wrapf(err, "parsing config registry %s", path)
	}
	for name, set := range reg {
		if err := set.Validate(); err != nil {
			return nil, errors.Wrapf(err, "config set %s", name)
		}
	}
	return reg, nil
}

// Lookup resolves a set by name, listing the known names on a miss.
func (r Registry) Lookup(name string) (Set, error) {
	set, ok := r[name]
	if !ok {
		names := make([]string, 0, len(r))
		for n := range r {
			names = append(names, n)
		}
		sort.Strings(names)
		return nil, errors.Errorf("unknown config set %q, known sets: %s", name, strings.Join(names, ", "))
	}
	return set, nil
}

// CoefValues is the default multiplier grid: small integer factors,
// six decades, and a disabling 1e12.
func CoefValues() []float64 {
	values := []float64{1, 2, 4}
	for exp := 1; exp <= 6; exp++ {
		values = append(values, math.Pow(10, float64(exp)))
	}
	return append(values, 1e12)
}

// LoopThresholds is the default loop-threshold candidate list.
func LoopThresholds() []int {
	return []int{50, 100}
}

// RotationScales spans 2^-10 .. 2^0.
func RotationScales() []float64 {
	scales := make([]float64, 0, 11)
	for exp := -10; exp <= 0; exp++ {
		scales = append(scales, math.Pow(2, float64(exp)))
	}
	return scales
}

// MaxIterations is the default solver iteration-limit list.
func MaxIterations() []int {
	return []int{1000}
}
