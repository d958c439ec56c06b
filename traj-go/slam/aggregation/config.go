package aggregation

import (
	"fmt"
	"sort"
	"strings"
)

// Config is one candidate weighting configuration. A Config is created
// per search trial and never mutated afterwards.
type Config struct {
	// Coef maps a stride distance to its confidence multiplier. A
	// stride present in the data but absent here (and not past the
	// loop threshold) is effectively disabled by the weighting
	// policy's fallback.
	Coef map[int]float64

	// CoefLoop is the multiplier for edges whose diff exceeds
	// LoopThreshold and has no explicit Coef entry.
	CoefLoop      float64
	LoopThreshold int

	// RotationScale additionally multiplies the three rotation
	// confidences.
	RotationScale float64

	MaxIterations int
	Online        bool
}

// clone returns a deep copy so each trial owns its Config exclusively.
func (c Config) clone() Config {
	coef := make(map[int]float64, len(c.Coef))
	for k, v := range c.Coef {
		coef[k] = v
	}
	c.Coef = coef
	return c
}

// String renders the config with deterministically ordered coef keys.
func (c Config) String() string {
	strides := make([]int, 0, len(c.Coef))
	for s := range c.Coef {
		strides = append(strides, s)
	}
	sort.Ints(strides)

	parts := make([]string, 0, len(strides))
	for _, s := range strides {
		parts = append(parts, fmt.Sprintf("%d:%g", s, c.Coef[s]))
	}
	return fmt.Sprintf("coef={%s} coef_loop=%g loop_threshold=%d rotation_scale=%g max_iterations=%d online=%t",
		strings.Join(parts, " "), c.CoefLoop, c.LoopThreshold, c.RotationScale, c.MaxIterations, c.Online)
}
