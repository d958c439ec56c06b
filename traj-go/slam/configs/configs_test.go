package configs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trajkit/trajkit/traj-go/slam/evaluation"
)

const registryYAML = `
kitti_mixed:
  "1":
    - /data/kitti/stride_1
  "2":
    - /data/kitti/stride_2
  loops:
    - /data/kitti/loops
tum_plain:
  "1":
    - /data/tum/stride_1
`

func TestLoadRegistryAndLookup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.yaml")
	require.NoError(t, os.WriteFile(path, []byte(registryYAML), 0644))

	reg, err := LoadRegistry(path)
	require.NoError(t, err)

	set, err := reg.Lookup("kitti_mixed")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, set.Strides())
	assert.Equal(t, []string{"1", "2", "loops"}, set.Keys())
	assert.Equal(t, evaluation.KITTI, set.Indices())

	set, err = reg.Lookup("tum_plain")
	require.NoError(t, err)
	assert.Equal(t, evaluation.Full, set.Indices())

	_, err = reg.Lookup("nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "kitti_mixed, tum_plain")
}

func TestValidate(t *testing.T) {
	assert.Error(t, Set{}.Validate())
	assert.Error(t, Set{"1": nil}.Validate())
	assert.Error(t, Set{"1": {"/a"}, "abc": {"/b"}}.Validate())
	assert.NoError(t, Set{"1": {"/a"}, "4": {"/b"}, "loops": {"/c"}}.Validate())
}

func TestDefaultCandidateLists(t *testing.T) {
	values := CoefValues()
	assert.Equal(t, []float64{1, 2, 4, 10, 100, 1e3, 1e4, 1e5, 1e6, 1e12}, values)

	assert.Equal(t, []int{50, 100}, LoopThresholds())

	scales := RotationScales()
	require.Len(t, scales, 11)
	assert.InDelta(t, 1.0/1024, scales[0], 1e-12)
	assert.Equal(t, 1.0, scales[10])

	assert.Equal(t, []int{1000}, MaxIterations())
}
