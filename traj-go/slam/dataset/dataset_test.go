package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trajkit/trajkit/traj-go/slam/configs"
)

const predHeader = "from_index,to_index,euler_x,euler_y,euler_z,t_x,t_y,t_z,euler_x_confidence,euler_y_confidence,euler_z_confidence,t_x_confidence,t_y_confidence,t_z_confidence\n"

const strideCSV = predHeader +
	"0,1,0,0,0,1,0,0,0.1,0.1,0.1,0.2,0.2,0.2\n" +
	"1,2,0,0,0,1,0,0,0.1,0.1,0.1,0.2,0.2,0.2\n"

// one short-range row that loop filtering must drop
const loopsCSV = predHeader +
	"0,1,0,0,0,1,0,0,0.1,0.1,0.1,0.2,0.2,0.2\n" +
	"0,60,0,0,0,5,1,0,0.3,0.3,0.3,0.4,0.4,0.4\n"

const gtCSV = "euler_x,euler_y,euler_z,t_x,t_y,t_z\n0,0,0,1,0,0\n0,0,0,1,0,0\n"

func write(t *testing.T, path, contents string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
}

func TestLoad(t *testing.T) {
	predRoot := t.TempDir()
	loopsRoot := t.TempDir()
	datasetRoot := t.TempDir()

	write(t, filepath.Join(predRoot, "run_010_val_RPE_1.0", "val", "00.csv"), strideCSV)
	write(t, filepath.Join(predRoot, "test", "test", "07.csv"), strideCSV)
	write(t, filepath.Join(loopsRoot, "loops", "00.csv"), loopsCSV)
	write(t, filepath.Join(loopsRoot, "loops", "07.csv"), loopsCSV)
	write(t, filepath.Join(datasetRoot, "00", "df.csv"), gtCSV)
	write(t, filepath.Join(datasetRoot, "07", "df.csv"), gtCSV)

	set := configs.Set{
		"1":              {predRoot},
		configs.LoopsKey: {loopsRoot},
	}

	X, y, groups, err := Load(datasetRoot, set)
	require.NoError(t, err)

	require.Len(t, X, 2)
	require.Len(t, y, 2)
	assert.Equal(t, []int{0, 1}, groups)

	// stride-1 edges plus the surviving loop row
	assert.Equal(t, "00", X[0].Name)
	require.Len(t, X[0].Edges, 3)
	assert.Equal(t, 60, X[0].Edges[2].Diff)
	assert.Equal(t, 2, X[0].ConsecutiveLen())

	// two relative rows chain into three global poses
	assert.Len(t, y[0], 3)
}

func TestLoadMissingPrediction(t *testing.T) {
	predRoot := t.TempDir()
	datasetRoot := t.TempDir()

	write(t, filepath.Join(predRoot, "run_010_val_RPE_1.0", "val", "00.csv"), strideCSV)
	write(t, filepath.Join(datasetRoot, "00", "df.csv"), gtCSV)

	// stride 2 has no file for trajectory 00
	set := configs.Set{
		"1": {predRoot},
		"2": {t.TempDir()},
	}

	_, _, _, err := Load(datasetRoot, set)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "could not find trajectory 00")
}

func TestLoadMissingGroundTruth(t *testing.T) {
	predRoot := t.TempDir()

	write(t, filepath.Join(predRoot, "run_010_val_RPE_1.0", "val", "00.csv"), strideCSV)

	set := configs.Set{"1": {predRoot}}

	_, _, _, err := Load(t.TempDir(), set)
	require.Error(t, err)
}

func TestLoadInvalidSet(t *testing.T) {
	_, _, _, err := Load(t.TempDir(), configs.Set{})
	require.Error(t, err)
}
