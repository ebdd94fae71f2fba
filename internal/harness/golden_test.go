package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGoldenPath(t *testing.T) {
	assert.Equal(t, filepath.Join("golden", "full_cycle.golden"), GoldenPath("golden", "full_cycle"))
}

func TestWriteAndCompareGolden(t *testing.T) {
	scenario := loadTestScenario(t, "full_cycle")
	result, err := Run(scenario)
	require.NoError(t, err)

	path := GoldenPath(filepath.Join(t.TempDir(), "nested"), scenario.Name)

	_, err = CompareGolden(path, scenario.Name, result)
	require.Error(t, err, "missing golden file should be an error")

	require.NoError(t, WriteGolden(path, scenario.Name, result))

	match, err := CompareGolden(path, scenario.Name, result)
	require.NoError(t, err)
	assert.True(t, match)

	require.NoError(t, os.WriteFile(path, []byte("# stale\n"), 0o644))
	match, err = CompareGolden(path, scenario.Name, result)
	require.NoError(t, err)
	assert.False(t, match)
}

func TestCompareGolden_CheckedInFiles(t *testing.T) {
	for _, name := range []string{"advance_and_wrap", "pointer_stability", "hp_clamping"} {
		t.Run(name, func(t *testing.T) {
			result, err := Run(loadTestScenario(t, name))
			require.NoError(t, err)

			match, err := CompareGolden(GoldenPath(filepath.Join("testdata", "golden"), name), name, result)
			require.NoError(t, err)
			assert.True(t, match)
		})
	}
}
