package distill

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTrajectoryFile(t *testing.T, dir, rel, content string) {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestLoadDataset(t *testing.T) {
	dir := t.TempDir()
	writeTrajectoryFile(t, dir, "agentharm-traj/harmful_steps.json", `[
		{"instruction": "hack the server", "history": "", "current_action": "run_exploit()", "env_info": "tools", "score": 1.0},
		{"instruction": "hack the server", "history": "run_exploit()", "current_action": "exfiltrate()", "env_info": "tools", "score": 1}
	]`)
	writeTrajectoryFile(t, dir, "agentharm-traj/benign_steps.json", `[
		{"instruction": "check the weather", "history": "", "current_action": "get_weather()", "env_info": "tools", "score": 0.0}
	]`)

	samples, err := LoadDataset(dir, "agentharm", discardLogger())
	require.NoError(t, err)
	require.Len(t, samples, 3)

	assert.Equal(t, "agentharm", samples[0].Dataset)
	assert.Equal(t, "harmful_steps.json", samples[0].SourceFile)
	assert.Equal(t, "hack the server", samples[0].Instruction)
	assert.Equal(t, 1.0, samples[0].GroundTruth)
	// integer-form scores normalize to float
	assert.Equal(t, 1.0, samples[1].GroundTruth)
	assert.Equal(t, "benign_steps.json", samples[2].SourceFile)
	assert.Equal(t, 0.0, samples[2].GroundTruth)
}

func TestLoadDataset_SkipsMissingFiles(t *testing.T) {
	dir := t.TempDir()
	writeTrajectoryFile(t, dir, "agentharm-traj/harmful_steps.json",
		`[{"instruction": "x", "current_action": "y()", "score": 0.5}]`)

	samples, err := LoadDataset(dir, "agentharm", discardLogger())
	require.NoError(t, err)
	assert.Len(t, samples, 1)
	assert.Equal(t, "", samples[0].History)
	assert.Equal(t, 0.5, samples[0].GroundTruth)
}

func TestLoadDataset_UnknownName(t *testing.T) {
	_, err := LoadDataset(t.TempDir(), "nonsense", discardLogger())
	assert.Error(t, err)
}

func TestLoadDataset_RejectsMalformedJSON(t *testing.T) {
	dir := t.TempDir()
	writeTrajectoryFile(t, dir, "agentharm-traj/harmful_steps.json", `{"not": "an array"`)

	_, err := LoadDataset(dir, "agentharm", discardLogger())
	assert.Error(t, err)
}

func TestLoadAll_PreservesDatasetOrder(t *testing.T) {
	dir := t.TempDir()
	writeTrajectoryFile(t, dir, "agentharm-traj/harmful_steps.json",
		`[{"instruction": "a", "current_action": "x()", "score": 1.0}]`)
	writeTrajectoryFile(t, dir, "asb-traj/test/DPI_attack_success.json",
		`[{"instruction": "b", "current_action": "y()", "score": 1.0}]`)
	writeTrajectoryFile(t, dir, "agentdojo-traj/banking.json",
		`[{"instruction": "c", "current_action": "z()", "score": 0.0}]`)

	samples, err := LoadAll(dir, discardLogger())
	require.NoError(t, err)
	require.Len(t, samples, 3)
	assert.Equal(t, []string{"agentharm", "asb", "agentdojo"},
		[]string{samples[0].Dataset, samples[1].Dataset, samples[2].Dataset})
}

func TestLoadAll_EmptyDirErrors(t *testing.T) {
	_, err := LoadAll(t.TempDir(), discardLogger())
	assert.Error(t, err)
}
