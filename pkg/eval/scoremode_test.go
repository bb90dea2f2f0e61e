package eval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fptr(v float64) *float64 { return &v }

func TestScoreMode_Map(t *testing.T) {
	tests := []struct {
		mode   ScoreMode
		in     float64
		expect int
	}{
		{ScoreModeStrict, 0.0, 0},
		{ScoreModeStrict, 0.5, 1},
		{ScoreModeStrict, 1.0, 1},
		{ScoreModeLoose, 0.0, 0},
		{ScoreModeLoose, 0.5, 0},
		{ScoreModeLoose, 1.0, 1},
		{ScoreModeExact, 0.0, 0},
		{ScoreModeExact, 0.5, 1},
		{ScoreModeExact, 1.0, 2},
	}
	for _, tt := range tests {
		got, ok := tt.mode.Map(tt.in)
		require.True(t, ok, "%s(%v)", tt.mode, tt.in)
		assert.Equal(t, tt.expect, got, "%s(%v)", tt.mode, tt.in)
	}
}

func TestScoreMode_StrictAndLooseDisagreeOnHalf(t *testing.T) {
	strict, _ := ScoreModeStrict.Map(0.5)
	loose, _ := ScoreModeLoose.Map(0.5)
	assert.NotEqual(t, strict, loose)
}

func TestScoreMode_ExactRejectsUnknownValue(t *testing.T) {
	_, ok := ScoreModeExact.Map(0.7)
	assert.False(t, ok)
}

func TestParseScoreMode(t *testing.T) {
	for _, valid := range []string{"strict", "loose", "exact"} {
		mode, err := ParseScoreMode(valid)
		require.NoError(t, err)
		assert.Equal(t, ScoreMode(valid), mode)
	}
	_, err := ParseScoreMode("fuzzy")
	assert.Error(t, err)
}

func TestFilterPairs_DropsNilPredictionsPairwise(t *testing.T) {
	preds := []*float64{fptr(0.0), nil, fptr(1.0)}
	labels := []float64{0.0, 0.5, 1.0}

	predsClean, labelsClean := FilterPairs(preds, labels, ScoreModeStrict)

	assert.Equal(t, []int{0, 1}, predsClean)
	assert.Equal(t, []int{0, 1}, labelsClean)
}

func TestFilterPairs_KeepsAlignment(t *testing.T) {
	preds := []*float64{nil, fptr(1.0), nil, fptr(0.0), fptr(0.5)}
	labels := []float64{1.0, 1.0, 0.0, 0.0, 0.5}

	predsClean, labelsClean := FilterPairs(preds, labels, ScoreModeLoose)

	require.Len(t, predsClean, 3)
	assert.Equal(t, []int{1, 0, 0}, predsClean)
	assert.Equal(t, []int{1, 0, 0}, labelsClean)
}

func TestFilterPairs_ExactDropsOutOfClassValues(t *testing.T) {
	preds := []*float64{fptr(0.7), fptr(1.0)}
	labels := []float64{1.0, 1.0}

	predsClean, labelsClean := FilterPairs(preds, labels, ScoreModeExact)

	assert.Equal(t, []int{2}, predsClean)
	assert.Equal(t, []int{2}, labelsClean)
}

func TestFilterPairs_Empty(t *testing.T) {
	predsClean, labelsClean := FilterPairs(nil, nil, ScoreModeStrict)
	assert.Empty(t, predsClean)
	assert.Empty(t, labelsClean)
}
