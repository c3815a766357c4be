package risk

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/echohealth/echohealth/internal/model"
)

func voiceRec(risk int) *model.IndicatorRecord {
	return &model.IndicatorRecord{
		Modality:         model.ModalityVoice,
		RiskContribution: risk,
		Confidence:       85,
	}
}

func faceRec(risk int) *model.IndicatorRecord {
	return &model.IndicatorRecord{
		Modality:         model.ModalityFace,
		RiskContribution: risk,
		Confidence:       80,
	}
}

func TestAggregateBothModalities(t *testing.T) {
	for v := model.RiskContributionMin; v <= model.RiskContributionMax; v++ {
		for f := model.RiskContributionMin; f <= model.RiskContributionMax; f++ {
			res, err := Aggregate(voiceRec(v), faceRec(f))
			require.NoError(t, err)

			want := int(math.Round(float64(v+f) / 2))
			assert.Equal(t, want, res.Score, "voice=%d face=%d", v, f)
			assert.GreaterOrEqual(t, res.Score, model.RiskContributionMin)
			assert.LessOrEqual(t, res.Score, model.RiskContributionMax)
		}
	}
}

func TestAggregateRoundsHalfUp(t *testing.T) {
	res, err := Aggregate(voiceRec(15), faceRec(16))
	require.NoError(t, err)
	assert.Equal(t, 16, res.Score)
}

func TestAggregateSingleModality(t *testing.T) {
	res, err := Aggregate(voiceRec(37), nil)
	require.NoError(t, err)
	assert.Equal(t, 37, res.Score)

	res, err = Aggregate(nil, faceRec(37))
	require.NoError(t, err)
	assert.Equal(t, 37, res.Score)
}

func TestAggregateNoRecords(t *testing.T) {
	_, err := Aggregate(nil, nil)
	require.ErrorIs(t, err, ErrNoRecords)
}

func TestAggregateVoiceThenFace(t *testing.T) {
	res, err := Aggregate(voiceRec(15), faceRec(25))
	require.NoError(t, err)
	assert.Equal(t, 20, res.Score)
	assert.Equal(t, model.RiskModerate, res.RiskLevel)
}

func TestLevelBoundaries(t *testing.T) {
	cases := []struct {
		score int
		want  model.RiskLevel
	}{
		{0, model.RiskLow},
		{19, model.RiskLow},
		{20, model.RiskModerate},
		{39, model.RiskModerate},
		{40, model.RiskHigh},
		{100, model.RiskHigh},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, LevelFor(c.score), "score=%d", c.score)
	}
}

func TestAggregateIsPure(t *testing.T) {
	v, f := voiceRec(33), faceRec(41)
	a, err := Aggregate(v, f)
	require.NoError(t, err)
	b, err := Aggregate(v, f)
	require.NoError(t, err)
	assert.Equal(t, a.Score, b.Score)
	assert.Equal(t, a.RiskLevel, b.RiskLevel)
}

func TestAdviceThresholdsAreIndependent(t *testing.T) {
	// Score 25 is Moderate on the results mapping but still the low-risk
	// assistant response; the two consumers keep separate cut points.
	assert.Equal(t, model.RiskModerate, LevelFor(25))
	assert.Contains(t, AdviceFor(25), "low risk level")
	assert.Contains(t, AdviceFor(45), "moderate risk")
	assert.Contains(t, AdviceFor(60), "higher risk")
}
