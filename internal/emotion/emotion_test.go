package emotion

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromScoresDiscardsUnknownLabels(t *testing.T) {
	v := FromScores(map[string]float64{
		"joy":       0.91,
		"confusion": 0.99, // not a supported label
		"sadness":   0.02,
	})
	assert.Equal(t, 0.91, v.Joy)
	assert.Equal(t, 0.02, v.Sadness)
	assert.Zero(t, v.Anger)
	assert.Zero(t, v.Neutral)
}

func TestFromScoresClampsAndRounds(t *testing.T) {
	v := FromScores(map[string]float64{
		"anger": 1.7,
		"fear":  -0.3,
		"joy":   0.123456,
	})
	assert.Equal(t, 1.0, v.Anger)
	assert.Equal(t, 0.0, v.Fear)
	assert.Equal(t, 0.123, v.Joy)
}

func TestDominantBreaksTiesByCanonicalOrder(t *testing.T) {
	v := Vector{Fear: 0.5, Sadness: 0.5}
	label, score := v.Dominant()
	// fear precedes sadness in canonical order
	assert.Equal(t, Fear, label)
	assert.Equal(t, 0.5, score)
}

func TestDominantOfZeroVectorIsAnger(t *testing.T) {
	// All-zero vector: first label in canonical order wins the tie.
	label, score := Vector{}.Dominant()
	assert.Equal(t, Anger, label)
	assert.Zero(t, score)
}

func TestNeutralFallback(t *testing.T) {
	v := NeutralFallback()
	label, score := v.Dominant()
	assert.Equal(t, Neutral, label)
	assert.Equal(t, 1.0, score)
	for _, l := range Labels() {
		if l == Neutral {
			continue
		}
		assert.Zero(t, v.Get(l))
	}
}

func TestAverage(t *testing.T) {
	vs := []Vector{
		{Joy: 0.9, Neutral: 0.1},
		{Joy: 0.7, Neutral: 0.3},
		{Joy: 0.8, Sadness: 0.6},
	}
	avg := Average(vs)
	assert.InDelta(t, 0.8, avg.Joy, 1e-9)
	assert.InDelta(t, 0.4/3, avg.Neutral, 1e-9)
	assert.InDelta(t, 0.2, avg.Sadness, 1e-9)

	label, _ := avg.Dominant()
	assert.Equal(t, Joy, label)
}

func TestAverageEmptyBatch(t *testing.T) {
	assert.Equal(t, Vector{}, Average(nil))
}
