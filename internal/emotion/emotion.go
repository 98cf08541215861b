// Package emotion defines the seven-label emotion domain shared by the
// classifier, the memory aggregator and the advice pipeline.
package emotion

import "math"

// Label identifies one of the supported emotion classes.
type Label string

const (
	Anger    Label = "anger"
	Disgust  Label = "disgust"
	Fear     Label = "fear"
	Joy      Label = "joy"
	Neutral  Label = "neutral"
	Sadness  Label = "sadness"
	Surprise Label = "surprise"
)

// Labels returns the supported labels in canonical order. Dominant-emotion
// ties are broken by this order, so it must stay stable.
func Labels() []Label {
	return []Label{Anger, Disgust, Fear, Joy, Neutral, Sadness, Surprise}
}

// Valid reports whether l is one of the supported labels.
func Valid(l Label) bool {
	switch l {
	case Anger, Disgust, Fear, Joy, Neutral, Sadness, Surprise:
		return true
	}
	return false
}

// Vector holds one score per supported label. Scores are independently
// normalized per classification call and are not required to sum to 1.
type Vector struct {
	Anger    float64 `json:"anger"`
	Disgust  float64 `json:"disgust"`
	Fear     float64 `json:"fear"`
	Joy      float64 `json:"joy"`
	Neutral  float64 `json:"neutral"`
	Sadness  float64 `json:"sadness"`
	Surprise float64 `json:"surprise"`
}

// Get returns the score for a label; unknown labels score zero.
func (v Vector) Get(l Label) float64 {
	switch l {
	case Anger:
		return v.Anger
	case Disgust:
		return v.Disgust
	case Fear:
		return v.Fear
	case Joy:
		return v.Joy
	case Neutral:
		return v.Neutral
	case Sadness:
		return v.Sadness
	case Surprise:
		return v.Surprise
	}
	return 0
}

func (v *Vector) set(l Label, score float64) {
	switch l {
	case Anger:
		v.Anger = score
	case Disgust:
		v.Disgust = score
	case Fear:
		v.Fear = score
	case Joy:
		v.Joy = score
	case Neutral:
		v.Neutral = score
	case Sadness:
		v.Sadness = score
	case Surprise:
		v.Surprise = score
	}
}

// FromScores builds a Vector from raw upstream scores. Labels outside the
// supported set are discarded, missing labels default to zero, and every
// kept score is clamped to [0,1] and rounded to three decimals.
func FromScores(scores map[string]float64) Vector {
	var v Vector
	for raw, score := range scores {
		l := Label(raw)
		if !Valid(l) {
			continue
		}
		v.set(l, Round3(clamp01(score)))
	}
	return v
}

// NeutralFallback is the deterministic vector persisted when classification
// fails permanently: neutral=1, everything else 0.
func NeutralFallback() Vector {
	return Vector{Neutral: 1.0}
}

// Dominant returns the label with the highest score and that score.
// Ties are broken by canonical label order.
func (v Vector) Dominant() (Label, float64) {
	best := Labels()[0]
	bestScore := v.Get(best)
	for _, l := range Labels()[1:] {
		if s := v.Get(l); s > bestScore {
			best, bestScore = l, s
		}
	}
	return best, bestScore
}

// Average computes the per-label mean over a batch of vectors.
// An empty batch averages to the zero vector.
func Average(vs []Vector) Vector {
	if len(vs) == 0 {
		return Vector{}
	}
	var sum Vector
	for _, v := range vs {
		for _, l := range Labels() {
			sum.set(l, sum.Get(l)+v.Get(l))
		}
	}
	n := float64(len(vs))
	var avg Vector
	for _, l := range Labels() {
		avg.set(l, sum.Get(l)/n)
	}
	return avg
}

// Round3 rounds a score to three decimal digits.
func Round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
