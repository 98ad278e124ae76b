package matcher

import (
	"math"

	"study-match/internal/vectorizer"
)

// Similarity returns the cosine similarity of a and b. Cosine similarity is
// undefined when either vector has zero magnitude; that case scores 0.
func Similarity(a, b vectorizer.FeatureVector) float64 {
	denom := a.Magnitude() * b.Magnitude()
	if denom == 0 {
		return 0
	}
	var dot float64
	for i := range a {
		dot += a[i] * b[i]
	}
	return dot / denom
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
