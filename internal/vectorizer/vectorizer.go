// Package vectorizer turns a profile into a fixed-length feature vector.
package vectorizer

import (
	"hash/fnv"
	"math"

	"study-match/internal/profile"
)

// Dimensions is the length of every FeatureVector.
const Dimensions = 5

const (
	minAge      = 18
	ageSpan     = 12
	maxLevel    = 4
	hashBuckets = 10
	daysPerWeek = 7
)

// Component indexes, in vector order.
const (
	Age = iota
	Level
	Field
	Style
	Schedule
)

var levels = map[string]int{
	"Freshman":  0,
	"Sophomore": 1,
	"Junior":    2,
	"Senior":    3,
	"Graduate":  4,
}

// FeatureVector is the numeric encoding of a profile.
type FeatureVector [Dimensions]float64

// Magnitude returns the Euclidean norm of v.
func (v FeatureVector) Magnitude() float64 {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum)
}

// Options tunes vectorization.
type Options struct {
	// ClampAge limits the age component to [0,1]. Off by default, so ages
	// outside 18..30 produce components outside that range.
	ClampAge bool
}

// Vectorizer derives feature vectors. The zero value is ready to use.
type Vectorizer struct {
	opts Options
}

// New returns a Vectorizer with the given options.
func New(opts Options) Vectorizer {
	return Vectorizer{opts: opts}
}

// Vectorize encodes p with default options.
func Vectorize(p profile.Profile) FeatureVector {
	return Vectorizer{}.Vectorize(p)
}

// Vectorize encodes p. It never fails: absent fields map to 0.
func (z Vectorizer) Vectorize(p profile.Profile) FeatureVector {
	return FeatureVector{
		Age:      z.age(p.Age),
		Level:    float64(levels[p.AcademicLevel]) / maxLevel,
		Field:    bucket(p.FieldOfStudy),
		Style:    bucket(p.LearningStyle),
		Schedule: math.Min(float64(len(p.Schedule)), daysPerWeek) / daysPerWeek,
	}
}

func (z Vectorizer) age(age *int) float64 {
	if age == nil || *age == 0 {
		return 0
	}
	v := float64(*age-minAge) / ageSpan
	if z.opts.ClampAge {
		v = math.Max(0, math.Min(1, v))
	}
	return v
}

// bucket maps s onto one of hashBuckets evenly spaced values in [0,1) using
// FNV-1a, which is stable across processes. The empty string is bucket 0.
func bucket(s string) float64 {
	if s == "" {
		return 0
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(s))
	return float64(h.Sum32()%hashBuckets) / hashBuckets
}
