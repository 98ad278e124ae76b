// Package matcher ranks candidate profiles by compatibility with a subject.
package matcher

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"study-match/internal/profile"
	"study-match/internal/vectorizer"
)

const (
	DefaultThreshold = 0.5
	DefaultLimit     = 5
)

// ErrMalformedInput is returned when a candidate lacks its id or email.
var ErrMalformedInput = errors.New("malformed input")

// Options controls filtering and truncation.
type Options struct {
	// Threshold is the minimum similarity to include; the comparison is strict.
	Threshold float64
	// Limit is the maximum number of results. Values <= 0 mean DefaultLimit.
	Limit int
	// ClampAge is passed through to the vectorizer.
	ClampAge bool
}

// DefaultOptions returns threshold 0.5 and limit 5.
func DefaultOptions() Options {
	return Options{Threshold: DefaultThreshold, Limit: DefaultLimit}
}

// Match is a ranked candidate. Compatibility is rounded to two decimals.
type Match struct {
	ID            json.RawMessage `json:"id"`
	Email         string          `json:"email"`
	Compatibility float64         `json:"compatibility"`
}

// Rank scores every candidate against subject and returns at most
// opts.Limit matches ordered by descending compatibility. Candidates with
// equal rounded compatibility keep their input order. The whole call fails
// with ErrMalformedInput if any candidate is missing its id or email.
func Rank(subject profile.Profile, candidates []profile.Candidate, opts Options) ([]Match, error) {
	for i, c := range candidates {
		if !c.Identified() {
			return nil, fmt.Errorf("candidate %d: %w: id and email are required", i, ErrMalformedInput)
		}
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	z := vectorizer.New(vectorizer.Options{ClampAge: opts.ClampAge})
	subjectVec := z.Vectorize(subject)

	matches := make([]Match, 0, len(candidates))
	for _, c := range candidates {
		sim := Similarity(subjectVec, z.Vectorize(c.Profile))
		if sim <= opts.Threshold {
			continue
		}
		score := round2(sim)
		if score <= opts.Threshold {
			continue
		}
		matches = append(matches, Match{ID: c.ID, Email: c.Email, Compatibility: score})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Compatibility > matches[j].Compatibility
	})

	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}
