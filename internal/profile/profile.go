// Package profile holds the student profile records exchanged with callers.
package profile

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Profile is the raw record a feature vector is derived from. Every field is
// optional; absent values fall back to neutral defaults when vectorized.
type Profile struct {
	Age           *int           `json:"age,omitempty"`
	AcademicLevel string         `json:"academic_level,omitempty"`
	FieldOfStudy  string         `json:"field_of_study,omitempty"`
	LearningStyle string         `json:"learning_style,omitempty"`
	Schedule      map[string]any `json:"schedule,omitempty" validate:"omitempty,max=7"`
}

// Candidate is a profile that can be returned as a match. ID and Email only
// label the result; they never contribute to the feature vector.
type Candidate struct {
	ID    json.RawMessage `json:"id" validate:"required,jsonid"`
	Email string          `json:"email" validate:"required,max=254"`
	Profile
}

// Identified reports whether the candidate carries both identifying fields.
func (c Candidate) Identified() bool {
	return validID(c.ID) && strings.TrimSpace(c.Email) != ""
}

func validID(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return false
	}
	switch trimmed[0] {
	case '{', '[':
		return false
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return false
		}
		return strings.TrimSpace(s) != ""
	}
	return true
}
