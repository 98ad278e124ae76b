package profile

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCandidateDecodesFlatFields(t *testing.T) {
	body := `{"id": 42, "email": "a@uni.edu", "age": 20, "academic_level": "Junior",
		"field_of_study": "CS", "learning_style": "Visual", "schedule": {"Mon": 1, "Wed": "x"}}`

	var c Candidate
	require.NoError(t, json.Unmarshal([]byte(body), &c))

	assert.Equal(t, "42", string(c.ID))
	assert.Equal(t, "a@uni.edu", c.Email)
	require.NotNil(t, c.Age)
	assert.Equal(t, 20, *c.Age)
	assert.Equal(t, "Junior", c.AcademicLevel)
	assert.Len(t, c.Schedule, 2)
}

func TestCandidateIdentified(t *testing.T) {
	tests := []struct {
		name  string
		id    string
		email string
		want  bool
	}{
		{"numeric id", `7`, "a@b.c", true},
		{"string id", `"u-7"`, "a@b.c", true},
		{"missing id", ``, "a@b.c", false},
		{"null id", `null`, "a@b.c", false},
		{"blank string id", `"  "`, "a@b.c", false},
		{"object id", `{"x":1}`, "a@b.c", false},
		{"missing email", `7`, "", false},
		{"blank email", `7`, "   ", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Candidate{Email: tt.email}
			if tt.id != "" {
				c.ID = json.RawMessage(tt.id)
			}
			assert.Equal(t, tt.want, c.Identified())
		})
	}
}

func TestValidator(t *testing.T) {
	v := NewValidator()

	t.Run("valid candidate", func(t *testing.T) {
		c := Candidate{ID: json.RawMessage(`1`), Email: "a@b.c"}
		assert.NoError(t, v.Struct(c))
	})

	t.Run("null id reports json field name", func(t *testing.T) {
		c := Candidate{ID: json.RawMessage(`null`), Email: "a@b.c"}
		err := v.Struct(c)
		var verrs validator.ValidationErrors
		require.True(t, errors.As(err, &verrs))
		require.Len(t, verrs, 1)
		assert.Equal(t, "id", verrs[0].Field())
		assert.Equal(t, "jsonid", verrs[0].Tag())
	})

	t.Run("missing email", func(t *testing.T) {
		c := Candidate{ID: json.RawMessage(`1`)}
		err := v.Struct(c)
		var verrs validator.ValidationErrors
		require.True(t, errors.As(err, &verrs))
		assert.Equal(t, "email", verrs[0].Field())
		assert.Equal(t, "required", verrs[0].Tag())
	})

	t.Run("schedule longer than a week", func(t *testing.T) {
		schedule := map[string]any{}
		for _, d := range []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun", "Mon-2"} {
			schedule[d] = 1
		}
		c := Candidate{ID: json.RawMessage(`1`), Email: "a@b.c", Profile: Profile{Schedule: schedule}}
		err := v.Struct(c)
		var verrs validator.ValidationErrors
		require.True(t, errors.As(err, &verrs))
		assert.Equal(t, "schedule", verrs[0].Field())
	})
}
