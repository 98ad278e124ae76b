package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"study-match/internal/cache"
	"study-match/internal/matcher"
	"study-match/internal/profile"
)

func intPtr(v int) *int { return &v }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sampleRequest() Request {
	p := profile.Profile{
		Age:           intPtr(20),
		AcademicLevel: "Sophomore",
		FieldOfStudy:  "CS",
		LearningStyle: "Visual",
		Schedule:      map[string]any{"Mon": 1, "Wed": 1},
	}
	return Request{
		Current: p,
		Others: []profile.Candidate{
			{ID: json.RawMessage(`1`), Email: "a@uni.edu", Profile: p},
		},
	}
}

func TestMatchCacheMissStoresResult(t *testing.T) {
	c := new(cache.MockCache)
	c.On("GetResult", mock.Anything, mock.AnythingOfType("string")).Return(nil, nil).Once()
	c.On("SetResult", mock.Anything, mock.AnythingOfType("string"), mock.MatchedBy(func(r *cache.Result) bool {
		return len(r.Matches) == 1 && r.Matches[0].Compatibility == 1.0
	}), time.Minute).Return(nil).Once()

	svc := New(testLogger(), c, time.Minute, matcher.DefaultOptions())
	resp, err := svc.Match(context.Background(), sampleRequest())

	require.NoError(t, err)
	assert.False(t, resp.Cached)
	require.Len(t, resp.Matches, 1)
	assert.Equal(t, "a@uni.edu", resp.Matches[0].Email)
	c.AssertExpectations(t)
}

func TestMatchCacheHit(t *testing.T) {
	cached := &cache.Result{Matches: []matcher.Match{{ID: json.RawMessage(`"x"`), Email: "x@uni.edu", Compatibility: 0.9}}}
	c := new(cache.MockCache)
	c.On("GetResult", mock.Anything, mock.Anything).Return(cached, nil).Once()

	svc := New(testLogger(), c, time.Minute, matcher.DefaultOptions())
	resp, err := svc.Match(context.Background(), sampleRequest())

	require.NoError(t, err)
	assert.True(t, resp.Cached)
	assert.Equal(t, cached.Matches, resp.Matches)
	c.AssertNotCalled(t, "SetResult", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestMatchCacheFailuresDoNotFailRequest(t *testing.T) {
	c := new(cache.MockCache)
	c.On("GetResult", mock.Anything, mock.Anything).Return(nil, errors.New("redis down")).Once()
	c.On("SetResult", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("redis down")).Once()

	svc := New(testLogger(), c, time.Minute, matcher.DefaultOptions())
	resp, err := svc.Match(context.Background(), sampleRequest())

	require.NoError(t, err)
	assert.Len(t, resp.Matches, 1)
	c.AssertExpectations(t)
}

func TestMatchCacheKeyDependsOnOptions(t *testing.T) {
	var keys []string
	c := new(cache.MockCache)
	c.On("GetResult", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		keys = append(keys, args.String(1))
	}).Return(nil, nil)
	c.On("SetResult", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	svc := New(testLogger(), c, time.Minute, matcher.DefaultOptions())
	req := sampleRequest()
	_, err := svc.Match(context.Background(), req)
	require.NoError(t, err)

	req.Limit = intPtr(2)
	_, err = svc.Match(context.Background(), req)
	require.NoError(t, err)

	require.Len(t, keys, 2)
	assert.NotEqual(t, keys[0], keys[1])
}

func TestMatchEmptyCandidates(t *testing.T) {
	svc := New(testLogger(), nil, time.Minute, matcher.DefaultOptions())
	resp, err := svc.Match(context.Background(), Request{Current: sampleRequest().Current})

	require.NoError(t, err)
	assert.NotNil(t, resp.Matches)
	assert.Empty(t, resp.Matches)

	body, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.JSONEq(t, `{"matches":[],"cached":false}`, string(body))
}

func TestMatchMalformedCandidate(t *testing.T) {
	svc := New(testLogger(), nil, time.Minute, matcher.DefaultOptions())
	req := sampleRequest()
	req.Others = append(req.Others, profile.Candidate{Email: "no-id@uni.edu"})

	_, err := svc.Match(context.Background(), req)
	assert.ErrorIs(t, err, matcher.ErrMalformedInput)
}

func TestOptions(t *testing.T) {
	svc := New(testLogger(), nil, 0, matcher.Options{Threshold: 0.5, Limit: 5, ClampAge: true})
	threshold := 0.2

	opts := svc.Options(Request{Threshold: &threshold, Limit: intPtr(3)})
	assert.Equal(t, matcher.Options{Threshold: 0.2, Limit: 3, ClampAge: true}, opts)

	assert.Equal(t, matcher.Options{Threshold: 0.5, Limit: 5, ClampAge: true}, svc.Options(Request{}))
}

func TestValidate(t *testing.T) {
	svc := New(testLogger(), nil, 0, matcher.DefaultOptions())

	assert.NoError(t, svc.Validate(sampleRequest()))

	tooHigh := 1.5
	req := sampleRequest()
	req.Threshold = &tooHigh
	req.Limit = intPtr(100)
	req.Others = append(req.Others, profile.Candidate{ID: json.RawMessage(`2`)})

	var verrs validator.ValidationErrors
	require.ErrorAs(t, svc.Validate(req), &verrs)

	fields := map[string]string{}
	for _, fe := range verrs {
		fields[fe.Field()] = fe.Tag()
	}
	assert.Equal(t, "lte", fields["threshold"])
	assert.Equal(t, "max", fields["limit"])
	assert.Equal(t, "required", fields["email"])
}
