// Package service wraps the matcher with request validation and result
// caching. It is shared by the HTTP and queue front ends.
package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"

	"study-match/internal/cache"
	"study-match/internal/matcher"
	"study-match/internal/profile"
)

// Request is the body of a match call.
type Request struct {
	Current   profile.Profile     `json:"current"`
	Others    []profile.Candidate `json:"others" validate:"dive"`
	Threshold *float64            `json:"threshold,omitempty" validate:"omitempty,gte=0,lte=1"`
	Limit     *int                `json:"limit,omitempty" validate:"omitempty,min=1,max=50"`
}

// Response lists matches best first. Matches is never nil.
type Response struct {
	Matches []matcher.Match `json:"matches"`
	Cached  bool            `json:"cached"`
}

// Service ranks candidates, consulting the cache first.
type Service struct {
	log      *slog.Logger
	cache    cache.Cache
	ttl      time.Duration
	defaults matcher.Options
	validate *validator.Validate
}

// New builds a Service. A nil cache disables caching.
func New(log *slog.Logger, c cache.Cache, ttl time.Duration, defaults matcher.Options) *Service {
	if c == nil {
		c = cache.NewNoOpCache()
	}
	return &Service{
		log:      log,
		cache:    c,
		ttl:      ttl,
		defaults: defaults,
		validate: profile.NewValidator(),
	}
}

// Validate checks v against its struct tags. Failures are
// validator.ValidationErrors.
func (s *Service) Validate(v any) error {
	return s.validate.Struct(v)
}

// Options merges per-request overrides into the configured defaults.
func (s *Service) Options(req Request) matcher.Options {
	opts := s.defaults
	if req.Threshold != nil {
		opts.Threshold = *req.Threshold
	}
	if req.Limit != nil {
		opts.Limit = *req.Limit
	}
	return opts
}

// Match ranks req.Others against req.Current. Cache errors are logged and
// otherwise ignored; matcher errors are returned as is.
func (s *Service) Match(ctx context.Context, req Request) (Response, error) {
	opts := s.Options(req)

	key, err := cache.GenerateCacheKey(struct {
		Current profile.Profile     `json:"current"`
		Others  []profile.Candidate `json:"others"`
		Options matcher.Options     `json:"options"`
	}{req.Current, req.Others, opts})
	if err != nil {
		s.log.Warn("failed to build cache key", "err", err)
	}

	if key != "" {
		cached, err := s.cache.GetResult(ctx, key)
		if err != nil {
			s.log.Warn("cache lookup failed", "err", err)
		} else if cached != nil {
			s.log.Debug("cache hit", "candidates", len(req.Others), "matches", len(cached.Matches))
			return Response{Matches: nonNil(cached.Matches), Cached: true}, nil
		}
	}

	matches, err := matcher.Rank(req.Current, req.Others, opts)
	if err != nil {
		return Response{}, err
	}
	s.log.Debug("ranked candidates", "candidates", len(req.Others), "matches", len(matches),
		"threshold", opts.Threshold, "limit", opts.Limit)

	if key != "" {
		result := &cache.Result{Matches: matches, ComputedAt: time.Now().UTC()}
		if err := s.cache.SetResult(ctx, key, result, s.ttl); err != nil {
			s.log.Warn("failed to cache result", "err", err)
		}
	}
	return Response{Matches: matches}, nil
}

func nonNil(m []matcher.Match) []matcher.Match {
	if m == nil {
		return []matcher.Match{}
	}
	return m
}
