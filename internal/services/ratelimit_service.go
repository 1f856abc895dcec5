// Package services – RateLimitService
//
// This file implements the persisted fixed-window rate limiter that gates the
// comment-generation endpoint. Counters live in the rate_limits table keyed
// by "<identifier>_<action>"; the quota resets entirely once the window
// elapses rather than sliding continuously.
//
// Known weakness, accepted: the load-decide-store cycle is not transactional,
// so two concurrent requests for the same (identifier, action) can read the
// same remaining count and both pass, exceeding the limit by a small margin.
package services

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/intensify/intensify-backend/internal/repo"
)

// RateLimitResult is the outcome of one consume attempt.
type RateLimitResult struct {
	Allowed         bool      `json:"allowed"`
	RemainingPoints int       `json:"remainingPoints"`
	NextAttempt     time.Time `json:"nextAttempt"`
}

// RateLimitService implements a fixed-window counter persisted in the
// document store.
type RateLimitService struct {
	DB *gorm.DB

	// Now is the clock used to anchor windows; defaults to time.Now.
	Now func() time.Time
}

// NewRateLimitService constructs a RateLimitService with the real clock.
func NewRateLimitService(db *gorm.DB) *RateLimitService {
	return &RateLimitService{DB: db, Now: time.Now}
}

// Consume spends one point from the (identifier, action) counter.
//
// Semantics:
//   - First sighting: remaining = points-1, window anchored at now, allowed.
//   - Elapsed >= window: full reset to points-1, window re-anchored, allowed.
//   - Inside the window: remaining is decremented. Once the counter is
//     exhausted further requests are denied with NextAttempt = anchor +
//     window; the anchor is NOT refreshed on a decrement or a denial, so a
//     burst near the window's end does not delay the next reset.
//
// Storage errors deny the request (fail closed) with a generic retry-after of
// one full window; they are never surfaced as fatal.
func (s *RateLimitService) Consume(ctx context.Context, identifier, action string, points int, window time.Duration) (RateLimitResult, error) {
	now := s.now()
	key := repo.RateLimitKey(identifier, action)

	rl, err := repo.GetRateLimit(ctx, s.DB, key)
	switch {
	case err == nil:
		elapsed := now.Sub(rl.LastAttempt)
		if elapsed < window {
			if rl.RemainingPoints <= 0 {
				return RateLimitResult{
					Allowed:         false,
					RemainingPoints: 0,
					NextAttempt:     rl.LastAttempt.Add(window),
				}, nil
			}
			remaining := rl.RemainingPoints - 1
			// Keep the original anchor: decrements do not slide the window.
			if serr := repo.SaveRateLimit(ctx, s.DB, key, remaining, rl.LastAttempt); serr != nil {
				return s.denyClosed(now, window), nil
			}
			return RateLimitResult{Allowed: true, RemainingPoints: remaining, NextAttempt: now}, nil
		}
		// Window elapsed: full reset.
		fallthrough

	case err == repo.ErrNotFound:
		remaining := points - 1
		if serr := repo.SaveRateLimit(ctx, s.DB, key, remaining, now); serr != nil {
			return s.denyClosed(now, window), nil
		}
		return RateLimitResult{Allowed: true, RemainingPoints: remaining, NextAttempt: now}, nil

	default:
		return s.denyClosed(now, window), nil
	}
}

// denyClosed is the fail-safe result used when storage misbehaves.
func (s *RateLimitService) denyClosed(now time.Time, window time.Duration) RateLimitResult {
	return RateLimitResult{
		Allowed:         false,
		RemainingPoints: 0,
		NextAttempt:     now.Add(window),
	}
}

func (s *RateLimitService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}
