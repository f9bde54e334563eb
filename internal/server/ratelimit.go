package server

import (
	"fmt"
	"sync"
	"time"
)

// RateLimiter tracks per-client request counts in fixed minute, hour and
// day windows.
type RateLimiter struct {
	mu sync.Mutex

	requestsPerMinute int
	requestsPerHour   int
	maxRequestsPerDay int

	now   func() time.Time
	usage map[string]*UserUsage
}

// UserUsage is a snapshot of one client's counters.
type UserUsage struct {
	RequestsThisMinute int
	RequestsThisHour   int
	RequestsToday      int

	minuteStart time.Time
	hourStart   time.Time
	dayStart    time.Time
}

// NewRateLimiter creates a rate limiter. A zero limit is not enforced.
func NewRateLimiter(requestsPerMinute, requestsPerHour, maxRequestsPerDay int) *RateLimiter {
	return &RateLimiter{
		requestsPerMinute: requestsPerMinute,
		requestsPerHour:   requestsPerHour,
		maxRequestsPerDay: maxRequestsPerDay,
		now:               time.Now,
		usage:             make(map[string]*UserUsage),
	}
}

// CheckRateLimit counts a request from userID, or returns a
// *RateLimitError or *QuotaExceededError without counting it.
func (rl *RateLimiter) CheckRateLimit(userID string) error {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	u := rl.getOrCreate(userID, now)
	rl.roll(u, now)

	if rl.requestsPerMinute > 0 && u.RequestsThisMinute >= rl.requestsPerMinute {
		return &RateLimitError{
			Type:       "minute",
			Limit:      rl.requestsPerMinute,
			RetryAfter: u.minuteStart.Add(time.Minute).Sub(now),
		}
	}
	if rl.requestsPerHour > 0 && u.RequestsThisHour >= rl.requestsPerHour {
		return &RateLimitError{
			Type:       "hour",
			Limit:      rl.requestsPerHour,
			RetryAfter: u.hourStart.Add(time.Hour).Sub(now),
		}
	}
	if rl.maxRequestsPerDay > 0 && u.RequestsToday >= rl.maxRequestsPerDay {
		return &QuotaExceededError{
			Type:   "requests",
			Limit:  rl.maxRequestsPerDay,
			Used:   u.RequestsToday,
			Resets: u.dayStart.AddDate(0, 0, 1),
		}
	}

	u.RequestsThisMinute++
	u.RequestsThisHour++
	u.RequestsToday++
	return nil
}

// roll starts new windows once the current ones have passed.
func (rl *RateLimiter) roll(u *UserUsage, now time.Time) {
	if now.Sub(u.minuteStart) >= time.Minute {
		u.RequestsThisMinute = 0
		u.minuteStart = now
	}
	if now.Sub(u.hourStart) >= time.Hour {
		u.RequestsThisHour = 0
		u.hourStart = now
	}
	if day := startOfDay(now); !day.Equal(u.dayStart) {
		u.RequestsToday = 0
		u.dayStart = day
	}
}

func (rl *RateLimiter) getOrCreate(userID string, now time.Time) *UserUsage {
	u, ok := rl.usage[userID]
	if !ok {
		u = &UserUsage{minuteStart: now, hourStart: now, dayStart: startOfDay(now)}
		rl.usage[userID] = u
	}
	return u
}

// GetUsage returns a copy of userID's counters.
func (rl *RateLimiter) GetUsage(userID string) UserUsage {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if u, ok := rl.usage[userID]; ok {
		return *u
	}
	return UserUsage{}
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// RateLimitError represents a rate limit violation.
type RateLimitError struct {
	Type       string        // "minute" or "hour"
	Limit      int           // the limit that was exceeded
	RetryAfter time.Duration // how long to wait before retrying
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded for %s (limit: %d, retry after: %v)", e.Type, e.Limit, e.RetryAfter)
}

// QuotaExceededError represents a daily quota violation.
type QuotaExceededError struct {
	Type   string    // "requests"
	Limit  int       // the limit that was exceeded
	Used   int       // current usage
	Resets time.Time // when the quota resets
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("quota exceeded for %s (used: %d, limit: %d, resets: %s)",
		e.Type, e.Used, e.Limit, e.Resets.Format(time.RFC3339))
}
