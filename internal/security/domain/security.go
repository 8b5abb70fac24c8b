// Package domain defines the security pipeline domain models: rate limit
// classes and decisions, lockout tracking, and CSRF token records.
package domain

import "time"

// RateLimitClass buckets endpoints into independent rate limit budgets.
// A client exhausting one class is not throttled on the others.
type RateLimitClass string

const (
	ClassAPI       RateLimitClass = "api"
	ClassAuth      RateLimitClass = "auth"
	ClassAI        RateLimitClass = "ai"
	ClassSensitive RateLimitClass = "sensitive"
)

// ClassLimits is the request budget of one class: Points requests per Window.
type ClassLimits struct {
	Points int
	Window time.Duration
}

// RateLimitDecision is the outcome of a rate limit check.
type RateLimitDecision struct {
	Allowed   bool
	Limit     int
	Remaining int
	// RetryAfter is how long the client should wait before retrying.
	// Zero when the request was allowed.
	RetryAfter time.Duration
}

// LockoutStatus reports the failed-login state for one identifier/IP pair.
type LockoutStatus struct {
	Blocked  bool
	Attempts int
}
