// Package service implements the in-memory security state: IP blacklist,
// per-class rate limiting, failed-login lockout, and CSRF tokens.
package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"

	auditDomain "github.com/allisson/trustguard/internal/audit/domain"
	auditUsecase "github.com/allisson/trustguard/internal/audit/usecase"
	securityDomain "github.com/allisson/trustguard/internal/security/domain"
)

// Config carries the tunable knobs of the security state.
type Config struct {
	Limits             map[securityDomain.RateLimitClass]securityDomain.ClassLimits
	LockoutMaxAttempts int
	LockoutWindow      time.Duration
	CSRFTokenTTL       time.Duration
}

// SecurityState holds the process-local security bookkeeping. All state is
// in-memory and instance-local; it is injected, never global, so tests and
// multi-tenant setups can hold independent instances.
//
// All methods are safe for concurrent use.
type SecurityState struct {
	cfg      Config
	auditLog auditUsecase.AuditLogUseCase
	logger   *slog.Logger

	blacklist    sync.Map // map[string]time.Time (ip -> blacklisted at)
	limiters     map[securityDomain.RateLimitClass]*limiterStore
	failedLogins sync.Map // map[string]*failedLoginEntry (identifier|ip)
	csrfTokens   sync.Map // map[string]*csrfEntry (session -> live token)
}

// limiterStore holds per-IP token bucket limiters for one rate limit class.
type limiterStore struct {
	limiters sync.Map // map[string]*limiterEntry
	limits   securityDomain.ClassLimits
}

// limiterEntry pairs a limiter with its last access time for cleanup.
type limiterEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
	mu         sync.Mutex
}

// failedLoginEntry tracks consecutive login failures for one identifier/IP pair.
type failedLoginEntry struct {
	mu          sync.Mutex
	count       int
	lastAttempt time.Time
}

// csrfEntry holds a session's single live CSRF token with its expiry.
type csrfEntry struct {
	token     string
	expiresAt time.Time
}

// NewSecurityState creates a security state with independent limiter stores
// per rate limit class.
func NewSecurityState(
	cfg Config,
	auditLog auditUsecase.AuditLogUseCase,
	logger *slog.Logger,
) *SecurityState {
	limiters := make(map[securityDomain.RateLimitClass]*limiterStore, len(cfg.Limits))
	for class, limits := range cfg.Limits {
		limiters[class] = &limiterStore{limits: limits}
	}

	return &SecurityState{
		cfg:      cfg,
		auditLog: auditLog,
		logger:   logger,
		limiters: limiters,
	}
}

// StartCleanup launches the background sweep that drops stale limiters,
// expired CSRF tokens, and stale failed-login counters. Returns when the
// context is canceled.
func (s *SecurityState) StartCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.cleanupStale()
		}
	}
}

// BlacklistIP adds an IP to the blacklist and records a critical audit event.
func (s *SecurityState) BlacklistIP(ctx context.Context, ip, reason string) {
	s.blacklist.Store(ip, time.Now().UTC())

	s.logger.Warn("ip blacklisted", "ip", ip, "reason", reason)
	s.auditLog.LogSecurityEvent(
		ctx,
		auditDomain.ActionIPBlacklisted,
		auditDomain.SeverityCritical,
		ip,
		map[string]any{"reason": reason},
	)
}

// IsBlacklisted reports whether the IP is on the blacklist.
func (s *SecurityState) IsBlacklisted(ip string) bool {
	_, ok := s.blacklist.Load(ip)
	return ok
}

// RemoveFromBlacklist drops an IP from the blacklist.
func (s *SecurityState) RemoveFromBlacklist(ip string) {
	s.blacklist.Delete(ip)
}

// CheckRateLimit consumes one request from the IP's budget in the given class.
// Classes are independent: exhausting one never throttles another. An unknown
// class is allowed through with no budget accounting.
//
// Every denial records a medium severity audit event.
func (s *SecurityState) CheckRateLimit(
	ctx context.Context,
	ip string,
	class securityDomain.RateLimitClass,
) securityDomain.RateLimitDecision {
	store, ok := s.limiters[class]
	if !ok {
		return securityDomain.RateLimitDecision{Allowed: true}
	}

	limiter := store.getLimiter(ip)

	if limiter.Allow() {
		return securityDomain.RateLimitDecision{
			Allowed:   true,
			Limit:     store.limits.Points,
			Remaining: int(limiter.Tokens()),
		}
	}

	// Estimate when the next token becomes available
	reservation := limiter.Reserve()
	retryAfter := reservation.Delay()
	reservation.Cancel()

	s.auditLog.LogSecurityEvent(
		ctx,
		auditDomain.ActionRateLimitExceeded,
		auditDomain.SeverityMedium,
		ip,
		map[string]any{
			"class": string(class),
			"limit": store.limits.Points,
		},
	)

	return securityDomain.RateLimitDecision{
		Allowed:    false,
		Limit:      store.limits.Points,
		Remaining:  0,
		RetryAfter: retryAfter,
	}
}

// TrackFailedLogin counts a failed login attempt for an identifier/IP pair.
// The counter resets before counting only when the prior attempt is older
// than the lockout window, so a chain of failures each inside the window
// accumulates indefinitely, biased toward over-blocking. Reaching the
// attempt limit blocks the pair and records a high severity audit event.
func (s *SecurityState) TrackFailedLogin(ctx context.Context, identifier, ip string) securityDomain.LockoutStatus {
	key := identifier + "|" + ip
	value, _ := s.failedLogins.LoadOrStore(key, &failedLoginEntry{})
	entry := value.(*failedLoginEntry)

	entry.mu.Lock()
	now := time.Now().UTC()
	if entry.count > 0 && now.Sub(entry.lastAttempt) > s.cfg.LockoutWindow {
		entry.count = 0
	}
	entry.count++
	entry.lastAttempt = now
	attempts := entry.count
	entry.mu.Unlock()

	blocked := attempts >= s.cfg.LockoutMaxAttempts
	if blocked {
		s.auditLog.LogSecurityEvent(
			ctx,
			auditDomain.ActionSuspicious,
			auditDomain.SeverityHigh,
			ip,
			map[string]any{
				"identifier": identifier,
				"attempts":   attempts,
				"reason":     "failed login threshold reached",
			},
		)
	}

	return securityDomain.LockoutStatus{Blocked: blocked, Attempts: attempts}
}

// IsLoginBlocked reports whether the identifier/IP pair is currently locked
// out, without counting an attempt.
func (s *SecurityState) IsLoginBlocked(identifier, ip string) bool {
	value, ok := s.failedLogins.Load(identifier + "|" + ip)
	if !ok {
		return false
	}
	entry := value.(*failedLoginEntry)

	entry.mu.Lock()
	defer entry.mu.Unlock()
	if time.Now().UTC().Sub(entry.lastAttempt) > s.cfg.LockoutWindow {
		return false
	}
	return entry.count >= s.cfg.LockoutMaxAttempts
}

// ResetFailedLogins clears the failure counter after a successful login.
func (s *SecurityState) ResetFailedLogins(identifier, ip string) {
	s.failedLogins.Delete(identifier + "|" + ip)
}

// GenerateCSRFToken mints a random token for the session. A session holds at
// most one live token: minting replaces any previous one.
func (s *SecurityState) GenerateCSRFToken(sessionID string) (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	token := hex.EncodeToString(raw)

	s.csrfTokens.Store(sessionID, &csrfEntry{
		token:     token,
		expiresAt: time.Now().UTC().Add(s.cfg.CSRFTokenTTL),
	})
	return token, nil
}

// ValidateCSRFToken checks a token against the session's live token.
// Expired tokens are dropped lazily on validation.
func (s *SecurityState) ValidateCSRFToken(sessionID, token string) bool {
	value, ok := s.csrfTokens.Load(sessionID)
	if !ok {
		return false
	}
	entry := value.(*csrfEntry)

	if time.Now().UTC().After(entry.expiresAt) {
		s.csrfTokens.Delete(sessionID)
		return false
	}

	return subtle.ConstantTimeCompare([]byte(entry.token), []byte(token)) == 1
}

// getLimiter retrieves or creates the token bucket limiter for an IP.
func (ls *limiterStore) getLimiter(ip string) *rate.Limiter {
	if val, ok := ls.limiters.Load(ip); ok {
		entry := val.(*limiterEntry)
		entry.mu.Lock()
		entry.lastAccess = time.Now()
		entry.mu.Unlock()
		return entry.limiter
	}

	// Points per window expressed as a refill rate, with the full budget as burst
	rps := float64(ls.limits.Points) / ls.limits.Window.Seconds()
	entry := &limiterEntry{
		limiter:    rate.NewLimiter(rate.Limit(rps), ls.limits.Points),
		lastAccess: time.Now(),
	}

	actual, _ := ls.limiters.LoadOrStore(ip, entry)
	return actual.(*limiterEntry).limiter
}

// cleanupStale drops limiters idle for over an hour, expired CSRF tokens,
// and failed-login counters outside the lockout window.
func (s *SecurityState) cleanupStale() {
	now := time.Now().UTC()
	limiterThreshold := time.Now().Add(-1 * time.Hour)

	for _, store := range s.limiters {
		store.limiters.Range(func(key, value any) bool {
			entry := value.(*limiterEntry)
			entry.mu.Lock()
			stale := entry.lastAccess.Before(limiterThreshold)
			entry.mu.Unlock()
			if stale {
				store.limiters.Delete(key)
			}
			return true
		})
	}

	s.csrfTokens.Range(func(key, value any) bool {
		if now.After(value.(*csrfEntry).expiresAt) {
			s.csrfTokens.Delete(key)
		}
		return true
	})

	s.failedLogins.Range(func(key, value any) bool {
		entry := value.(*failedLoginEntry)
		entry.mu.Lock()
		stale := now.Sub(entry.lastAttempt) > s.cfg.LockoutWindow
		entry.mu.Unlock()
		if stale {
			s.failedLogins.Delete(key)
		}
		return true
	})
}
