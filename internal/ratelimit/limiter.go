// Package ratelimit throttles failed league join-password attempts.
package ratelimit

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

const failureWindow = time.Hour

// Clock interface for testing time-dependent behavior.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

type Config struct {
	MaxFailures   int           // Wrong passwords per (league, user) before lockout
	MaxIPFailures int           // Wrong passwords per IP per hour
	Lockout       time.Duration // How long a (league, user) stays locked
	TrustProxy    bool          // Read client IP from X-Forwarded-For / X-Real-IP

	// Clock for testing (nil uses real time)
	Clock Clock
}

func DefaultConfig() *Config {
	return &Config{
		MaxFailures:   5,
		MaxIPFailures: 20,
		Lockout:       15 * time.Minute,
	}
}

// JoinKey identifies one user's attempts against one league.
type JoinKey struct {
	LeagueID int64
	UserID   int64
}

func (k JoinKey) String() string {
	return fmt.Sprintf("%d:%d", k.LeagueID, k.UserID)
}

type LimitResult struct {
	Allowed    bool
	RetryAfter time.Duration
	Reason     string // For logging
}

type entry struct {
	count    int
	firstAt  time.Time // First failure in window
	lastAt   time.Time
	lockedAt time.Time // Zero if not locked
}

type Limiter struct {
	config *Config
	clock  Clock
	mu     sync.RWMutex
	byJoin map[JoinKey]*entry
	byIP   map[string]*entry

	cleanupCtx    context.Context
	cleanupCancel context.CancelFunc
	cleanupOnce   sync.Once
	cleanupWg     sync.WaitGroup
}

func New(cfg *Config) *Limiter {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	clock := cfg.Clock
	if clock == nil {
		clock = realClock{}
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Limiter{
		config:        cfg,
		clock:         clock,
		byJoin:        make(map[JoinKey]*entry),
		byIP:          make(map[string]*entry),
		cleanupCtx:    ctx,
		cleanupCancel: cancel,
	}
}

// Close stops the cleanup goroutine.
func (l *Limiter) Close() {
	l.cleanupCancel()
	l.cleanupWg.Wait()
}

// CheckJoin reports whether a join attempt may proceed. It does not record
// anything; call RecordFailure after a wrong password.
func (l *Limiter) CheckJoin(key JoinKey, ip string) LimitResult {
	l.startCleanup()
	now := l.clock.Now()

	l.mu.RLock()
	defer l.mu.RUnlock()

	if e := l.byJoin[key]; e != nil {
		if !e.lockedAt.IsZero() {
			elapsed := now.Sub(e.lockedAt)
			if elapsed < l.config.Lockout {
				return LimitResult{
					Allowed:    false,
					RetryAfter: l.config.Lockout - elapsed,
					Reason:     "lockout",
				}
			}
		}
	}

	if l.config.MaxIPFailures > 0 {
		if e := l.byIP[ip]; e != nil {
			if now.Sub(e.firstAt) < failureWindow && e.count >= l.config.MaxIPFailures {
				return LimitResult{
					Allowed:    false,
					RetryAfter: failureWindow - now.Sub(e.firstAt),
					Reason:     "ip_hourly_limit",
				}
			}
		}
	}

	return LimitResult{Allowed: true}
}

// RecordFailure counts a wrong password. Returns true when this failure
// started a lockout.
func (l *Limiter) RecordFailure(key JoinKey, ip string) (lockedOut bool) {
	now := l.clock.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	e := l.byJoin[key]
	switch {
	case e == nil,
		!e.lockedAt.IsZero() && now.Sub(e.lockedAt) >= l.config.Lockout,
		e.lockedAt.IsZero() && now.Sub(e.firstAt) >= failureWindow:
		e = &entry{count: 1, firstAt: now, lastAt: now}
		l.byJoin[key] = e
	default:
		e.count++
		e.lastAt = now
	}
	if l.config.MaxFailures > 0 && e.count >= l.config.MaxFailures && e.lockedAt.IsZero() {
		e.lockedAt = now
		lockedOut = true
	}

	ipEntry := l.byIP[ip]
	if ipEntry == nil || now.Sub(ipEntry.firstAt) >= failureWindow {
		l.byIP[ip] = &entry{count: 1, firstAt: now, lastAt: now}
	} else {
		ipEntry.count++
		ipEntry.lastAt = now
	}

	return lockedOut
}

// Reset clears the (league, user) counter after a successful join.
func (l *Limiter) Reset(key JoinKey) {
	l.mu.Lock()
	delete(l.byJoin, key)
	l.mu.Unlock()
}

// ClientIP resolves the caller's IP using the configured proxy trust.
func (l *Limiter) ClientIP(r *http.Request) string {
	return GetClientIP(r, l.config.TrustProxy)
}

func (l *Limiter) startCleanup() {
	l.cleanupOnce.Do(func() {
		l.cleanupWg.Add(1)
		go func() {
			defer l.cleanupWg.Done()
			ticker := time.NewTicker(5 * time.Minute)
			defer ticker.Stop()
			for {
				select {
				case <-l.cleanupCtx.Done():
					return
				case <-ticker.C:
					l.cleanup()
				}
			}
		}()
	})
}

func (l *Limiter) cleanup() {
	now := l.clock.Now()
	l.mu.Lock()
	defer l.mu.Unlock()

	maxAge := l.config.Lockout + failureWindow
	for k, e := range l.byJoin {
		if now.Sub(e.lastAt) > maxAge {
			delete(l.byJoin, k)
		}
	}
	for k, e := range l.byIP {
		if now.Sub(e.lastAt) > failureWindow {
			delete(l.byIP, k)
		}
	}
}

// GetClientIP extracts the client IP from a request. With trustProxy the
// rightmost public X-Forwarded-For hop wins; otherwise forwarding headers
// are ignored.
func GetClientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			parts := strings.Split(xff, ",")
			for i := len(parts) - 1; i >= 0; i-- {
				ip := strings.TrimSpace(parts[i])
				if ip != "" && !isPrivateIP(ip) {
					return ip
				}
			}
			return strings.TrimSpace(parts[len(parts)-1])
		}

		if xri := r.Header.Get("X-Real-IP"); xri != "" {
			return strings.TrimSpace(xri)
		}
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		if parsed := net.ParseIP(r.RemoteAddr); parsed != nil {
			return r.RemoteAddr
		}
		if idx := strings.LastIndex(r.RemoteAddr, ":"); idx != -1 {
			candidate := r.RemoteAddr[:idx]
			if net.ParseIP(candidate) != nil {
				return candidate
			}
		}
		return r.RemoteAddr
	}
	return ip
}

var privateNetworks []*net.IPNet

func init() {
	privateRanges := []string{
		"10.0.0.0/8",
		"172.16.0.0/12",
		"192.168.0.0/16",
		"127.0.0.0/8",
		"::1/128",
		"fc00::/7",
		"fe80::/10",
	}
	for _, cidr := range privateRanges {
		_, network, err := net.ParseCIDR(cidr)
		if err != nil {
			panic("invalid private CIDR: " + cidr)
		}
		privateNetworks = append(privateNetworks, network)
	}
}

// isPrivateIP also matches IPv4-mapped IPv6 addresses.
func isPrivateIP(ipStr string) bool {
	ip := net.ParseIP(ipStr)
	if ip == nil {
		return false
	}
	if ipv4 := ip.To4(); ipv4 != nil {
		ip = ipv4
	}

	for _, network := range privateNetworks {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}

func LogRateLimitExceeded(key JoinKey, ip, reason string) {
	log.Warn().
		Str("event", "rate_limit_exceeded").
		Int64("league_id", key.LeagueID).
		Int64("user_id", key.UserID).
		Str("ip", ip).
		Str("reason", reason).
		Msg("Join password rate limit exceeded")
}
