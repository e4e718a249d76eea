// Defines rate limit tiers and routing rules.

package ratelimit

import (
	"net/http"
	"time"
)

// Tier defines a rate limit tier sharing one limiter. Keys are client IPs.
type Tier struct {
	Name    string
	Limiter *Limiter
}

// Config holds rate limiters for the two request classes the API serves.
type Config struct {
	// Write covers mutating requests (POST, PUT, PATCH, DELETE).
	Write Tier
	// Read covers everything else.
	Read Tier
}

// DefaultConfig creates a Config with default rate limits:
//   - Write: 120 req/min per IP, burst 20
//   - Read: 6,000 req/min per IP, burst 1,000
func DefaultConfig() *Config {
	return &Config{
		Write: Tier{
			Name:    "write",
			Limiter: NewLimiter(120, time.Minute, 20),
		},
		Read: Tier{
			Name:    "read",
			Limiter: NewLimiter(6000, time.Minute, 1000),
		},
	}
}

// Match returns the tier for a request, or nil for paths that should not
// be rate limited.
func (c *Config) Match(method, path string) *Tier {
	if path == "/api/health" {
		return nil
	}
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return &c.Write
	}
	return &c.Read
}

// Stop terminates the limiters' cleanup goroutines.
func (c *Config) Stop() {
	c.Write.Limiter.Stop()
	c.Read.Limiter.Stop()
}

// BuildKey creates a rate limit bucket key from a client IP and tier name.
func BuildKey(ip, tierName string) string {
	return "ip:" + ip + ":" + tierName
}
