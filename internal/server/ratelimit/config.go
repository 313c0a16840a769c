package ratelimit

import (
	"strings"
	"time"
)

// Defaults applied by NewConfig for zero arguments.
const (
	DefaultLimit  = 600
	DefaultWindow = time.Minute
)

// EndpointConfig overrides the default limit for one route. A Path ending in
// "/" matches as a prefix. Burst defaults to Limit.
type EndpointConfig struct {
	Path   string
	Method string
	Limit  int
	Window time.Duration
	Burst  int
}

// Config controls a Limiter.
type Config struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	CleanupInterval time.Duration
	// IdleTTL is how long an unused bucket is kept.
	IdleTTL         time.Duration
	Whitelist       map[string]bool
	Blacklist       map[string]bool
	EndpointConfigs []EndpointConfig
}

// NewConfig returns an enabled config with the hiring API's endpoint limits.
// limit requests per window apply to every other route.
func NewConfig(limit int, window time.Duration) *Config {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if window <= 0 {
		window = DefaultWindow
	}
	return &Config{
		Enabled:         true,
		DefaultLimit:    limit,
		DefaultWindow:   window,
		CleanupInterval: 5 * time.Minute,
		IdleTTL:         time.Hour,
		Whitelist:       map[string]bool{},
		Blacklist:       map[string]bool{},
		EndpointConfigs: DefaultEndpointConfigs(),
	}
}

// Disabled returns a config that lets every request through.
func Disabled() *Config {
	return &Config{}
}

// Trust exempts client addresses from limiting.
func (c *Config) Trust(ips ...string) *Config {
	c.Whitelist = addIPs(c.Whitelist, ips)
	return c
}

// Block rejects every request from the given client addresses.
func (c *Config) Block(ips ...string) *Config {
	c.Blacklist = addIPs(c.Blacklist, ips)
	return c
}

func addIPs(set map[string]bool, ips []string) map[string]bool {
	if set == nil {
		set = make(map[string]bool, len(ips))
	}
	for _, ip := range ips {
		if ip = strings.TrimSpace(ip); ip != "" {
			set[ip] = true
		}
	}
	return set
}

// DefaultEndpointConfigs returns the per-route limits of the hiring API.
func DefaultEndpointConfigs() []EndpointConfig {
	const post, put = "POST", "PUT"
	return []EndpointConfig{
		// credential guessing
		{Path: "/api/auth/login", Method: post, Limit: 10, Window: time.Minute, Burst: 5},
		{Path: "/api/auth/register", Method: post, Limit: 5, Window: time.Minute, Burst: 3},
		{Path: "/api/me/password", Method: put, Limit: 5, Window: time.Minute, Burst: 3},

		// model calls and disk writes
		{Path: "/api/applications/match", Method: post, Limit: 30, Window: time.Hour, Burst: 5},
		{Path: "/api/upload/cv", Method: post, Limit: 10, Window: time.Hour, Burst: 3},

		{Path: "/api/applications", Method: post, Limit: 30, Window: time.Minute, Burst: 10},
		{Path: "/api/jobs", Method: post, Limit: 60, Window: time.Minute, Burst: 10},
	}
}
