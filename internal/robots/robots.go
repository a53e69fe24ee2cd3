// Package robots enforces robots.txt policy for outgoing page
// fetches. Parsed rule sets are cached per robots URL so repeated
// checks against the same host cost nothing.
package robots

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/caentzminger/grokipedia-go/internal/fetcher"
	"github.com/caentzminger/grokipedia-go/internal/types"
)

// Checker fetches, parses, and caches robots.txt rules.
type Checker struct {
	fetcher fetcher.Fetcher
	logger  *slog.Logger

	mu    sync.RWMutex
	cache map[string]*ruleSet
}

// ruleSet holds the Allow/Disallow rules that apply to one user
// agent at one robots URL.
type ruleSet struct {
	allowed    []string
	disallowed []string
}

// NewChecker creates a robots.txt checker backed by the given
// fetcher.
func NewChecker(f fetcher.Fetcher, logger *slog.Logger) *Checker {
	return &Checker{
		fetcher: f,
		logger:  logger.With("component", "robots"),
		cache:   map[string]*ruleSet{},
	}
}

// RobotsURLFor derives the robots.txt URL for a target URL.
func RobotsURLFor(targetURL string) (string, error) {
	parsed, err := url.Parse(targetURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return "", &types.RobotsUnavailableError{
			Err: fmt.Errorf("could not derive robots.txt URL from target URL: %s", targetURL),
		}
	}
	return parsed.Scheme + "://" + parsed.Host + "/robots.txt", nil
}

// Check returns nil when the target URL is allowed for the user
// agent. It returns RobotsDisallowedError when blocked and
// RobotsUnavailableError when robots.txt cannot be fetched or parsed.
func (c *Checker) Check(ctx context.Context, targetURL, userAgent string, timeout time.Duration) error {
	robotsURL, err := RobotsURLFor(targetURL)
	if err != nil {
		return err
	}

	cacheKey := robotsURL + "\x00" + userAgentToken(userAgent)

	c.mu.RLock()
	rules, ok := c.cache[cacheKey]
	c.mu.RUnlock()

	if !ok {
		c.logger.Debug("robots cache miss", "robots_url", robotsURL)
		rules, err = c.load(ctx, robotsURL, userAgent, timeout)
		if err != nil {
			return err
		}
		c.mu.Lock()
		c.cache[cacheKey] = rules
		c.mu.Unlock()
	} else {
		c.logger.Debug("robots cache hit", "robots_url", robotsURL)
	}

	parsed, err := url.Parse(targetURL)
	if err != nil {
		return &types.RobotsUnavailableError{RobotsURL: robotsURL, Err: err}
	}
	path := parsed.EscapedPath()
	if path == "" {
		path = "/"
	}

	if !rules.allows(path) {
		c.logger.Info("robots disallowed", "target_url", targetURL, "user_agent", userAgent)
		return &types.RobotsDisallowedError{URL: targetURL}
	}

	c.logger.Debug("robots allowed", "target_url", targetURL)
	return nil
}

func (c *Checker) load(ctx context.Context, robotsURL, userAgent string, timeout time.Duration) (*ruleSet, error) {
	response, err := c.fetcher.FetchText(ctx, robotsURL, fetcher.RequestOptions{
		Timeout: timeout,
		Headers: map[string]string{"User-Agent": userAgent},
	})
	if err != nil {
		c.logger.Warn("failed fetching robots", "robots_url", robotsURL, "error", err)
		return nil, &types.RobotsUnavailableError{RobotsURL: robotsURL, Err: err}
	}
	if response.StatusCode >= 400 {
		c.logger.Warn("robots unavailable", "robots_url", robotsURL, "status_code", response.StatusCode)
		return nil, &types.RobotsUnavailableError{
			RobotsURL: robotsURL,
			Err:       fmt.Errorf("HTTP %d", response.StatusCode),
		}
	}
	return parseRules(response.Text, userAgent), nil
}

// parseRules extracts the Allow/Disallow rules applying to the user
// agent: the group whose user-agent token matches, with the wildcard
// group as fallback.
func parseRules(content, userAgent string) *ruleSet {
	token := userAgentToken(userAgent)

	specific := &ruleSet{}
	wildcard := &ruleSet{}
	var current *ruleSet
	sawSpecific := false

	for _, line := range strings.Split(content, "\n") {
		if idx := strings.Index(line, "#"); idx >= 0 {
			line = line[:idx]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)

		switch key {
		case "user-agent":
			agent := strings.ToLower(value)
			switch {
			case token != "" && strings.Contains(agent, token):
				current = specific
				sawSpecific = true
			case agent == "*":
				current = wildcard
			default:
				current = nil
			}
		case "disallow":
			if current != nil && value != "" {
				current.disallowed = append(current.disallowed, value)
			}
		case "allow":
			if current != nil && value != "" {
				current.allowed = append(current.allowed, value)
			}
		}
	}

	if sawSpecific {
		return specific
	}
	return wildcard
}

// allows checks a path against the rule set. Allow rules override
// Disallow rules.
func (r *ruleSet) allows(path string) bool {
	for _, pattern := range r.allowed {
		if matchPattern(pattern, path) {
			return true
		}
	}
	for _, pattern := range r.disallowed {
		if matchPattern(pattern, path) {
			return false
		}
	}
	return true
}

// matchPattern checks if a URL path matches a robots.txt pattern.
// Supports * (any sequence) and $ (end of URL) wildcards.
func matchPattern(pattern, path string) bool {
	if pattern == "" {
		return false
	}

	endsWithDollar := strings.HasSuffix(pattern, "$")
	if endsWithDollar {
		pattern = pattern[:len(pattern)-1]
	}

	if strings.Contains(pattern, "*") {
		return matchWildcard(pattern, path, endsWithDollar)
	}

	if endsWithDollar {
		return path == pattern
	}
	return strings.HasPrefix(path, pattern)
}

// matchWildcard handles * wildcard matching in robots.txt patterns.
func matchWildcard(pattern, path string, mustEnd bool) bool {
	parts := strings.Split(pattern, "*")
	pos := 0

	for i, part := range parts {
		if part == "" {
			continue
		}
		idx := strings.Index(path[pos:], part)
		if idx < 0 {
			return false
		}
		if i == 0 && idx != 0 {
			// First part must match from the start
			return false
		}
		pos += idx + len(part)
	}

	if mustEnd {
		return pos == len(path)
	}
	return true
}

// userAgentToken reduces a full User-Agent string to the lowercase
// product token robots.txt groups are matched against.
func userAgentToken(userAgent string) string {
	product, _, _ := strings.Cut(userAgent, "/")
	return strings.ToLower(strings.TrimSpace(product))
}
