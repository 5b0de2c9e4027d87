package ratelimit

import (
	"net/http"
	"net/url"
	"regexp"
	"strings"
)

// Automation user agents that are refused. Matching is on the lowercased
// user agent.
var botAgents = []string{
	"curl", "wget", "python-requests", "python-urllib", "go-http-client",
	"java/", "okhttp", "libwww-perl", "httpclient", "scrapy", "headless",
	"phantomjs", "selenium", "bot", "spider", "crawler",
}

// Search engines and link previews are allowed even though they match the
// generic "bot" token.
var allowedAgents = []string{
	"googlebot", "bingbot", "duckduckbot", "yandexbot", "applebot",
	"slackbot", "twitterbot", "facebookexternalhit", "linkedinbot", "discordbot",
}

var attackSignatures = []*regexp.Regexp{
	regexp.MustCompile(`\.\./|\.\.\\`),
	regexp.MustCompile(`(?i)<\s*script`),
	regexp.MustCompile(`(?i)javascript:`),
	regexp.MustCompile(`(?i)\bunion\b[\s+]+(all[\s+]+)?\bselect\b`),
	regexp.MustCompile(`(?i)'\s*or\s+'?\w+'?\s*=\s*'?\w+`),
	regexp.MustCompile(`(?i);\s*(drop|truncate|delete)\s+`),
	regexp.MustCompile(`(?i)/etc/passwd`),
}

// Shield flags automated clients and requests carrying common attack
// signatures in the path or query string.
type Shield struct{}

func NewShield() *Shield {
	return &Shield{}
}

// Inspect returns ReasonBot, ReasonShield or ReasonNone for r.
func (s *Shield) Inspect(r *http.Request) Reason {
	if isBot(r.UserAgent()) {
		return ReasonBot
	}
	if hasAttackSignature(r) {
		return ReasonShield
	}
	return ReasonNone
}

func isBot(userAgent string) bool {
	ua := strings.ToLower(strings.TrimSpace(userAgent))
	if ua == "" {
		return true
	}
	for _, allowed := range allowedAgents {
		if strings.Contains(ua, allowed) {
			return false
		}
	}
	for _, bot := range botAgents {
		if strings.Contains(ua, bot) {
			return true
		}
	}
	return false
}

func hasAttackSignature(r *http.Request) bool {
	target := r.URL.Path
	if r.URL.RawQuery != "" {
		query, err := url.QueryUnescape(r.URL.RawQuery)
		if err != nil {
			query = r.URL.RawQuery
		}
		target += "?" + query
	}
	for _, sig := range attackSignatures {
		if sig.MatchString(target) {
			return true
		}
	}
	return false
}
