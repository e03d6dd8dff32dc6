// scrubber.go implements rule-driven redaction of secrets and PII.

package beacon

import (
	"regexp"
	"strings"
)

const (
	// RedactedMarker replaces any value caught by a detector or key rule.
	RedactedMarker = "[REDACTED]"

	// DepthMarker replaces values nested beyond the recursion limit.
	DepthMarker = "[TRUNCATED:DEPTH]"
)

// Rule is one ordered redaction detector. Rules are applied to every string
// in the order they appear in the configuration, so new leak patterns can be
// added without touching the recursion logic.
type Rule struct {
	// Name identifies the rule in configuration and tests.
	Name string

	// Matcher selects the text to redact.
	Matcher *regexp.Regexp

	// Replacement is the expansion template used when ReplaceFunc is nil.
	// It may reference capture groups ($1, ${1}).
	Replacement string

	// ReplaceFunc, when set, receives each whole match and returns its
	// replacement. Used for masking rules that keep a hint of the value.
	ReplaceFunc func(match string) string
}

func (r Rule) apply(s string) string {
	if r.ReplaceFunc != nil {
		return r.Matcher.ReplaceAllStringFunc(s, r.ReplaceFunc)
	}
	return r.Matcher.ReplaceAllString(s, r.Replacement)
}

// ScrubberConfig controls scrubbing behavior.
type ScrubberConfig struct {
	// Rules is the ordered detector list applied to every string value.
	Rules []Rule

	// SensitiveKeys matches object key names whose values are redacted
	// unconditionally, regardless of content or type.
	SensitiveKeys *regexp.Regexp

	// MaxDepth is the nesting depth beyond which values are truncated
	// instead of recursed into (default: 5).
	MaxDepth int

	// MaxArrayLen caps processed array elements; trailing elements are
	// dropped, not redacted (default: 80).
	MaxArrayLen int
}

var defaultSensitiveKeys = regexp.MustCompile(`(?i)(?:^key$|password|secret|token|cookie|authorization|api[_-]?key)`)

var (
	bearerPattern    = regexp.MustCompile(`(?i)bearer\s+[A-Za-z0-9\-._~+/]+=*`)
	jsonTokenPattern = regexp.MustCompile(`(?i)"(access_token|refresh_token|id_token)"\s*:\s*"[^"]*"`)
	authHeaderPattern = regexp.MustCompile(`(?i)authorization\s*[:=]\s*[^\n,;]+`)
	cookiePattern    = regexp.MustCompile(`(?i)cookie\s*[:=]\s*[^\n;]+`)
	queryParamPattern = regexp.MustCompile(`(?i)([?&](?:token|code|key|apikey|password|pass|secret|auth)=)[^&#\s]+`)
	emailPattern     = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
	phonePattern     = regexp.MustCompile(`\d{7,}`)
)

// DefaultRules returns the production detector set, ordered so that token
// and header rules run before the masking rules.
func DefaultRules() []Rule {
	return []Rule{
		{Name: "bearer_token", Matcher: bearerPattern, Replacement: RedactedMarker},
		{Name: "json_token_field", Matcher: jsonTokenPattern, Replacement: `"$1":"` + RedactedMarker + `"`},
		{Name: "authorization_header", Matcher: authHeaderPattern, Replacement: "authorization: " + RedactedMarker},
		{Name: "cookie_value", Matcher: cookiePattern, Replacement: "cookie: " + RedactedMarker},
		{Name: "url_query_secret", Matcher: queryParamPattern, Replacement: "${1}" + RedactedMarker},
		{Name: "email", Matcher: emailPattern, ReplaceFunc: maskEmail},
		{Name: "phone_digits", Matcher: phonePattern, ReplaceFunc: maskDigits},
	}
}

// DefaultScrubberConfig returns production-safe defaults.
func DefaultScrubberConfig() ScrubberConfig {
	return ScrubberConfig{
		Rules:         DefaultRules(),
		SensitiveKeys: defaultSensitiveKeys,
		MaxDepth:      5,
		MaxArrayLen:   80,
	}
}

// Scrubber redacts sensitive data from strings and nested structures.
// Scrubbing is idempotent: scrubbing already-scrubbed output is a no-op.
type Scrubber struct {
	cfg ScrubberConfig
}

// NewScrubber creates a scrubber with the given configuration. Zero values
// for limits fall back to the defaults.
func NewScrubber(cfg ScrubberConfig) *Scrubber {
	if cfg.Rules == nil {
		cfg.Rules = DefaultRules()
	}
	if cfg.SensitiveKeys == nil {
		cfg.SensitiveKeys = defaultSensitiveKeys
	}
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = 5
	}
	if cfg.MaxArrayLen <= 0 {
		cfg.MaxArrayLen = 80
	}
	return &Scrubber{cfg: cfg}
}

// String applies every detector rule, in order, to one string.
func (s *Scrubber) String(v string) string {
	for _, rule := range s.cfg.Rules {
		v = rule.apply(v)
	}
	return v
}

// Value scrubs an arbitrary value: strings through the rule list, maps with
// key-based redaction taking precedence over content rules, arrays capped at
// MaxArrayLen elements. Nesting beyond MaxDepth returns DepthMarker.
func (s *Scrubber) Value(v any) any {
	return s.scrub(v, 0)
}

// Map scrubs a string-keyed map, preserving nil.
func (s *Scrubber) Map(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	return s.scrubMap(m, 0)
}

func (s *Scrubber) scrub(v any, depth int) any {
	if depth > s.cfg.MaxDepth {
		return DepthMarker
	}
	switch val := v.(type) {
	case string:
		return s.String(val)
	case map[string]any:
		return s.scrubMap(val, depth)
	case map[string]string:
		out := make(map[string]any, len(val))
		for k, sv := range val {
			if s.isSensitiveKey(k) {
				out[k] = RedactedMarker
			} else {
				out[k] = s.String(sv)
			}
		}
		return out
	case []any:
		n := len(val)
		if n > s.cfg.MaxArrayLen {
			n = s.cfg.MaxArrayLen
		}
		out := make([]any, n)
		for i := 0; i < n; i++ {
			out[i] = s.scrub(val[i], depth+1)
		}
		return out
	case []string:
		n := len(val)
		if n > s.cfg.MaxArrayLen {
			n = s.cfg.MaxArrayLen
		}
		out := make([]any, n)
		for i := 0; i < n; i++ {
			out[i] = s.String(val[i])
		}
		return out
	default:
		// Numbers, booleans, nil pass through.
		return v
	}
}

func (s *Scrubber) scrubMap(m map[string]any, depth int) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		// Key-based redaction is unconditional and takes precedence
		// over content-based rules.
		if s.isSensitiveKey(k) {
			out[k] = RedactedMarker
			continue
		}
		out[k] = s.scrub(v, depth+1)
	}
	return out
}

func (s *Scrubber) isSensitiveKey(key string) bool {
	return s.cfg.SensitiveKeys.MatchString(key)
}

// maskEmail keeps the first character of the local part and of the domain:
// "alice@example.com" becomes "a***@e***".
func maskEmail(match string) string {
	at := strings.IndexByte(match, '@')
	if at <= 0 || at+1 >= len(match) {
		return RedactedMarker
	}
	return match[:1] + "***@" + match[at+1:at+2] + "***"
}

// maskDigits keeps the last four digits of a phone-like run: "5551234567"
// becomes "***4567".
func maskDigits(match string) string {
	return "***" + match[len(match)-4:]
}
