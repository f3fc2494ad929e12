package security

import (
	"html"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

const (
	// DefaultMaxTextLength bounds free-text fields after cleaning.
	DefaultMaxTextLength = 1000
	// MaxInputLength is the hard ceiling ValidateInputSafety enforces.
	MaxInputLength = 10000
	// MaxJSONDepth bounds payload nesting to defeat JSON-bomb payloads.
	MaxJSONDepth = 10
)

// InputKind selects the character whitelist SanitizeInput applies.
type InputKind string

const (
	KindName       InputKind = "name"
	KindEmail      InputKind = "email"
	KindText       InputKind = "text"
	KindCourseName InputKind = "course-name"
)

// stripTags removes every HTML element, including the contents of
// script and style blocks.
var stripTags = bluemonday.StrictPolicy()

var (
	protocolPattern     = regexp.MustCompile(`(?i)(javascript|vbscript|livescript|data):`)
	eventHandlerPattern = regexp.MustCompile(`(?i)on\w+\s*=`)
	expressionPattern   = regexp.MustCompile(`(?i)expression\s*\(`)
	whitespacePattern   = regexp.MustCompile(`\s+`)

	namePattern   = regexp.MustCompile(`[^a-zA-Z\s\-'.]`)
	emailPattern  = regexp.MustCompile(`[^a-zA-Z0-9@._\-+]`)
	coursePattern = regexp.MustCompile(`[^a-zA-Z0-9\s\-_().,&+]`)
	textPattern   = regexp.MustCompile("[<>\"'&`]")

	controlCharPattern = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F\x7F]`)

	injectionPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?is)<script[\s\S]*?>`),
		regexp.MustCompile(`(?i)javascript:`),
		regexp.MustCompile(`(?i)on\w+\s*=`),
		regexp.MustCompile(`(?is)<iframe[\s\S]*?>`),
		regexp.MustCompile(`(?is)<object[\s\S]*?>`),
		regexp.MustCompile(`(?is)<embed[\s\S]*?>`),
		regexp.MustCompile(`(?is)<link[\s\S]*?>`),
		regexp.MustCompile(`(?is)<meta[\s\S]*?>`),
		regexp.MustCompile(`(?i)eval\s*\(`),
		regexp.MustCompile(`(?i)expression\s*\(`),
		regexp.MustCompile(`(?i)vbscript:`),
		regexp.MustCompile(`(?i)data:text/html`),
	}

	outputEncoder = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"'", "&#x27;",
		"/", "&#x2F;",
	)
)

// SanitizeHTML strips tags, protocol injections, and inline event
// handlers from free text. The cleaning pass repeats until the output is
// stable, so decoding an entity can never smuggle markup past a single
// pass and the function is idempotent.
func SanitizeHTML(input string) string {
	s := input
	for i := 0; i < 10; i++ {
		next := cleanHTMLOnce(s)
		if next == s {
			break
		}
		s = next
	}
	return s
}

func cleanHTMLOnce(s string) string {
	s = stripTags.Sanitize(s)
	s = html.UnescapeString(s)
	s = protocolPattern.ReplaceAllString(s, "")
	s = eventHandlerPattern.ReplaceAllString(s, "")
	s = expressionPattern.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// SanitizeName keeps only letters, spaces, hyphens, apostrophes, and
// dots, the characters that appear in real person names.
func SanitizeName(input string) string {
	s := SanitizeHTML(input)
	s = namePattern.ReplaceAllString(s, "")
	return collapseWhitespace(s)
}

// SanitizeEmail cleans an address before validation: strips markup,
// drops characters outside the email alphabet, lowercases.
func SanitizeEmail(input string) string {
	s := SanitizeHTML(input)
	s = emailPattern.ReplaceAllString(s, "")
	return strings.ToLower(strings.TrimSpace(s))
}

// SanitizeText cleans free text (descriptions and the like) and
// truncates it to maxLen. maxLen <= 0 selects DefaultMaxTextLength.
func SanitizeText(input string, maxLen int) string {
	if maxLen <= 0 {
		maxLen = DefaultMaxTextLength
	}
	s := SanitizeHTML(input)
	s = textPattern.ReplaceAllString(s, "")
	if len(s) > maxLen {
		// Back off to a rune boundary so the cut never splits a
		// multi-byte character.
		cut := maxLen
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		s = s[:cut]
	}
	return collapseWhitespace(s)
}

// SanitizeCourseName allows the punctuation course titles legitimately
// use on top of letters and digits.
func SanitizeCourseName(input string) string {
	s := SanitizeHTML(input)
	s = coursePattern.ReplaceAllString(s, "")
	return collapseWhitespace(s)
}

// SanitizeInput cleans input according to its declared kind.
func SanitizeInput(input string, kind InputKind) string {
	switch kind {
	case KindName:
		return SanitizeName(input)
	case KindEmail:
		return SanitizeEmail(input)
	case KindCourseName:
		return SanitizeCourseName(input)
	default:
		return SanitizeText(input, DefaultMaxTextLength)
	}
}

// DetectScriptInjection pattern-matches known script-injection vectors.
func DetectScriptInjection(input string) bool {
	if input == "" {
		return false
	}
	for _, pattern := range injectionPatterns {
		if pattern.MatchString(input) {
			return true
		}
	}
	return false
}

// ValidateInputSafety rejects input carrying injected markup, excessive
// length, or control characters outside printable/whitespace ranges.
// The reason is safe to log but not meant for clients.
func ValidateInputSafety(input string) (bool, string) {
	if input == "" {
		return true, ""
	}
	if DetectScriptInjection(input) {
		return false, "input contains potentially malicious content"
	}
	if len(input) > MaxInputLength {
		return false, "input exceeds maximum allowed length"
	}
	if controlCharPattern.MatchString(input) {
		return false, "input contains invalid control characters"
	}
	return true, ""
}

// ValidateDecodedStrings walks a decoded JSON value and applies
// ValidateInputSafety to every string it contains. Object keys are
// checked too. A large document of clean values passes; any single
// oversized or tainted string fails it.
func ValidateDecodedStrings(v any) (bool, string) {
	switch val := v.(type) {
	case string:
		return ValidateInputSafety(val)
	case map[string]any:
		for key, child := range val {
			if ok, reason := ValidateInputSafety(key); !ok {
				return false, reason
			}
			if ok, reason := ValidateDecodedStrings(child); !ok {
				return false, reason
			}
		}
	case []any:
		for _, child := range val {
			if ok, reason := ValidateDecodedStrings(child); !ok {
				return false, reason
			}
		}
	}
	return true, ""
}

// ValidJSONDepth walks a decoded JSON value and reports whether its
// nesting stays within maxDepth. maxDepth <= 0 selects MaxJSONDepth.
func ValidJSONDepth(v any, maxDepth int) bool {
	if maxDepth <= 0 {
		maxDepth = MaxJSONDepth
	}
	return jsonDepthOK(v, 0, maxDepth)
}

func jsonDepthOK(v any, depth, maxDepth int) bool {
	if depth > maxDepth {
		return false
	}
	switch val := v.(type) {
	case map[string]any:
		for _, child := range val {
			if !jsonDepthOK(child, depth+1, maxDepth) {
				return false
			}
		}
	case []any:
		for _, child := range val {
			if !jsonDepthOK(child, depth+1, maxDepth) {
				return false
			}
		}
	}
	return true
}

// EncodeOutput escapes a user-supplied string for safe re-embedding in
// markup contexts. Applied to user data echoed back in responses.
func EncodeOutput(input string) string {
	return outputEncoder.Replace(input)
}

func collapseWhitespace(s string) string {
	return strings.TrimSpace(whitespacePattern.ReplaceAllString(s, " "))
}
