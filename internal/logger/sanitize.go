package logger

import (
	"net/url"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// MaxPathLength bounds URL paths in logs
	MaxPathLength = 500
	// MaxChatTextLength bounds chat utterances and command params
	MaxChatTextLength = 200
	// MaxErrorMessageLength bounds error messages
	MaxErrorMessageLength = 1000
	// MaxGeneralStringLength is used when no explicit bound is given
	MaxGeneralStringLength = 2000
)

// SanitizeString drops control characters and invalid UTF-8 and truncates
// to maxLength runes, appending "..." when cut.
func SanitizeString(s string, maxLength int) string {
	if s == "" {
		return ""
	}
	if maxLength <= 0 {
		maxLength = MaxGeneralStringLength
	}

	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, "")
	}

	var b strings.Builder
	b.Grow(len(s))
	n := 0
	for _, r := range s {
		if !unicode.IsPrint(r) && r != ' ' && r != '\t' {
			continue
		}
		if n == maxLength {
			b.WriteString("...")
			break
		}
		b.WriteRune(r)
		n++
	}
	return b.String()
}

// SanitizePath sanitizes a request path
func SanitizePath(path string) string {
	return SanitizeString(path, MaxPathLength)
}

// SanitizeURL strips the query and fragment from a page URL before logging
func SanitizeURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return SanitizeString(raw, MaxPathLength)
	}
	u.RawQuery = ""
	u.Fragment = ""
	u.User = nil
	return SanitizeString(u.String(), MaxPathLength)
}

// SanitizeChatText sanitizes user chat input
func SanitizeChatText(s string) string {
	return SanitizeString(s, MaxChatTextLength)
}

// SanitizeError sanitizes an error message
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}
	return SanitizeString(err.Error(), MaxErrorMessageLength)
}
