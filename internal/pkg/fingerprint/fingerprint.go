// Package fingerprint reduces a User-Agent header to the coarse
// "platform-browser" string sessions are bound to. Versions are dropped so
// browser updates do not end a session.
package fingerprint

import (
	"strings"

	"github.com/mssola/useragent"
)

const unknown = "unknown"

func FromUserAgent(header string) string {
	ua := useragent.New(header)
	name, _ := ua.Browser()
	return platform(ua) + "-" + orUnknown(strings.ToLower(name))
}

func platform(ua *useragent.UserAgent) string {
	os := strings.ToLower(ua.OS())
	switch {
	case strings.Contains(os, "android"):
		return "android"
	case strings.Contains(os, "iphone"):
		return "iphone"
	case strings.Contains(os, "ipad"):
		return "ipad"
	}

	switch p := strings.ToLower(ua.Platform()); p {
	case "macintosh":
		return "macos"
	case "x11":
		return "linux"
	default:
		return orUnknown(p)
	}
}

func orUnknown(s string) string {
	if s == "" {
		return unknown
	}
	return s
}
