package useragent

import (
	"net/http"
	"strings"
)

type marker struct {
	token string
	name  string
}

// Order matters: Edge and Chrome both claim Safari.
var browsers = []marker{
	{"Edg/", "Edge"},
	{"Firefox/", "Firefox"},
	{"Chrome/", "Chrome"},
	{"Safari/", "Safari"},
}

var systems = []marker{
	{"Android", "Android"},
	{"iPhone", "iOS"},
	{"iPad", "iOS"},
	{"Windows", "Windows"},
	{"Mac OS X", "macOS"},
	{"Linux", "Linux"},
}

// Device summarises a User-Agent header as "Browser Major on OS". Non-browser
// clients such as bots and CLI tools come back as "Unknown".
func Device(ua string) string {
	if ua == "" {
		return "Unknown"
	}

	browser, version := "", ""
	for _, b := range browsers {
		if idx := strings.Index(ua, b.token); idx != -1 {
			browser = b.name
			version = majorVersion(ua[idx+len(b.token):])
			break
		}
	}

	system := ""
	for _, s := range systems {
		if strings.Contains(ua, s.token) {
			system = s.name
			break
		}
	}

	if browser == "" {
		return "Unknown"
	}
	if version != "" {
		browser += " " + version
	}
	if system == "" {
		return browser
	}
	return browser + " on " + system
}

func majorVersion(s string) string {
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	return s[:end]
}

// ClientIP prefers proxy headers over RemoteAddr.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	ip := r.RemoteAddr
	if idx := strings.LastIndex(ip, ":"); idx != -1 {
		ip = ip[:idx]
	}
	return ip
}
