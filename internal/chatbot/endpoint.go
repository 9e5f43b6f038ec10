package chatbot

import (
	"net/url"
	"strings"
)

const assistantPort = "8000"

// ResolveAPIBase picks the assistant API origin. An explicit base wins.
// Sandbox-style hosts ("3000-abc.example") swap the leading port label;
// anything else keeps the scheme and host on port 8000.
func ResolveAPIBase(explicit string, page *url.URL) string {
	if explicit != "" {
		return strings.TrimRight(explicit, "/")
	}
	if page == nil || page.Host == "" {
		return "http://localhost:" + assistantPort
	}

	host := page.Hostname()
	if strings.Contains(host, "sandbox.novita.ai") || strings.Contains(host, "-") {
		if rest, ok := strings.CutPrefix(host, "3000-"); ok {
			host = assistantPort + "-" + rest
		}
		return page.Scheme + "://" + host
	}
	return page.Scheme + "://" + host + ":" + assistantPort
}
