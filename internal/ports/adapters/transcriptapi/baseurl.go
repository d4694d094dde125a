package transcriptapi

import (
	"fmt"
	"net"
	"net/url"
	"strings"
)

func normalizeBaseURL(baseURL string) string {
	return strings.TrimRight(strings.TrimSpace(baseURL), "/")
}

// ValidateBaseURL accepts absolute https URLs without userinfo, query or
// fragment. Plain http is allowed for loopback hosts only. A non-empty
// allowedHosts restricts the host further.
func ValidateBaseURL(baseURL string, allowedHosts []string) error {
	baseURL = normalizeBaseURL(baseURL)
	if baseURL == "" {
		return fmt.Errorf("TRANSCRIPT_API_URL is empty")
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		return fmt.Errorf("invalid TRANSCRIPT_API_URL: %w", err)
	}
	if !u.IsAbs() || u.Host == "" {
		return fmt.Errorf("invalid TRANSCRIPT_API_URL %q: absolute URL with host is required", baseURL)
	}
	if u.User != nil {
		return fmt.Errorf("invalid TRANSCRIPT_API_URL %q: userinfo is not allowed", u.Redacted())
	}
	if u.RawQuery != "" || u.Fragment != "" {
		return fmt.Errorf("invalid TRANSCRIPT_API_URL %q: query and fragment are not allowed", baseURL)
	}

	host := strings.ToLower(u.Hostname())
	switch strings.ToLower(u.Scheme) {
	case "https":
	case "http":
		if !isLoopback(host) {
			return fmt.Errorf("invalid TRANSCRIPT_API_URL %q: https is required", baseURL)
		}
	default:
		return fmt.Errorf("invalid TRANSCRIPT_API_URL %q: https is required", baseURL)
	}

	allowed := normalizeAllowedHosts(allowedHosts)
	if len(allowed) == 0 {
		return nil
	}
	if _, ok := allowed[host]; !ok {
		return fmt.Errorf("invalid TRANSCRIPT_API_URL %q: host %q is not in transcript_api.allowed_hosts", baseURL, host)
	}
	return nil
}

func isLoopback(host string) bool {
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

func normalizeAllowedHosts(allowedHosts []string) map[string]struct{} {
	out := make(map[string]struct{}, len(allowedHosts))
	for _, h := range allowedHosts {
		v := strings.ToLower(strings.TrimSpace(h))
		v = strings.TrimPrefix(v, "http://")
		v = strings.TrimPrefix(v, "https://")
		v = strings.Trim(v, "/")
		if v == "" {
			continue
		}
		if i := strings.Index(v, ":"); i >= 0 {
			v = v[:i]
		}
		out[v] = struct{}{}
	}
	return out
}
