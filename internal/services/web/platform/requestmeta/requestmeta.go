// Package requestmeta provides normalized request metadata helpers.
package requestmeta

import (
	"net/http"
	"strings"
)

// SchemePolicy controls how request metadata resolves the request scheme.
//
// TrustForwardedProto must be explicitly enabled for X-Forwarded-Proto to be
// considered. Keeping this explicit avoids trusting headers from untrusted
// clients.
type SchemePolicy struct {
	TrustForwardedProto bool
}

// IsHTTPS reports whether a request should be treated as HTTPS.
func IsHTTPS(r *http.Request) bool {
	return IsHTTPSWithPolicy(r, SchemePolicy{})
}

// IsHTTPSWithPolicy reports whether a request should be treated as HTTPS
// using the provided scheme policy.
func IsHTTPSWithPolicy(r *http.Request, policy SchemePolicy) bool {
	if r == nil {
		return false
	}
	if r.TLS != nil {
		return true
	}
	if policy.TrustForwardedProto {
		proto := strings.ToLower(strings.TrimSpace(r.Header.Get("X-Forwarded-Proto")))
		return proto == "https"
	}
	return false
}

// QueryValue returns the first value of a query parameter, trimmed, or the
// fallback when the parameter is absent or blank. Repeated parameters keep
// the first occurrence.
func QueryValue(r *http.Request, name, fallback string) string {
	if r == nil {
		return fallback
	}
	values, ok := r.URL.Query()[name]
	if !ok || len(values) == 0 {
		return fallback
	}
	value := strings.TrimSpace(values[0])
	if value == "" {
		return fallback
	}
	return value
}
