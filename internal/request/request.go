// Package request carries transport-neutral request metadata through the
// admission pipeline. Leaf components (identity, device trust, rate limiting)
// depend on this package instead of any HTTP framework type.
package request

import (
	"net/http"
	"net/textproto"
)

// Request is the subset of an inbound request the admission pipeline inspects.
type Request struct {
	// Method is the HTTP method (GET, POST, ...).
	Method string
	// Path is the request path without query string.
	Path string
	// Query is the raw query string, without the leading "?".
	Query string
	// Body is the raw request body. Used for signature verification only; the
	// pipeline never interprets it.
	Body string
	// IP is the client IP address.
	IP string
	// Headers holds request headers keyed by canonical MIME header name.
	Headers map[string]string
	// ClientAttributes holds optional client-reported fingerprint signals
	// (screen resolution, timezone, platform, canvas/webgl hashes).
	ClientAttributes map[string]string
}

// Header returns the value of the named header, or the empty string.
// The lookup is case-insensitive.
func (r *Request) Header(name string) string {
	if r.Headers == nil {
		return ""
	}
	return r.Headers[textproto.CanonicalMIMEHeaderKey(name)]
}

// HasHeader reports whether the named header is present.
func (r *Request) HasHeader(name string) bool {
	if r.Headers == nil {
		return false
	}
	_, ok := r.Headers[textproto.CanonicalMIMEHeaderKey(name)]
	return ok
}

// UserAgent returns the User-Agent header.
func (r *Request) UserAgent() string {
	return r.Header("User-Agent")
}

// FromHTTP builds a Request from a net/http request. The caller supplies the
// body and the resolved client IP because both depend on transport concerns
// (body buffering, proxy headers) this package stays out of.
func FromHTTP(req *http.Request, body, clientIP string) *Request {
	headers := make(map[string]string, len(req.Header))
	for name, values := range req.Header {
		if len(values) > 0 {
			headers[textproto.CanonicalMIMEHeaderKey(name)] = values[0]
		}
	}

	return &Request{
		Method:  req.Method,
		Path:    req.URL.Path,
		Query:   req.URL.RawQuery,
		Body:    body,
		IP:      clientIP,
		Headers: headers,
	}
}
