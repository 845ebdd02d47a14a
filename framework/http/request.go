package http

import (
	"net/http"
	"net/url"
	"strings"
)

const maxMemory = 32 << 20 // 32 MB

// Request wraps *http.Request with the accessors the dispatcher needs.
type Request struct {
	raw         *http.Request
	contextPath string
}

// CleanContextPath returns p with one leading slash and no trailing slash.
// "", "/" and other all-slash values mean the root mount and return "".
//
//	CleanContextPath("shop/")  // "/shop"
func CleanContextPath(p string) string {
	p = strings.Trim(p, "/")
	if p == "" {
		return ""
	}
	return "/" + p
}

// NewRequest wraps a standard *http.Request served under contextPath.
func NewRequest(r *http.Request, contextPath string) *Request {
	return &Request{raw: r, contextPath: CleanContextPath(contextPath)}
}

// Raw returns the underlying *http.Request.
func (req *Request) Raw() *http.Request { return req.raw }

// ── Path ─────────────────────────────────────────────────────────────────────

// ContextPath returns the cleaned prefix the application is mounted under.
func (req *Request) ContextPath() string { return req.contextPath }

// URI returns the raw URL path.
func (req *Request) URI() string { return req.raw.URL.Path }

// Path returns the URL path with the context path removed. A path outside
// the context path is returned unchanged.
func (req *Request) Path() string {
	p := req.raw.URL.Path
	cp := req.contextPath
	if cp != "" && (p == cp || strings.HasPrefix(p, cp+"/")) {
		return p[len(cp):]
	}
	return p
}

// Method returns the HTTP method.
func (req *Request) Method() string { return req.raw.Method }

// ── Input ────────────────────────────────────────────────────────────────────

// Params returns every request parameter, query string and form body
// combined, each name mapped to all of its values. Body values come first.
func (req *Request) Params() url.Values {
	if strings.Contains(req.ContentType(), "multipart/form-data") {
		_ = req.raw.ParseMultipartForm(maxMemory)
	} else {
		_ = req.raw.ParseForm()
	}
	if req.raw.Form == nil {
		return url.Values{}
	}
	return req.raw.Form
}

// ContentType returns the Content-Type header value.
func (req *Request) ContentType() string {
	return req.raw.Header.Get("Content-Type")
}
