package http

import (
	"io"
	"net/http"
)

const textContentType = "text/plain; charset=utf-8"

// Response wraps http.ResponseWriter with the writers the dispatcher uses.
type Response struct {
	w http.ResponseWriter
}

// NewResponse wraps a ResponseWriter.
func NewResponse(w http.ResponseWriter) *Response {
	return &Response{w: w}
}

// Raw returns the underlying ResponseWriter.
func (res *Response) Raw() http.ResponseWriter { return res.w }

// Text writes s as UTF-8 plain text. The status code is left to the
// writer, so an untouched response goes out as 200.
//
//	res.Text("404 Not Found")
func (res *Response) Text(s string) error {
	if res.w.Header().Get("Content-Type") == "" {
		res.w.Header().Set("Content-Type", textContentType)
	}
	_, err := io.WriteString(res.w, s)
	return err
}
