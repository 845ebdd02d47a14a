// Package http wraps the standard request and response types with the
// small surface the front controller works against.
//
// # Request
//
//	req := gohttp.NewRequest(r, "/shop")
//	req.Path()          // "/demo/query" for a request to /shop/demo/query
//	req.Params()["name"] // every value of ?name=...
//
// # Response
//
//	res := gohttp.NewResponse(w)
//	res.Text("hello")    // text/plain; charset=utf-8
package http
