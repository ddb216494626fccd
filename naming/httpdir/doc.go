// Package httpdir exposes a naming.Directory over HTTP and provides the
// matching client, itself a naming.Directory.
//
// Protocol:
//
//	GET /v1/context?name=<ctx>               200 {"context":"<ctx>"}
//	GET /v1/lookup?context=<ctx>&name=<name> 200 {"value":<json>}
//	GET /healthz                             200 {"status":"ok"}
//
// Failures are reported as {"error":"...","context":"...","name":"..."} with
// 400 for missing parameters, 404 for unbound contexts or names and 500 for
// everything else. Requests carry an X-Request-Id header.
package httpdir

// RequestIDHeader is the header used to correlate client and server logs.
const RequestIDHeader = "X-Request-Id"

type contextResponse struct {
	Context string `json:"context"`
}

type lookupResponse struct {
	Value any `json:"value"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Context string `json:"context,omitempty"`
	Name    string `json:"name,omitempty"`
}
