// Package odata builds queries against OData v2 entity sets and iterates
// their paginated results. Queries are assembled with a fluent builder,
// compiled to the protocol's query-string syntax, and executed through a
// Service; results come back as a lazy page-following iterator.
package odata

import "context"

// Service executes compiled queries against a remote OData endpoint.
// Implementations own transport policy (auth, timeouts, retries); the
// query layer never retries on its own.
type Service interface {
	// Execute runs a request and returns the raw page. When rawURL is
	// true, query is a complete URL to fetch as-is rather than a query
	// string relative to the service root.
	Execute(ctx context.Context, query string, rawURL bool) (*Response, error)

	// ServiceURL returns the service root, used to normalize
	// continuation links back to relative form.
	ServiceURL() string
}

// Response is one raw page body as returned by the transport. The
// transport has already turned non-success statuses into errors.
type Response struct {
	Body []byte
}

// String returns the body as text; $count responses are plain integers.
func (r *Response) String() string {
	return string(r.Body)
}
