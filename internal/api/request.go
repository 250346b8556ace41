package api

import "net/url"

// Request describes a single REST call against the control plane.
// A Request is constructed fresh for every attempt and never carries
// retry state; retry counters live in the retry policy's loop.
type Request struct {
	Method string
	Path   string // relative, e.g. /api/2.0/clusters/create
	Query  url.Values
	Body   map[string]any
}

// Get builds a GET request for the given path and query parameters.
func Get(path string, query url.Values) Request {
	return Request{Method: "GET", Path: path, Query: query}
}

// Post builds a POST request with a JSON body.
func Post(path string, body map[string]any) Request {
	return Request{Method: "POST", Path: path, Body: body}
}

// Response is the normalized result of a successful REST call.
type Response struct {
	StatusCode int
	Body       map[string]any // parsed JSON object, nil when parsing failed
	Raw        []byte         // raw body, kept as fallback
}

// Field walks a nested path of object keys and returns the value found.
func (r *Response) Field(path ...string) (any, bool) {
	var cur any = r.Body
	for _, key := range path {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[key]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// StringField returns a nested string field.
func (r *Response) StringField(path ...string) (string, bool) {
	v, ok := r.Field(path...)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}
