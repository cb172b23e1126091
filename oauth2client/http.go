package oauth2client

import (
	"fmt"
	"strings"
)

// HttpMethod represents an HTTP method.
type HttpMethod string

// HTTP Method constants
const (
	HttpGet     HttpMethod = "GET"
	HttpPost    HttpMethod = "POST"
	HttpPut     HttpMethod = "PUT"
	HttpDelete  HttpMethod = "DELETE"
	HttpPatch   HttpMethod = "PATCH"
	HttpHead    HttpMethod = "HEAD"
	HttpOptions HttpMethod = "OPTIONS"
)

// ContentTypeJSON is sent on every resource call.
const ContentTypeJSON = "application/json; charset=utf-8"

// ParseHttpMethod accepts a method name in any case.
func ParseHttpMethod(s string) (HttpMethod, error) {
	m := HttpMethod(strings.ToUpper(strings.TrimSpace(s)))
	switch m {
	case HttpGet, HttpPost, HttpPut, HttpDelete, HttpPatch, HttpHead, HttpOptions:
		return m, nil
	}
	return "", fmt.Errorf("unsupported http method %q", s)
}
