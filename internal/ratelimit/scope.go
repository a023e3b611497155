package ratelimit

import "net/http"

// Scope categorizes a request for rate limiting purposes.
type Scope string

const (
	// ScopeGlobal applies to all requests regardless of type.
	ScopeGlobal Scope = "global"
	// ScopeRead applies to read operations (GET, HEAD, OPTIONS).
	ScopeRead Scope = "read"
	// ScopeWrite applies to every other method.
	ScopeWrite Scope = "write"
	// ScopeCustom tags counters created from EndpointConfig.Limits.
	ScopeCustom Scope = "custom"
)

// MetadataKey is the key used to store rate limit config in operation metadata.
const MetadataKey = "rateLimit"

// EndpointConfig defines per-endpoint rate limit configuration attached to
// huma operations via the Metadata field.
//
// When Limits is non-empty only those limits apply, keyed by the route
// template. Otherwise the policy limits for the method's scopes apply.
type EndpointConfig struct {
	Limits   []LimitConfig
	Disabled bool
}

// ScopesFor returns the scopes for an HTTP method. ScopeGlobal is always first.
func ScopesFor(method string) []Scope {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return []Scope{ScopeGlobal, ScopeRead}
	default:
		return []Scope{ScopeGlobal, ScopeWrite}
	}
}

// EndpointConfigFrom extracts the EndpointConfig from operation metadata, if present.
func EndpointConfigFrom(metadata map[string]any) *EndpointConfig {
	cfg, ok := metadata[MetadataKey].(EndpointConfig)
	if !ok {
		return nil
	}

	return &cfg
}
