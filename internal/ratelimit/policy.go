package ratelimit

import (
	"fmt"
	"time"
)

// LimitConfig caps the number of requests within a sliding window.
type LimitConfig struct {
	Window time.Duration
	Max    int64
}

func (c LimitConfig) String() string {
	return fmt.Sprintf("%d/%s", c.Max, c.Window)
}

// Policy maps scopes to the limits applied to them.
type Policy struct {
	Limits map[Scope][]LimitConfig
}

// DefaultPolicy returns per-minute limits for read and write traffic
// plus a global ceiling of their sum.
func DefaultPolicy(readPerMinute, writePerMinute int64) *Policy {
	return &Policy{
		Limits: map[Scope][]LimitConfig{
			ScopeGlobal: {{Window: time.Minute, Max: readPerMinute + writePerMinute}},
			ScopeRead:   {{Window: time.Minute, Max: readPerMinute}},
			ScopeWrite:  {{Window: time.Minute, Max: writePerMinute}},
		},
	}
}
