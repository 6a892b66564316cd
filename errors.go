package rediskit

import "fmt"

// ConfigError reports invalid or missing startup configuration. It is the
// only error class surfaced to callers: a misconfigured cache layer must not
// silently run for its whole lifetime, so construction fails fast while every
// per-request operation degrades instead of erroring.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("rediskit: invalid configuration: %s: %s", e.Field, e.Reason)
}

func configErr(field, reason string) *ConfigError {
	return &ConfigError{Field: field, Reason: reason}
}
