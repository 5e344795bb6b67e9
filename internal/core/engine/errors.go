package engine

import "fmt"

// ConfigError is fatal to the whole cycle and is raised before any network
// call is made.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error: %s", e.Reason)
}

// SourceUnavailableError means the local inventory source could not be read.
// Without it no changes can be computed, so the run is aborted.
type SourceUnavailableError struct {
	Source string
	Err    error
}

func (e *SourceUnavailableError) Error() string {
	return fmt.Sprintf("inventory source %s unavailable: %v", e.Source, e.Err)
}

func (e *SourceUnavailableError) Unwrap() error { return e.Err }

// AuthError is fatal for one adapter only: credentials will not self-heal
// mid-run, so its remaining batches are skipped instead of retried.
type AuthError struct {
	Marketplace string
	Err         error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("%s authorization failed: %v", e.Marketplace, e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// TransientError covers network problems and rate-limit responses; the
// dispatcher retries these with backoff before giving up.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("transient: %v", e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

// ValidationError marks a single item unfit for pushing (e.g. negative
// stock). It fails that sku without blocking the rest of the batch.
type ValidationError struct {
	SKU    string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("sku %s: %s", e.SKU, e.Reason)
}
