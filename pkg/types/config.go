package types

import "errors"

// Config holds backend selection and parameters for opening a Store.
type Config struct {
	Backend  string `json:"backend" yaml:"backend"`
	DataDir  string `json:"data_dir" yaml:"data_dir"`
	Recovery string `json:"recovery" yaml:"recovery"`
}

// Supported backend names.
const (
	BackendJSONL  = "jsonl"
	BackendSQLite = "sqlite"
)

// Load recovery policies. Coupled resets both blobs when either fails to
// load; independent resets only the blob that failed.
const (
	RecoveryCoupled     = "coupled"
	RecoveryIndependent = "independent"
)

// Config validation errors.
var (
	ErrBackendEmpty    = errors.New("backend must not be empty")
	ErrBackendUnknown  = errors.New("unknown backend")
	ErrRecoveryUnknown = errors.New("unknown recovery policy")
)

// knownBackends lists the backends that Validate accepts.
var knownBackends = map[string]bool{
	BackendJSONL:  true,
	BackendSQLite: true,
}

// Validate checks that the Config is well-formed. An empty Recovery is valid
// and means coupled.
func (c Config) Validate() error {
	if c.Backend == "" {
		return ErrBackendEmpty
	}
	if !knownBackends[c.Backend] {
		return ErrBackendUnknown
	}
	switch c.Recovery {
	case "", RecoveryCoupled, RecoveryIndependent:
		return nil
	default:
		return ErrRecoveryUnknown
	}
}

// RecoveryPolicy returns the effective recovery policy.
func (c Config) RecoveryPolicy() string {
	if c.Recovery == "" {
		return RecoveryCoupled
	}
	return c.Recovery
}
