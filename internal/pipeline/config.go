package pipeline

import (
	"fmt"
	"runtime"
)

// Defaults for the pipeline configuration.
const (
	DefaultBatchSize = 200
)

// Config controls batching and scheduling of the consequence-mapping run.
type Config struct {
	BatchSize   int // variants per external-engine invocation
	Concurrency int // parallel batch workers, 0 = NumCPU
	Retries     int // extra attempts per failing batch before escalating
}

// ConfigError reports invalid pipeline configuration. It is fatal at startup:
// no batch is submitted when configuration is invalid.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration: %s %s", e.Field, e.Reason)
}

// withDefaults validates the configuration and fills the worker-count
// default. Batch size has no silent default: zero or negative is an error.
func (c Config) withDefaults() (Config, error) {
	if c.BatchSize <= 0 {
		return c, &ConfigError{Field: "batch size", Reason: "must be a positive integer"}
	}
	if c.Concurrency == 0 {
		c.Concurrency = runtime.NumCPU()
	}
	if c.Concurrency < 0 {
		return c, &ConfigError{Field: "concurrency", Reason: "must be a positive integer"}
	}
	if c.Retries < 0 {
		return c, &ConfigError{Field: "retries", Reason: "must be >= 0"}
	}
	return c, nil
}
