package tasks

import "time"

// Config holds the client-wide queue settings. Attempts, backoff, timeout and
// retention are set per task type in its Config method.
type Config struct {
	// Workers is the number of concurrent task workers.
	Workers int

	// ReleaseAfter is how long a claimed task may run before another worker
	// can pick it up again.
	ReleaseAfter time.Duration

	// CleanupInterval is how often finished tasks past their retention are
	// removed.
	CleanupInterval time.Duration
}

// DefaultConfig returns the settings used for any zero field.
func DefaultConfig() Config {
	return Config{
		Workers:         2,
		ReleaseAfter:    15 * time.Minute,
		CleanupInterval: time.Hour,
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.Workers <= 0 {
		c.Workers = def.Workers
	}
	if c.ReleaseAfter <= 0 {
		c.ReleaseAfter = def.ReleaseAfter
	}
	if c.CleanupInterval <= 0 {
		c.CleanupInterval = def.CleanupInterval
	}
	return c
}
