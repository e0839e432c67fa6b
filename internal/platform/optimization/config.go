// Package optimization provides concurrency tuning for high viewer load.
package optimization

import "runtime"

// Config holds tuned parameters for the serving layer.
type Config struct {
	// Channel buffer sizes
	BroadcastChannelBuffer int
	ClientSendBuffer       int

	// Journal connection pool
	DBMaxOpenConns int
	DBMaxIdleConns int

	// Viewer limits
	MaxClients int
}

// DefaultConfig returns sensible defaults for production.
func DefaultConfig() *Config {
	numCPU := runtime.NumCPU()

	return &Config{
		BroadcastChannelBuffer: 256,
		ClientSendBuffer:       64,

		// The journal is append-only; a small pool is plenty.
		DBMaxOpenConns: numCPU,
		DBMaxIdleConns: 2,

		MaxClients: 200,
	}
}

// LoadTestConfig returns aggressive settings for load testing with the
// agitator tool.
func LoadTestConfig() *Config {
	cfg := DefaultConfig()
	cfg.BroadcastChannelBuffer = 1024
	cfg.ClientSendBuffer = 256
	cfg.MaxClients = 2000
	return cfg
}
