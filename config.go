package lfbb

// DemoConfig configures the lfbbdemo binary's simulated producer/consumer
// run. It lives in the core package because both the CLI (cmd/lfbbdemo) and
// tests construct it, and it carries the public cache-line padding knob
// through to Option values via ToOptions.
type DemoConfig struct {
	// CapacityBytes is the size of the backing byte array.
	CapacityBytes uint64 `yaml:"capacity_bytes"`
	// ChunkBytes is the size of each simulated producer write.
	ChunkBytes uint64 `yaml:"chunk_bytes"`
	// Chunks is the number of chunks the simulated producer writes before
	// stopping.
	Chunks int `yaml:"chunks"`
	// CacheLinePadding selects "none", "64", or "128".
	CacheLinePadding string `yaml:"cache_line_padding"`
}

// DefaultDemoConfig returns the configuration lfbbdemo runs with when no
// config file is supplied.
func DefaultDemoConfig() *DemoConfig {
	return &DemoConfig{
		CapacityBytes:    64 * 1024,
		ChunkBytes:       256,
		Chunks:           10000,
		CacheLinePadding: "64",
	}
}

// ToOptions translates the decoded config into Buffer construction Options.
func (c *DemoConfig) ToOptions() []Option {
	switch c.CacheLinePadding {
	case "128":
		return []Option{WithPadding(CacheLine128)}
	case "none", "":
		return []Option{WithoutPadding()}
	default:
		return []Option{WithPadding(CacheLine64)}
	}
}
