package config

// Default configuration values.
const (
	DefaultCacheDir  = ".geoforge/cache"
	DefaultStatePath = ".geoforge/state.db"
	DefaultListen    = ":8787"
	DefaultOutput    = "text"
)

// ApplyDefaults fills zero-valued fields with defaults.
func (c *Config) ApplyDefaults() {
	if c.CacheDir == "" {
		c.CacheDir = DefaultCacheDir
	}
	if c.StatePath == "" {
		c.StatePath = DefaultStatePath
	}
	if c.Listen == "" {
		c.Listen = DefaultListen
	}
	if c.Output == "" {
		c.Output = DefaultOutput
	}
}
