// Package config provides shared configuration for the geoforge tools.
// This package is decoupled from CLI concerns so the server and other entry
// points can load the same configuration.
package config

import "fmt"

// Config holds the resolved runtime configuration.
type Config struct {
	// RemoteURL is the base URL of the workspace object service.
	RemoteURL string `koanf:"remote_url"`

	// Org is the organization identifier on the remote service.
	Org string `koanf:"org"`

	// Token is the bearer token for the remote service. Values of the form
	// ${VAR} are expanded from the environment at load time.
	Token string `koanf:"token"`

	// Workspace is the default workspace identifier for builds.
	Workspace string `koanf:"workspace"`

	// CacheDir is where built columnar blobs are staged before upload.
	CacheDir string `koanf:"cache_dir"`

	// StatePath is the SQLite file recording already-uploaded blobs.
	StatePath string `koanf:"state_path"`

	// Listen is the HTTP server bind address.
	Listen string `koanf:"listen"`

	Verbose bool   `koanf:"verbose"`
	Output  string `koanf:"output"` // text or json
}

// Validate checks invariants that hold for every command.
func (c *Config) Validate() error {
	if c.Output != "text" && c.Output != "json" {
		return fmt.Errorf("invalid output format %q (expected text or json)", c.Output)
	}
	return nil
}

// ValidateRemote checks the fields needed to talk to the remote service.
func (c *Config) ValidateRemote() error {
	if c.RemoteURL == "" {
		return fmt.Errorf("remote_url is required (set it in geoforge.yaml or GEOFORGE_REMOTE_URL)")
	}
	if c.Org == "" {
		return fmt.Errorf("org is required (set it in geoforge.yaml or GEOFORGE_ORG)")
	}
	return nil
}
