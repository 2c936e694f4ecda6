// Package cliconfig stores named connection profiles for the wirecat CLI.
//
// Profiles live in a single YAML file (~/.config/wirecat/config.yaml by
// default) and capture everything needed to dial an endpoint: URL, extra
// headers, subprotocols, TLS and keepalive settings. Similar to kubectl
// contexts, one profile can be marked as the default so day-to-day
// invocations need no flags at all.
package cliconfig

import (
	"fmt"
	"net/url"
	"time"
)

// Profile is a named set of connection settings.
type Profile struct {
	// URL is the websocket endpoint (ws:// or wss://).
	URL string `json:"url" yaml:"url"`

	// Headers are extra HTTP headers sent with the opening handshake.
	Headers map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`

	// Subprotocols are offered during the handshake, in preference order.
	Subprotocols []string `json:"subprotocols,omitempty" yaml:"subprotocols,omitempty"`

	// Insecure skips TLS certificate verification (for self-signed certs).
	Insecure bool `json:"insecure,omitempty" yaml:"insecure,omitempty"`

	// PingInterval enables keepalive pings, as a duration string ("30s").
	// Empty disables keepalive.
	PingInterval string `json:"pingInterval,omitempty" yaml:"pingInterval,omitempty"`

	// Proxy is an optional SOCKS5 proxy URL.
	Proxy string `json:"proxy,omitempty" yaml:"proxy,omitempty"`

	// Description is an optional human-readable note.
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// Validate checks that the profile's fields parse.
func (p *Profile) Validate() error {
	if p.URL == "" {
		return fmt.Errorf("profile has no url")
	}
	u, err := url.Parse(p.URL)
	if err != nil {
		return fmt.Errorf("invalid url %q: %w", p.URL, err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return fmt.Errorf("url scheme must be ws or wss, got %q", u.Scheme)
	}
	if p.PingInterval != "" {
		if _, err := time.ParseDuration(p.PingInterval); err != nil {
			return fmt.Errorf("invalid pingInterval %q: %w", p.PingInterval, err)
		}
	}
	if p.Proxy != "" {
		if _, err := url.Parse(p.Proxy); err != nil {
			return fmt.Errorf("invalid proxy %q: %w", p.Proxy, err)
		}
	}
	return nil
}

// PingDuration parses the PingInterval field. Zero means disabled.
func (p *Profile) PingDuration() (time.Duration, error) {
	if p.PingInterval == "" {
		return 0, nil
	}
	return time.ParseDuration(p.PingInterval)
}

// Config is the on-disk CLI configuration: named profiles plus the name
// of the one used when --profile is not given.
type Config struct {
	// Default is the profile used when none is selected explicitly.
	Default string `json:"default,omitempty" yaml:"default,omitempty"`

	// Profiles maps profile names to their settings.
	Profiles map[string]*Profile `json:"profiles" yaml:"profiles"`
}

// NewDefault returns an empty configuration ready for profiles.
func NewDefault() *Config {
	return &Config{Profiles: make(map[string]*Profile)}
}

// Profile returns the named profile, or nil if it does not exist.
func (c *Config) Profile(name string) *Profile {
	if name == "" {
		return nil
	}
	return c.Profiles[name]
}

// AddProfile adds a new profile under the given name.
// Returns an error if the name is empty or already taken.
func (c *Config) AddProfile(name string, p *Profile) error {
	if name == "" {
		return fmt.Errorf("profile name cannot be empty")
	}
	if _, exists := c.Profiles[name]; exists {
		return fmt.Errorf("profile already exists: %s", name)
	}
	if c.Profiles == nil {
		c.Profiles = make(map[string]*Profile)
	}
	c.Profiles[name] = p
	return nil
}

// RemoveProfile removes a profile by name.
// Returns an error if the profile doesn't exist or is the default.
func (c *Config) RemoveProfile(name string) error {
	if _, exists := c.Profiles[name]; !exists {
		return fmt.Errorf("profile not found: %s", name)
	}
	if c.Default == name {
		return fmt.Errorf("cannot remove default profile; set another default first")
	}
	delete(c.Profiles, name)
	return nil
}

// SetDefault marks the named profile as the default.
// Returns an error if the profile doesn't exist.
func (c *Config) SetDefault(name string) error {
	if _, exists := c.Profiles[name]; !exists {
		return fmt.Errorf("profile not found: %s", name)
	}
	c.Default = name
	return nil
}
