package cliconfig

import "os"

// Environment variable names
const (
	EnvURL     = "WIRECAT_URL"
	EnvProfile = "WIRECAT_PROFILE"
	EnvConfig  = "WIRECAT_CONFIG"
)

// ResolveProfileName picks the profile to use.
// Priority: explicit flag > WIRECAT_PROFILE > config default.
func ResolveProfileName(flagValue string, cfg *Config) string {
	if flagValue != "" {
		return flagValue
	}
	if env := os.Getenv(EnvProfile); env != "" {
		return env
	}
	if cfg != nil {
		return cfg.Default
	}
	return ""
}

// ResolveURL picks the target URL.
// Priority: explicit argument > WIRECAT_URL > profile URL.
func ResolveURL(arg string, p *Profile) string {
	if arg != "" {
		return arg
	}
	if env := os.Getenv(EnvURL); env != "" {
		return env
	}
	if p != nil {
		return p.URL
	}
	return ""
}
