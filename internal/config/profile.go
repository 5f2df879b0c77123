package config

import "time"

// TargetProfile holds per-target configuration for a single base URL host.
// This allows customizing probe behavior per deployment, e.g. a fork that
// renamed its admin bundle or a staging host that needs a cookie.
type TargetProfile struct {
	// Repository overrides the release index repository for this target.
	// Format: "owner/name". Empty means use the global repository.
	Repository string `yaml:"repository,omitempty"`

	// PathTemplate overrides the probe path template for this target.
	// Must contain exactly one %s placeholder for the version candidate.
	PathTemplate string `yaml:"pathTemplate,omitempty"`

	// Headers are custom HTTP headers to include in probes to this target.
	// Useful for cookies or auth headers a front-end requires.
	Headers map[string]string `yaml:"headers,omitempty"`

	// TokenEnv overrides the environment variable read for the index
	// credential when enumerating this target's repository.
	TokenEnv string `yaml:"tokenEnv,omitempty"`

	// ProbeDelayMS overrides the pause after each probe, in milliseconds.
	// If zero, the global probe delay is used.
	ProbeDelayMS int `yaml:"probeDelayMs,omitempty"`
}

// ProbeDelay returns the per-target probe delay as a duration.
// Zero when the profile does not override the global delay.
func (p TargetProfile) ProbeDelay() time.Duration {
	return time.Duration(p.ProbeDelayMS) * time.Millisecond
}

// File represents the structure of the .verscan configuration file.
type File struct {
	// Targets maps hostnames to their target-specific configurations.
	// Keys should be the hostname without scheme or port (e.g., "auth.example.com").
	Targets map[string]TargetProfile `yaml:"targets,omitempty"`

	// Defaults contains default profile values applied to all targets
	// unless overridden in the target-specific configuration.
	Defaults TargetProfile `yaml:"defaults,omitempty"`
}

// GetTargetProfile returns the configuration for a specific hostname.
// It merges the target-specific configuration with defaults.
func (cf *File) GetTargetProfile(host string) TargetProfile {
	// Start with defaults
	result := cf.Defaults

	// Override with target-specific configuration if present
	if profile, ok := cf.Targets[host]; ok {
		if profile.Repository != "" {
			result.Repository = profile.Repository
		}
		if profile.PathTemplate != "" {
			result.PathTemplate = profile.PathTemplate
		}
		if len(profile.Headers) > 0 {
			// Copy before merging: result.Headers still aliases the
			// defaults map, and a batch scan resolves profiles for
			// many hosts from the same File.
			merged := make(map[string]string, len(result.Headers)+len(profile.Headers))
			for k, v := range result.Headers {
				merged[k] = v
			}
			for k, v := range profile.Headers {
				merged[k] = v
			}
			result.Headers = merged
		}
		if profile.TokenEnv != "" {
			result.TokenEnv = profile.TokenEnv
		}
		if profile.ProbeDelayMS != 0 {
			result.ProbeDelayMS = profile.ProbeDelayMS
		}
	}

	return result
}
