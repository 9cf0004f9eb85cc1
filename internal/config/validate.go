package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

var validPatterns = map[string]struct{}{
	"immediate": {},
	"staggered": {},
	"random":    {},
}

var validSizePreferences = map[string]struct{}{
	"small":  {},
	"medium": {},
	"large":  {},
	"xlarge": {},
	"mixed":  {},
}

var validUploadMethods = map[string]struct{}{
	"":                {},
	"direct":          {},
	"presigned":       {},
	"batch_presigned": {},
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateAPI(); err != nil {
		return err
	}
	if err := c.validateRemote(); err != nil {
		return err
	}
	if err := c.validateTesting(); err != nil {
		return err
	}
	if err := c.validateScenarios(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateAPI() error {
	parsed, err := url.Parse(c.API.BaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("api.base_url %q is not a valid http(s) URL", c.API.BaseURL)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("api.base_url scheme %q must be http or https", parsed.Scheme)
	}
	return nil
}

func (c *Config) validateRemote() error {
	if c.Remote.Host == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/sermonbench/config.toml"
		}
		return fmt.Errorf("remote.host is required; edit %s (create with 'sermonbench config init')", defaultPath)
	}
	if c.Remote.User == "" {
		return errors.New("remote.user must be set")
	}
	if c.Remote.SessionPool < 0 {
		return errors.New("remote.session_pool must not be negative")
	}
	return nil
}

func (c *Config) validateTesting() error {
	if c.Testing.MinSuccessRate < 0 || c.Testing.MinSuccessRate > 100 {
		return errors.New("testing.min_success_rate must be between 0 and 100")
	}
	if c.Testing.MinThroughputMBps < 0 {
		return errors.New("testing.min_throughput_mbps must not be negative")
	}
	return nil
}

func (c *Config) validateScenarios() error {
	seen := make(map[string]struct{}, len(c.Scenarios))
	for _, sc := range c.Scenarios {
		if sc.Name == "" {
			return errors.New("scenario.name must be set")
		}
		key := strings.ToLower(sc.Name)
		if _, dup := seen[key]; dup {
			return fmt.Errorf("scenario %q is defined twice", sc.Name)
		}
		seen[key] = struct{}{}
		if _, ok := validPatterns[sc.Pattern]; !ok {
			return fmt.Errorf("scenario %q: pattern %q must be one of immediate, staggered, random", sc.Name, sc.Pattern)
		}
		if _, ok := validSizePreferences[sc.SizePreference]; !ok {
			return fmt.Errorf("scenario %q: size_preference %q must be one of small, medium, large, xlarge, mixed", sc.Name, sc.SizePreference)
		}
		if _, ok := validUploadMethods[sc.UploadMethod]; !ok {
			return fmt.Errorf("scenario %q: upload_method %q must be one of direct, presigned, batch_presigned", sc.Name, sc.UploadMethod)
		}
		if sc.FileCount <= 0 {
			return fmt.Errorf("scenario %q: file_count must be positive", sc.Name)
		}
		if sc.DurationMinutes <= 0 {
			return fmt.Errorf("scenario %q: duration_minutes must be positive", sc.Name)
		}
	}
	return nil
}
