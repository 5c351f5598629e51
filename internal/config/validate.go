package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePlex(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePlex() error {
	if strings.TrimSpace(c.Plex.URL) == "" {
		return errors.New("plex.url must be set")
	}
	if !strings.HasPrefix(c.Plex.URL, "http://") && !strings.HasPrefix(c.Plex.URL, "https://") {
		return fmt.Errorf("plex.url must start with http:// or https:// (got %q)", c.Plex.URL)
	}
	if c.Plex.Token == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/reelist/config.toml"
		}
		return fmt.Errorf("plex.token is required. Set PLEX_TOKEN env var or edit %s (create with 'reelist config init')", defaultPath)
	}
	if c.Plex.Library == "" {
		return errors.New("plex.library must be set")
	}
	if c.Plex.TimeoutSeconds <= 0 {
		return errors.New("plex.timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error (got %q)", c.Logging.Level)
	}
}
