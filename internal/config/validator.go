package config

import (
	"fmt"
	"strings"
)

// Validate performs validation of the configuration
func (c *Config) Validate() error {
	if err := c.validateAPI(); err != nil {
		return fmt.Errorf("api config error: %v", err)
	}

	if err := c.validateDatabase(); err != nil {
		return fmt.Errorf("database config error: %v", err)
	}

	if err := c.validateEvents(); err != nil {
		return fmt.Errorf("events config error: %v", err)
	}

	if err := c.validateDirectory(); err != nil {
		return fmt.Errorf("directory config error: %v", err)
	}

	if err := c.validateIndexer(); err != nil {
		return fmt.Errorf("indexer config error: %v", err)
	}

	if err := c.validateAutosave(); err != nil {
		return fmt.Errorf("autosave config error: %v", err)
	}

	return nil
}

func (c *Config) validateAPI() error {
	if c.API.Port <= 0 || c.API.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.API.Port)
	}

	if c.API.EnableAuth && c.Secrets.JWTSecret == "" {
		return fmt.Errorf("auth enabled but ATRIUM_JWT_SECRET is not set")
	}

	return nil
}

func (c *Config) validateDatabase() error {
	if c.Database.Host == "" {
		return fmt.Errorf("host is required")
	}

	if c.Database.Name == "" {
		return fmt.Errorf("name is required")
	}

	return nil
}

func (c *Config) validateEvents() error {
	if !c.Events.Enabled {
		return nil
	}

	if len(c.Events.Brokers) == 0 {
		return fmt.Errorf("brokers is required")
	}

	for _, broker := range c.Events.Brokers {
		if !strings.Contains(broker, ":") {
			return fmt.Errorf("invalid broker format: %s (expected host:port)", broker)
		}
	}

	return nil
}

func (c *Config) validateDirectory() error {
	if !c.Directory.Enabled {
		return nil
	}

	if c.Directory.URI == "" {
		return fmt.Errorf("uri is required")
	}

	return nil
}

func (c *Config) validateIndexer() error {
	if c.Indexer.MaxRetries < 0 {
		return fmt.Errorf("max_retries must not be negative")
	}

	if c.Indexer.JobDelay < 0 {
		return fmt.Errorf("job_delay must not be negative")
	}

	return nil
}

func (c *Config) validateAutosave() error {
	if c.Autosave.SaveDebounce <= 0 {
		return fmt.Errorf("save_debounce must be positive")
	}

	if c.Autosave.VersionDebounce <= c.Autosave.SaveDebounce {
		return fmt.Errorf("version_debounce must be longer than save_debounce")
	}

	return nil
}
