package config

import "fmt"

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format %q (expected text or json)", c.LogFormat)
	}

	switch c.OutputFormat {
	case "auto", "text", "json":
	default:
		return fmt.Errorf("invalid output format %q (expected auto, text or json)", c.OutputFormat)
	}

	if c.Compiler == "" {
		return fmt.Errorf("compiler command must not be empty")
	}
	return nil
}
