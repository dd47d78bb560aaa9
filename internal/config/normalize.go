package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeSession()
	c.normalizeMedia()
	c.normalizeProbe()
	c.normalizeServer()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	if value, ok := os.LookupEnv("GLOSSAUDIO_DROP_DIR"); ok && strings.TrimSpace(value) != "" {
		c.Paths.DropDir = strings.TrimSpace(value)
	}
	if strings.TrimSpace(c.Paths.DropDir) == "" {
		c.Paths.DropDir = defaultDropDir
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if strings.TrimSpace(c.Paths.Database) == "" {
		c.Paths.Database = defaultDatabase
	}

	var err error
	if c.Paths.DropDir, err = expandPath(c.Paths.DropDir); err != nil {
		return fmt.Errorf("paths.drop_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if c.Paths.Database != ":memory:" {
		if c.Paths.Database, err = expandPath(c.Paths.Database); err != nil {
			return fmt.Errorf("paths.database: %w", err)
		}
	}
	return nil
}

func (c *Config) normalizeSession() {
	if value, ok := os.LookupEnv("GLOSSAUDIO_USER"); ok && strings.TrimSpace(value) != "" {
		c.Session.User = value
	}
	c.Session.User = strings.TrimSpace(c.Session.User)
	if c.Session.User == "" {
		c.Session.User = defaultSessionUser
	}
}

func (c *Config) normalizeMedia() {
	c.Media.FallbackCreator = strings.TrimSpace(c.Media.FallbackCreator)
	if c.Media.FallbackCreator == "" {
		c.Media.FallbackCreator = defaultFallbackCreator
	}
}

func (c *Config) normalizeProbe() {
	c.Probe.Backend = strings.ToLower(strings.TrimSpace(c.Probe.Backend))
	if c.Probe.Backend == "" {
		c.Probe.Backend = defaultProbeBackend
	}
	c.Probe.FFprobeBinary = strings.TrimSpace(c.Probe.FFprobeBinary)
	if c.Probe.FFprobeBinary == "" {
		c.Probe.FFprobeBinary = defaultFFprobeBinary
	}
}

func (c *Config) normalizeServer() {
	c.Server.Bind = strings.TrimSpace(c.Server.Bind)
	if c.Server.Bind == "" {
		c.Server.Bind = defaultServerBind
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
