// Package config provides configuration management for the opaque blog
// engine using Viper, loading from a YAML file, OPAQUE_ prefixed
// environment variables and command-line flags.
//
// Configuration is read once at startup. The site section describes the
// blog and where its content lives; server, render and log tune the
// process.
package config

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/conneroisu/opaque/internal/ansi"
	"github.com/conneroisu/opaque/internal/errors"
	"github.com/conneroisu/opaque/internal/logging"
)

// EnvPrefix prefixes environment overrides, e.g. OPAQUE_SERVER_PORT.
const EnvPrefix = "OPAQUE"

type Config struct {
	Site   SiteConfig   `mapstructure:"site" yaml:"site"`
	Server ServerConfig `mapstructure:"server" yaml:"server"`
	Render RenderConfig `mapstructure:"render" yaml:"render"`
	Log    LogConfig    `mapstructure:"log" yaml:"log"`
}

type SiteConfig struct {
	Name        string       `mapstructure:"name" yaml:"name"`
	Description string       `mapstructure:"description" yaml:"description"`
	URL         string       `mapstructure:"url" yaml:"url"`
	StaticPath  string       `mapstructure:"static_path" yaml:"static_path"`
	ContentPath string       `mapstructure:"content_path" yaml:"content_path"`
	SnippetPath string       `mapstructure:"snippet_path" yaml:"snippet_path"`
	Author      AuthorConfig `mapstructure:"author" yaml:"author"`
	Nav         []NavLink    `mapstructure:"nav" yaml:"nav"`
}

type AuthorConfig struct {
	Name  string `mapstructure:"name" yaml:"name"`
	Email string `mapstructure:"email" yaml:"email"`
}

// NavLink is one entry of the header navigation.
type NavLink struct {
	Name string `mapstructure:"name" yaml:"name"`
	URL  string `mapstructure:"url" yaml:"url"`
}

type ServerConfig struct {
	Host string `mapstructure:"host" yaml:"host"`
	Port int    `mapstructure:"port" yaml:"port"`
}

type RenderConfig struct {
	// Charset is the encoding of ANSI snippet files.
	Charset string `mapstructure:"charset" yaml:"charset"`
	// CodeStyle names the chroma style for highlighted code blocks.
	CodeStyle string `mapstructure:"code_style" yaml:"code_style"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("site.name", "Enigma")
	v.SetDefault("site.description", "")
	v.SetDefault("site.url", "http://localhost:8000")
	v.SetDefault("site.static_path", "static/")
	v.SetDefault("site.content_path", "content/")
	v.SetDefault("site.snippet_path", "output_snippets/")
	v.SetDefault("site.author.name", "Anonymous")
	v.SetDefault("site.author.email", "")
	v.SetDefault("site.nav", []map[string]string{{"name": "Posts", "url": "/posts"}})

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8000)

	v.SetDefault("render.charset", string(ansi.CharsetUTF8))
	v.SetDefault("render.code_style", "monokai")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Load reads the configuration from the global viper instance.
func Load() (*Config, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom reads and validates the configuration held by v.
func LoadFrom(v *viper.Viper) (*Config, error) {
	SetDefaults(v)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.WrapConfig(err, errors.ErrCodeInvalidConfig, "unable to decode configuration")
	}

	if err := validateConfig(&config); err != nil {
		return nil, errors.WrapConfig(err, errors.ErrCodeInvalidConfig, "invalid configuration")
	}

	return &config, nil
}

// Addr returns the host:port the server listens on.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// StaticURL is the prefix resource links in posts are rewritten with: the
// site URL and static path joined by exactly one slash.
func (c *Config) StaticURL() string {
	return strings.Trim(c.Site.URL, "/") + "/" + strings.TrimLeft(filepath.ToSlash(c.Site.StaticPath), "/")
}

// Charset returns the parsed snippet charset. It is valid after Load.
func (c *Config) Charset() ansi.Charset {
	cs, err := ansi.ParseCharset(c.Render.Charset)
	if err != nil {
		return ansi.CharsetUTF8
	}
	return cs
}

// LoggerConfig translates the log section for logging.NewLogger.
func (c *Config) LoggerConfig() *logging.LoggerConfig {
	level, err := logging.ParseLevel(c.Log.Level)
	if err != nil {
		level = logging.LevelInfo
	}
	lc := logging.DefaultConfig()
	lc.Level = level
	lc.Format = c.Log.Format
	return lc
}

// validateConfig validates configuration values for security and correctness
func validateConfig(config *Config) error {
	if err := validateSiteConfig(&config.Site); err != nil {
		return fmt.Errorf("site config: %w", err)
	}

	if err := validateServerConfig(&config.Server); err != nil {
		return fmt.Errorf("server config: %w", err)
	}

	if _, err := ansi.ParseCharset(config.Render.Charset); err != nil {
		return fmt.Errorf("render config: %w", err)
	}

	if _, err := logging.ParseLevel(config.Log.Level); err != nil {
		return fmt.Errorf("log config: %w", err)
	}
	if config.Log.Format != "text" && config.Log.Format != "json" {
		return fmt.Errorf("log config: format must be text or json, got %q", config.Log.Format)
	}

	return nil
}

func validateSiteConfig(config *SiteConfig) error {
	if config.URL == "" {
		return fmt.Errorf("url must not be empty")
	}
	u, err := url.Parse(config.URL)
	if err != nil {
		return fmt.Errorf("invalid url %q: %w", config.URL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("url %q must be http or https", config.URL)
	}

	paths := map[string]string{
		"static_path":  config.StaticPath,
		"content_path": config.ContentPath,
		"snippet_path": config.SnippetPath,
	}
	for name, path := range paths {
		if err := validatePath(path); err != nil {
			return fmt.Errorf("invalid %s '%s': %w", name, path, err)
		}
	}

	return nil
}

// validateServerConfig validates server configuration values
func validateServerConfig(config *ServerConfig) error {
	// Allow 0 for system-assigned ports in testing
	if config.Port < 0 || config.Port > 65535 {
		return fmt.Errorf("port %d is not in valid range 0-65535", config.Port)
	}

	if config.Host != "" {
		dangerousChars := []string{";", "&", "|", "$", "`", "(", ")", "<", ">", "\"", "'", "\\"}
		for _, char := range dangerousChars {
			if strings.Contains(config.Host, char) {
				return fmt.Errorf("host contains dangerous character: %s", char)
			}
		}
	}

	return nil
}

// validatePath validates a file path for security
func validatePath(path string) error {
	if path == "" {
		return fmt.Errorf("empty path")
	}

	cleanPath := filepath.Clean(path)

	// Reject path traversal attempts
	for _, part := range strings.Split(filepath.ToSlash(cleanPath), "/") {
		if part == ".." {
			return fmt.Errorf("path contains traversal: %s", path)
		}
	}

	dangerousChars := []string{";", "&", "|", "$", "`", "(", ")", "<", ">", "\"", "'"}
	for _, char := range dangerousChars {
		if strings.Contains(cleanPath, char) {
			return fmt.Errorf("path contains dangerous character: %s", char)
		}
	}

	return nil
}
