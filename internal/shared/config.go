package shared

import (
	_ "embed"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Tools     ToolsConfig     `toml:"tools"`
	Downloads DownloadsConfig `toml:"downloads"`
	Database  DatabaseConfig  `toml:"database"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// ToolsConfig contains paths to the external extraction and transcoding binaries.
//
// Paths are injected here and validated once at startup rather than hardcoded
// at call sites.
type ToolsConfig struct {
	YTDLPPath  string `toml:"ytdlp_path"`
	FFmpegPath string `toml:"ffmpeg_path"`
}

// DownloadsConfig contains batch processing settings.
type DownloadsConfig struct {
	ScratchDir              string  `toml:"scratch_dir"`
	Workers                 int     `toml:"workers"`
	RateLimit               float64 `toml:"rate_limit"`
	ThumbnailTimeoutSeconds int     `toml:"thumbnail_timeout_seconds"`
}

// DatabaseConfig contains batch history store settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMissingConfig, err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks that the configured external tools resolve to executables
// and that the scratch directory exists, creating it if absent.
//
// Called once at startup; the rest of the process assumes a valid config.
func (c *Config) Validate() error {
	for _, tool := range []struct{ name, path string }{
		{"yt-dlp", c.Tools.YTDLPPath},
		{"ffmpeg", c.Tools.FFmpegPath},
	} {
		if tool.path == "" {
			return fmt.Errorf("%w: %s path is empty", ErrInvalidConfig, tool.name)
		}
		if filepath.Base(tool.path) == tool.path {
			if _, err := exec.LookPath(tool.path); err != nil {
				return fmt.Errorf("%w: %s (%s): %v", ErrMissingTool, tool.name, tool.path, err)
			}
		} else if _, err := os.Stat(tool.path); err != nil {
			return fmt.Errorf("%w: %s (%s): %v", ErrMissingTool, tool.name, tool.path, err)
		}
	}

	if c.Downloads.ScratchDir == "" {
		return fmt.Errorf("%w: scratch_dir is empty", ErrInvalidConfig)
	}
	if err := os.MkdirAll(c.Downloads.ScratchDir, 0755); err != nil {
		return fmt.Errorf("%w: scratch_dir: %v", ErrInvalidConfig, err)
	}

	return nil
}
