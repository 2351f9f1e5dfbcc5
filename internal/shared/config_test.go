package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Server.Host != "127.0.0.1" {
			t.Errorf("expected host 127.0.0.1, got %s", config.Server.Host)
		}
		if config.Server.Port != 8080 {
			t.Errorf("expected server port 8080, got %d", config.Server.Port)
		}
		if config.Tools.YTDLPPath != "yt-dlp" {
			t.Errorf("expected ytdlp path yt-dlp, got %s", config.Tools.YTDLPPath)
		}
		if config.Downloads.Workers != 4 {
			t.Errorf("expected 4 workers, got %d", config.Downloads.Workers)
		}
		if config.Downloads.ThumbnailTimeoutSeconds != 15 {
			t.Errorf("expected 15s thumbnail timeout, got %d", config.Downloads.ThumbnailTimeoutSeconds)
		}
		if config.Database.Path != "ytz.db" {
			t.Errorf("expected database path ytz.db, got %s", config.Database.Path)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		defaultConfig := DefaultConfig()
		if config.Downloads.ScratchDir != defaultConfig.Downloads.ScratchDir {
			t.Errorf("created config scratch dir doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig missing file", func(t *testing.T) {
		if _, err := LoadConfig(filepath.Join(t.TempDir(), "absent.toml")); !errors.Is(err, ErrMissingConfig) {
			t.Errorf("expected ErrMissingConfig, got %v", err)
		}
	})

	t.Run("LoadConfig invalid toml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(path, []byte("not [valid toml"), 0644); err != nil {
			t.Fatalf("failed to write file: %v", err)
		}

		if _, err := LoadConfig(path); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("LoadConfig overrides", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		content := `
[downloads]
scratch_dir = "/tmp/scratch"
workers = 8
rate_limit = 2.5
`
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("failed to write file: %v", err)
		}

		config, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}
		if config.Downloads.Workers != 8 {
			t.Errorf("expected 8 workers, got %d", config.Downloads.Workers)
		}
		if config.Downloads.RateLimit != 2.5 {
			t.Errorf("expected rate limit 2.5, got %f", config.Downloads.RateLimit)
		}
	})
}

func TestConfigValidate(t *testing.T) {
	fakeTool := func(t *testing.T) string {
		t.Helper()
		path := filepath.Join(t.TempDir(), "tool")
		if err := os.WriteFile(path, []byte("#!/bin/sh\n"), 0755); err != nil {
			t.Fatalf("failed to write tool: %v", err)
		}
		return path
	}

	t.Run("valid config creates scratch dir", func(t *testing.T) {
		tool := fakeTool(t)
		scratch := filepath.Join(t.TempDir(), "scratch")
		config := &Config{
			Tools:     ToolsConfig{YTDLPPath: tool, FFmpegPath: tool},
			Downloads: DownloadsConfig{ScratchDir: scratch},
		}

		if err := config.Validate(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if info, err := os.Stat(scratch); err != nil || !info.IsDir() {
			t.Errorf("scratch dir not created: %v", err)
		}
	})

	t.Run("missing tool path", func(t *testing.T) {
		config := &Config{
			Tools:     ToolsConfig{YTDLPPath: "", FFmpegPath: "ffmpeg"},
			Downloads: DownloadsConfig{ScratchDir: t.TempDir()},
		}

		if err := config.Validate(); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("nonexistent tool", func(t *testing.T) {
		tool := fakeTool(t)
		config := &Config{
			Tools:     ToolsConfig{YTDLPPath: tool, FFmpegPath: filepath.Join(t.TempDir(), "absent")},
			Downloads: DownloadsConfig{ScratchDir: t.TempDir()},
		}

		if err := config.Validate(); !errors.Is(err, ErrMissingTool) {
			t.Errorf("expected ErrMissingTool, got %v", err)
		}
	})

	t.Run("empty scratch dir", func(t *testing.T) {
		tool := fakeTool(t)
		config := &Config{
			Tools: ToolsConfig{YTDLPPath: tool, FFmpegPath: tool},
		}

		if err := config.Validate(); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})
}
