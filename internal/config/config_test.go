package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sethvargo/go-envconfig"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{
			name:   "defaults",
			modify: func(c *Config) {},
		},
		{
			name:   "ticks disabled",
			modify: func(c *Config) { c.TickFormat = "" },
		},
		{
			name:    "tick interval 0",
			modify:  func(c *Config) { c.TickInterval = 0 },
			wantErr: true,
		},
		{
			name:    "tick offset 0",
			modify:  func(c *Config) { c.TickOffset = 0 },
			wantErr: true,
		},
		{
			name:    "volume factor 0",
			modify:  func(c *Config) { c.SpeechVolumeFactor = 0 },
			wantErr: true,
		},
		{
			name:   "speech speed 80",
			modify: func(c *Config) { c.SpeechSpeed = 80 },
		},
		{
			name:   "speech speed 450",
			modify: func(c *Config) { c.SpeechSpeed = 450 },
		},
		{
			name:    "speech speed 79",
			modify:  func(c *Config) { c.SpeechSpeed = 79 },
			wantErr: true,
		},
		{
			name:    "speech speed 451",
			modify:  func(c *Config) { c.SpeechSpeed = 451 },
			wantErr: true,
		},
		{
			name:    "negative split",
			modify:  func(c *Config) { c.SplitSegmentDuration = -1 },
			wantErr: true,
		},
		{
			name:    "parallel segments 0",
			modify:  func(c *Config) { c.ParallelSegments = 0 },
			wantErr: true,
		},
		{
			name:    "parallel segments 11",
			modify:  func(c *Config) { c.ParallelSegments = 11 },
			wantErr: true,
		},
		{
			name:    "empty title format",
			modify:  func(c *Config) { c.TitleFormat = "" },
			wantErr: true,
		},
		{
			name:    "empty out format",
			modify:  func(c *Config) { c.FileOutFormat = "" },
			wantErr: true,
		},
		{
			name:    "bucket without region",
			modify:  func(c *Config) { c.S3Bucket = "stamped" },
			wantErr: true,
		},
		{
			name: "bucket with region",
			modify: func(c *Config) {
				c.S3Bucket = "stamped"
				c.S3Region = "eu-west-1"
			},
		},
		{
			name:    "access key without secret",
			modify:  func(c *Config) { c.S3AccessKeyID = "AKIA" },
			wantErr: true,
		},
		{
			name: "static keys",
			modify: func(c *Config) {
				c.S3AccessKeyID = "AKIA"
				c.S3SecretAccessKey = "secret"
			},
		},
		{
			name:    "bad endpoint",
			modify:  func(c *Config) { c.S3Endpoint = "not a url" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr = %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalid) {
				t.Errorf("expected ErrInvalid, got %v", err)
			}
		})
	}
}

func TestValidateMessageUsesYamlKey(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TickInterval = 0

	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "tick_interval must be at least 1") {
		t.Errorf("unexpected error message: %v", err)
	}
}

func TestValidateFileTargetWithSplit(t *testing.T) {
	target := filepath.Join(t.TempDir(), "out.mp3")
	if err := os.WriteFile(target, []byte("x"), 0600); err != nil {
		t.Fatal(err)
	}

	cfg := DefaultConfig()
	cfg.FileOut = target
	if err := cfg.Validate(); err != nil {
		t.Fatalf("file target without split should be valid: %v", err)
	}

	cfg.SplitSegmentDuration = 10
	if err := cfg.Validate(); !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid, got %v", err)
	}

	// a file that does not exist yet is still a file target
	cfg.FileOut = filepath.Join(filepath.Dir(target), "new.mp3")
	if err := cfg.Validate(); !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid for a missing file target, got %v", err)
	}

	cfg.FileOut = filepath.Dir(target)
	if err := cfg.Validate(); err != nil {
		t.Errorf("directory target with split should be valid: %v", err)
	}
}

func TestValidateInputs(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()

	if err := cfg.ValidateInputs(nil); !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid for no inputs, got %v", err)
	}
	if err := cfg.ValidateInputs([]string{"a.mp3", "b.mp3"}); err != nil {
		t.Errorf("several inputs without file_out should be valid: %v", err)
	}

	cfg.FileOut = filepath.Join(dir, "single.mp3")
	if err := cfg.ValidateInputs([]string{"a.mp3"}); err != nil {
		t.Errorf("single input with file target should be valid: %v", err)
	}
	if err := cfg.ValidateInputs([]string{"a.mp3", "b.mp3"}); !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid for several inputs and a file target, got %v", err)
	}

	cfg.FileOut = dir
	if err := cfg.ValidateInputs([]string{"a.mp3", "b.mp3"}); err != nil {
		t.Errorf("several inputs with directory target should be valid: %v", err)
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "intervals.yaml")

	content := `title_format: "{title} by {artist}"
tick_format: "{minutes_digits}"
tick_interval: 10
tick_offset: 2
speech_volume_factor: 1.5
split_segment_duration: 20
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfigFile(path)
	if err != nil {
		t.Fatalf("LoadConfigFile() error: %v", err)
	}

	if cfg.TitleFormat != "{title} by {artist}" {
		t.Errorf("TitleFormat = %q", cfg.TitleFormat)
	}
	if cfg.TickFormat != "{minutes_digits}" {
		t.Errorf("TickFormat = %q", cfg.TickFormat)
	}
	if cfg.TickInterval != 10 || cfg.TickOffset != 2 {
		t.Errorf("TickInterval/TickOffset = %d/%d, want 10/2", cfg.TickInterval, cfg.TickOffset)
	}
	if cfg.SpeechVolumeFactor != 1.5 {
		t.Errorf("SpeechVolumeFactor = %f, want 1.5", cfg.SpeechVolumeFactor)
	}
	if cfg.SplitSegmentDuration != 20 {
		t.Errorf("SplitSegmentDuration = %d, want 20", cfg.SplitSegmentDuration)
	}
	if cfg.SpeechSpeed != 150 {
		t.Errorf("unset SpeechSpeed should keep default 150, got %d", cfg.SpeechSpeed)
	}
	if cfg.Name != "intervals" {
		t.Errorf("Name = %q, want %q", cfg.Name, "intervals")
	}
}

func TestLoadConfigFileNotFound(t *testing.T) {
	if _, err := LoadConfigFile("/nonexistent/path/config.yaml"); err == nil {
		t.Fatal("expected error for explicit missing config file")
	}
}

func TestSaveConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "saved.yaml")

	cfg := DefaultConfig()
	cfg.TickInterval = 3
	if err := SaveConfigFile(cfg, path, false); err != nil {
		t.Fatalf("SaveConfigFile() error: %v", err)
	}
	if err := SaveConfigFile(cfg, path, false); err == nil {
		t.Error("expected refusal to overwrite without force")
	}
	if err := SaveConfigFile(cfg, path, true); err != nil {
		t.Errorf("forced save failed: %v", err)
	}

	loaded, err := LoadConfigFile(path)
	if err != nil {
		t.Fatalf("LoadConfigFile() error: %v", err)
	}
	if loaded.TickInterval != 3 {
		t.Errorf("TickInterval = %d, want 3", loaded.TickInterval)
	}
}

func TestApplyEnv(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TickOffset = 2

	l := envconfig.MapLookuper(map[string]string{
		"VOICESTAMP_TICK_INTERVAL":        "10",
		"VOICESTAMP_SPEECH_VOLUME_FACTOR": "0.5",
		"VOICESTAMP_DRY_RUN":              "true",
		"TICK_FORMAT":                     "ignored without prefix",
	})
	if err := applyEnv(context.Background(), &cfg, l); err != nil {
		t.Fatalf("applyEnv() error: %v", err)
	}

	if cfg.TickInterval != 10 {
		t.Errorf("TickInterval = %d, want 10", cfg.TickInterval)
	}
	if cfg.SpeechVolumeFactor != 0.5 {
		t.Errorf("SpeechVolumeFactor = %f, want 0.5", cfg.SpeechVolumeFactor)
	}
	if !cfg.DryRun {
		t.Error("DryRun should be set from environment")
	}
	if cfg.TickOffset != 2 {
		t.Errorf("TickOffset without env var should be kept, got %d", cfg.TickOffset)
	}
	if cfg.TickFormat != "{minutes} minutes" {
		t.Errorf("TickFormat = %q, want default", cfg.TickFormat)
	}
}

func TestApplyEnvBadValue(t *testing.T) {
	cfg := DefaultConfig()
	l := envconfig.MapLookuper(map[string]string{"VOICESTAMP_TICK_INTERVAL": "often"})
	if err := applyEnv(context.Background(), &cfg, l); !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid, got %v", err)
	}
}

func TestExpandHome(t *testing.T) {
	home := homeDir()
	tests := []struct {
		input string
		want  string
	}{
		{"~/Music", filepath.Join(home, "Music")},
		{"/absolute/path", "/absolute/path"},
		{"relative/path", "relative/path"},
		{"~notslash", "~notslash"},
	}

	for _, tt := range tests {
		got := ExpandHome(tt.input)
		if got != tt.want {
			t.Errorf("ExpandHome(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestS3Settings(t *testing.T) {
	cfg := DefaultConfig()
	cfg.S3Bucket = "stamped"
	cfg.S3Region = "eu-west-1"
	cfg.S3Prefix = "runs/"
	cfg.S3Endpoint = "http://localhost:9000"
	cfg.S3AccessKeyID = "AKIA"
	cfg.S3SecretAccessKey = "secret"

	got := cfg.S3()
	if got.Bucket != "stamped" || got.Region != "eu-west-1" || got.Prefix != "runs/" || got.Endpoint != "http://localhost:9000" {
		t.Errorf("S3() = %+v", got)
	}
	if got.AccessKeyID != "AKIA" || got.SecretAccessKey != "secret" {
		t.Errorf("static keys not carried over: %+v", got)
	}
}

func TestFindConfigFileDefaultPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	if got := FindConfigFile(); got != "" {
		t.Fatalf("FindConfigFile() = %q, want none", got)
	}

	path := GetDefaultConfigPath()
	if err := SaveConfigFile(DefaultConfig(), path, false); err != nil {
		t.Fatal(err)
	}
	if got := FindConfigFile(); got != path {
		t.Errorf("FindConfigFile() = %q, want %q", got, path)
	}
}
