package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/sethvargo/go-envconfig"
	"gopkg.in/yaml.v3"

	"voicestamp/internal/output"
	"voicestamp/internal/storage"
	"voicestamp/pkg/utils"
)

// ErrInvalid wraps every configuration error. Nothing is processed when it is returned.
var ErrInvalid = errors.New("invalid configuration")

// EnvPrefix prefixes every environment override, e.g. VOICESTAMP_TICK_INTERVAL.
const EnvPrefix = "VOICESTAMP_"

// Config contains the program configuration
type Config struct {
	TitleFormat        string  `yaml:"title_format" env:"TITLE_FORMAT, overwrite" validate:"required"`
	TickFormat         string  `yaml:"tick_format" env:"TICK_FORMAT, overwrite"`
	TickInterval       int     `yaml:"tick_interval" env:"TICK_INTERVAL, overwrite" validate:"min=1"`
	TickOffset         int     `yaml:"tick_offset" env:"TICK_OFFSET, overwrite" validate:"min=1"`
	TickAdd            int     `yaml:"tick_add" env:"TICK_ADD, overwrite"`
	SpeechVolumeFactor float64 `yaml:"speech_volume_factor" env:"SPEECH_VOLUME_FACTOR, overwrite" validate:"gt=0"`
	SpeechSpeed        int     `yaml:"speech_speed" env:"SPEECH_SPEED, overwrite" validate:"min=80,max=450"`

	SplitSegmentDuration int `yaml:"split_segment_duration" env:"SPLIT_SEGMENT_DURATION, overwrite" validate:"min=0"`
	ParallelSegments     int `yaml:"parallel_segments" env:"PARALLEL_SEGMENTS, overwrite" validate:"min=1,max=10"`

	FileOutFormat  string `yaml:"file_out_format" env:"FILE_OUT_FORMAT, overwrite" validate:"required"`
	FileOut        string `yaml:"file_out" env:"FILE_OUT, overwrite"`
	ForceOverwrite bool   `yaml:"force_overwrite" env:"FORCE_OVERWRITE, overwrite"`

	DryRun    bool `yaml:"dry_run" env:"DRY_RUN, overwrite"`
	Debug     bool `yaml:"debug" env:"DEBUG, overwrite"`
	NoCleanup bool `yaml:"no_cleanup" env:"NO_CLEANUP, overwrite"`
	Verbose   bool `yaml:"verbose" env:"VERBOSE, overwrite"`
	Quiet     bool `yaml:"quiet" env:"QUIET, overwrite"`

	// Tool paths; empty means look them up in PATH.
	FFmpegPath    string `yaml:"ffmpeg_path,omitempty" env:"FFMPEG_PATH, overwrite"`
	SoxPath       string `yaml:"sox_path,omitempty" env:"SOX_PATH, overwrite"`
	ESpeakPath    string `yaml:"espeak_path,omitempty" env:"ESPEAK_PATH, overwrite"`
	NormalizePath string `yaml:"normalize_path,omitempty" env:"NORMALIZE_PATH, overwrite"`

	// Optional publishing of finished files.
	S3Bucket   string `yaml:"s3_bucket,omitempty" env:"S3_BUCKET, overwrite"`
	S3Region   string `yaml:"s3_region,omitempty" env:"S3_REGION, overwrite" validate:"required_with=S3Bucket"`
	S3Prefix   string `yaml:"s3_prefix,omitempty" env:"S3_PREFIX, overwrite"`
	S3Endpoint string `yaml:"s3_endpoint,omitempty" env:"S3_ENDPOINT, overwrite" validate:"omitempty,url"`
	// Static keys; both empty means the default AWS credential chain.
	S3AccessKeyID     string `yaml:"s3_access_key_id,omitempty" env:"S3_ACCESS_KEY_ID, overwrite" validate:"required_with=S3SecretAccessKey"`
	S3SecretAccessKey string `yaml:"s3_secret_access_key,omitempty" env:"S3_SECRET_ACCESS_KEY, overwrite" validate:"required_with=S3AccessKeyID"`

	// Name is the base name of the loaded config file, empty for defaults.
	Name string `yaml:"-"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		TitleFormat:        "{title}",
		TickFormat:         "{minutes} minutes",
		TickInterval:       5,
		TickOffset:         5,
		SpeechVolumeFactor: 1.0,
		SpeechSpeed:        150,
		ParallelSegments:   1,
		FileOutFormat:      output.DefaultFormat,
	}
}

// LoadConfigFile loads configuration from a YAML file.
// If path is empty, searches standard locations. Returns defaults if no file found.
// An explicitly given path that does not exist is an error.
func LoadConfigFile(path string) (Config, error) {
	cfg := DefaultConfig()

	explicit := path != ""
	if !explicit {
		path = FindConfigFile()
		if path == "" {
			return cfg, nil
		}
	}
	path = ExpandHome(path)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	cfg.FileOut = ExpandHome(cfg.FileOut)
	cfg.Name, _ = utils.SplitFileName(path)

	return cfg, nil
}

// ApplyEnv overrides fields from VOICESTAMP_* environment variables.
func ApplyEnv(ctx context.Context, cfg *Config) error {
	return applyEnv(ctx, cfg, envconfig.OsLookuper())
}

func applyEnv(ctx context.Context, cfg *Config, l envconfig.Lookuper) error {
	err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   cfg,
		Lookuper: envconfig.PrefixLookuper(EnvPrefix, l),
	})
	if err != nil {
		return fmt.Errorf("%w: environment: %v", ErrInvalid, err)
	}
	cfg.FileOut = ExpandHome(cfg.FileOut)
	return nil
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(homeDir(), path[2:])
	}
	return path
}

// FindConfigFile searches for a config file in standard locations
func FindConfigFile() string {
	home := homeDir()
	locations := []string{
		"./voicestamp.yaml",
		"./voicestamp.yml",
		GetDefaultConfigPath(),
		filepath.Join(home, ".config", "voicestamp", "config.yml"),
		filepath.Join(home, ".voicestamp.yaml"),
		filepath.Join(home, ".voicestamp.yml"),
	}

	for _, path := range locations {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// SaveConfigFile saves the configuration to a YAML file.
// An existing file is only replaced when force is set.
func SaveConfigFile(cfg Config, path string, force bool) error {
	path = ExpandHome(path)
	if utils.Exists(path) && !force {
		return fmt.Errorf("config file %s already exists, use force to overwrite", path)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GetDefaultConfigPath returns the default config file path
func GetDefaultConfigPath() string {
	return filepath.Join(homeDir(), ".config", "voicestamp", "config.yaml")
}

// GetDefaultLogPath returns the default log directory path
func GetDefaultLogPath() string {
	return filepath.Join(homeDir(), ".local", "share", "voicestamp", "logs")
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return os.Getenv("HOME")
	}
	return home
}

var (
	validate   = validator.New()
	configType = reflect.TypeOf(Config{})
)

// Validate checks field ranges and the output target.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, describe(fe))
			}
			return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(msgs, "; "))
		}
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	// a file target, existing or not, cannot hold several segments
	if c.FileOut != "" && c.SplitSegmentDuration > 0 && !utils.IsDir(c.FileOut) {
		return fmt.Errorf("%w: file_out must be a directory when splitting into segments", ErrInvalid)
	}

	return nil
}

// ValidateInputs checks the configuration against the files about to be processed.
func (c *Config) ValidateInputs(inputs []string) error {
	if len(inputs) == 0 {
		return fmt.Errorf("%w: no input files", ErrInvalid)
	}
	if len(inputs) > 1 && c.FileOut != "" && !utils.IsDir(c.FileOut) {
		return fmt.Errorf("%w: file_out must be an existing directory when processing several files", ErrInvalid)
	}
	return nil
}

// S3Enabled returns true if publishing to S3 is configured.
func (c *Config) S3Enabled() bool {
	return c.S3Bucket != ""
}

// S3 returns the storage settings for the uploader.
func (c *Config) S3() storage.S3Config {
	return storage.S3Config{
		Bucket:          c.S3Bucket,
		Region:          c.S3Region,
		Prefix:          c.S3Prefix,
		Endpoint:        c.S3Endpoint,
		AccessKeyID:     c.S3AccessKeyID,
		SecretAccessKey: c.S3SecretAccessKey,
	}
}

// describe turns a validator failure into a message naming the yaml key.
func describe(fe validator.FieldError) string {
	key := yamlKey(fe.StructField())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s cannot be empty", key)
	case "required_with":
		return fmt.Sprintf("%s is required when %s is set", key, yamlKey(fe.Param()))
	case "min":
		return fmt.Sprintf("%s must be at least %s, got %v", key, fe.Param(), fe.Value())
	case "max":
		return fmt.Sprintf("%s cannot exceed %s, got %v", key, fe.Param(), fe.Value())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s, got %v", key, fe.Param(), fe.Value())
	default:
		return fmt.Sprintf("%s is invalid (%s)", key, fe.Tag())
	}
}

func yamlKey(field string) string {
	if f, ok := configType.FieldByName(field); ok {
		if tag, _, _ := strings.Cut(f.Tag.Get("yaml"), ","); tag != "" && tag != "-" {
			return tag
		}
	}
	return field
}
