package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

var configLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	configLogger = l
}

// Config represents the complete configuration structure
type Config struct {
	Site    SiteConfig    `yaml:"site"`
	Server  ServerConfig  `yaml:"server"`
	Store   StoreConfig   `yaml:"store"`
	Push    PushConfig    `yaml:"push"`
	Editor  EditorConfig  `yaml:"editor"`
	Widget  WidgetConfig  `yaml:"widget"`
	Media   MediaConfig   `yaml:"media"`
	Render  RenderConfig  `yaml:"render"`
	Logging LoggingConfig `yaml:"logging"`
}

type LoggingConfig struct {
	Level string `yaml:"level" default:"info"`
}

type SiteConfig struct {
	Name string `yaml:"name" default:"Inkwell"`
}

type ServerConfig struct {
	Host           string   `yaml:"host" default:"0.0.0.0"`
	Port           string   `yaml:"port" default:"12600"`
	AllowedOrigins []string `yaml:"allowed_origins" default:"*"`
}

type StoreConfig struct {
	// Backend is one of memory, sqlite, redis or file.
	Backend string       `yaml:"backend" default:"sqlite"`
	Key     string       `yaml:"key" default:"socialHubPosts"`
	SQLite  SQLiteConfig `yaml:"sqlite"`
	Redis   RedisConfig  `yaml:"redis"`
	File    FileConfig   `yaml:"file"`
}

type SQLiteConfig struct {
	Path        string `yaml:"path" default:"./inkwell.db"`
	Compression string `yaml:"compression" default:"zstd"`
	// PollInterval picks up writes made by other processes sharing the file.
	PollInterval time.Duration `yaml:"poll_interval" default:"2s"`
}

type RedisConfig struct {
	URL    string `yaml:"url" default:"redis://localhost:6379/0"`
	Prefix string `yaml:"prefix" default:"inkwell:"`
}

type FileConfig struct {
	Dir string `yaml:"dir" default:"./data"`
}

type PushConfig struct {
	// Backend is memory (single process) or redis.
	Backend string `yaml:"backend" default:"memory"`
	// Origin stamps outgoing messages; AllowedOrigins filters incoming ones.
	Origin         string   `yaml:"origin" default:"inkwell-editor"`
	AllowedOrigins []string `yaml:"allowed_origins" default:"inkwell-editor"`
}

type EditorConfig struct {
	Enabled       bool    `yaml:"enabled" default:"true"`
	Autosave      bool    `yaml:"autosave" default:"true"`
	SurfaceWidth  float64 `yaml:"surface_width" default:"800"`
	MinImageWidth float64 `yaml:"min_image_width" default:"50"`
}

type WidgetConfig struct {
	ID           string        `yaml:"id" default:"social-hub"`
	PollInterval time.Duration `yaml:"poll_interval" default:"5s"`
}

type MediaConfig struct {
	// Backend is fs or s3.
	Backend       string   `yaml:"backend" default:"fs"`
	Dir           string   `yaml:"dir" default:"./uploads"`
	URLPrefix     string   `yaml:"url_prefix" default:"/uploads/"`
	MaxUploadSize int      `yaml:"max_upload_size" default:"10485760"`
	S3            S3Config `yaml:"s3"`
}

type S3Config struct {
	Bucket          string `yaml:"bucket" default:""`
	Endpoint        string `yaml:"endpoint" default:""`
	Region          string `yaml:"region" default:"auto"`
	AccessKeyID     string `yaml:"access_key_id" default:""`
	AccessKeySecret string `yaml:"access_key_secret" default:""`
	PublicURL       string `yaml:"public_url" default:""`
}

type RenderConfig struct {
	Renderer    string `yaml:"renderer" default:"mmark"`
	SyntaxTheme string `yaml:"syntax_theme" default:"gruvbox"`
}

var AppConfig *Config

// Default returns a configuration with every default applied.
func Default() *Config {
	config := &Config{}
	applyDefaults(config)
	return config
}

func LoadConfig(path string) error {
	config := Default()

	// Try to read and parse the config file
	data, err := os.ReadFile(path)
	if err != nil {
		// If file doesn't exist, just use defaults
		configLogger.Info().Str("path", path).Msg("Config file not found, using defaults")
		config.ApplyEnv()
		AppConfig = config
		return nil
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	config.ApplyEnv()
	if err := config.Validate(); err != nil {
		return err
	}

	AppConfig = config
	return nil
}

// Environment variables override the file. Secrets usually come from .env.
const (
	EnvPort              = "INKWELL_PORT"
	EnvRedisURL          = "INKWELL_REDIS_URL"
	EnvS3AccessKeyID     = "INKWELL_S3_ACCESS_KEY_ID"
	EnvS3AccessKeySecret = "INKWELL_S3_ACCESS_KEY_SECRET"
)

func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvPort); v != "" {
		c.Server.Port = v
	}
	if v := os.Getenv(EnvRedisURL); v != "" {
		c.Store.Redis.URL = v
	}
	if v := os.Getenv(EnvS3AccessKeyID); v != "" {
		c.Media.S3.AccessKeyID = v
	}
	if v := os.Getenv(EnvS3AccessKeySecret); v != "" {
		c.Media.S3.AccessKeySecret = v
	}
}

func (c *Config) Validate() error {
	switch c.Store.Backend {
	case "memory", "sqlite", "redis", "file":
	default:
		return fmt.Errorf("unsupported store backend %q", c.Store.Backend)
	}
	switch c.Push.Backend {
	case "memory", "redis":
	default:
		return fmt.Errorf("unsupported push backend %q", c.Push.Backend)
	}
	switch c.Media.Backend {
	case "fs", "s3":
	default:
		return fmt.Errorf("unsupported media backend %q", c.Media.Backend)
	}
	if c.Widget.PollInterval <= 0 {
		return fmt.Errorf("widget poll interval must be positive, got %s", c.Widget.PollInterval)
	}
	return nil
}

func ApplyDefaults(config interface{}) {
	applyDefaults(config)
}

var durationType = reflect.TypeOf(time.Duration(0))

func applyDefaults(config interface{}) {
	v := reflect.ValueOf(config)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}

	if v.Kind() != reflect.Struct {
		return
	}

	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldType := t.Field(i)

		if !field.IsValid() || !field.CanSet() {
			continue
		}

		// Recursively apply defaults to nested structs
		if field.Kind() == reflect.Struct {
			applyDefaults(field.Addr().Interface())
			continue
		}

		defaultValue := fieldType.Tag.Get("default")
		if defaultValue == "" {
			continue
		}

		if field.Type() == durationType {
			if val, err := time.ParseDuration(defaultValue); err == nil {
				field.SetInt(int64(val))
			}
			continue
		}

		switch field.Kind() {
		case reflect.String:
			field.SetString(defaultValue)
		case reflect.Bool:
			if val, err := strconv.ParseBool(defaultValue); err == nil {
				field.SetBool(val)
			}
		case reflect.Int, reflect.Int64:
			if val, err := strconv.ParseInt(defaultValue, 10, 64); err == nil {
				field.SetInt(val)
			}
		case reflect.Float64:
			if val, err := strconv.ParseFloat(defaultValue, 64); err == nil {
				field.SetFloat(val)
			}
		case reflect.Slice:
			if field.Len() == 0 && field.Type().Elem().Kind() == reflect.String {
				parts := strings.Split(defaultValue, ",")
				slice := reflect.MakeSlice(field.Type(), len(parts), len(parts))
				for j, part := range parts {
					slice.Index(j).SetString(strings.TrimSpace(part))
				}
				field.Set(slice)
			}
		default:
			configLogger.Warn().
				Str("field_name", fieldType.Name).
				Str("field_type", field.Kind().String()).
				Msg("Unsupported field type for default value")
		}
	}
}
