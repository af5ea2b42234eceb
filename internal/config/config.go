package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	BackendFlickr       = "flickr"
	BackendGooglePhotos = "google_photos"
)

// FlickrConfig defines the configuration specific to Flickr.
type FlickrConfig struct {
	APIKey           string `mapstructure:"api_key"`
	APISecret        string `mapstructure:"api_secret"`
	OAuthToken       string `mapstructure:"oauth_token"`
	OAuthTokenSecret string `mapstructure:"oauth_token_secret"`

	// UserID is only used to build album links.
	UserID string `mapstructure:"user_id"`

	// CredentialsFile is an optional YAML file with the four credentials above.
	// Values already set in the config or environment take precedence.
	CredentialsFile string `mapstructure:"credentials_file"`
}

// GooglePhotosConfig defines the configuration specific to Google Photos.
type GooglePhotosConfig struct {
	ClientId     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	TokenFile    string `mapstructure:"token_file"`
}

// LimitsConfig bounds the remote calls and downloads.
type LimitsConfig struct {
	Quota            int           `mapstructure:"quota"`
	Window           time.Duration `mapstructure:"window"`
	MaxAttempts      int           `mapstructure:"max_attempts"`
	AlbumCacheTTL    time.Duration `mapstructure:"album_cache_ttl"`
	DownloadTimeout  time.Duration `mapstructure:"download_timeout"`
	MaxDownloadBytes int64         `mapstructure:"max_download_bytes"`
	CallsPerSecond   float64       `mapstructure:"calls_per_second"`
	Burst            int           `mapstructure:"burst"`
}

// AlbumdropConfig defines the configuration for Albumdrop.
type AlbumdropConfig struct {
	Backend    string `mapstructure:"backend"`
	ListenAddr string `mapstructure:"listen_addr"`
	StagingDir string `mapstructure:"staging_dir"`
	UserAgent  string `mapstructure:"user_agent"`

	Limits       LimitsConfig       `mapstructure:"limits"`
	Flickr       FlickrConfig       `mapstructure:"flickr"`
	GooglePhotos GooglePhotosConfig `mapstructure:"google_photos"`

	path string `mapstructure:"-"`
}

var defaults = map[string]any{
	"backend":     BackendFlickr,
	"listen_addr": ":8080",
	"staging_dir": "",
	"user_agent":  "albumdrop/1.0 (+https://github.com/ccfrost/albumdrop)",

	"limits.quota":              3600,
	"limits.window":             "1h",
	"limits.max_attempts":       3,
	"limits.album_cache_ttl":    "5m",
	"limits.download_timeout":   "30s",
	"limits.max_download_bytes": 200 * 1024 * 1024,
	"limits.calls_per_second":   5.0,
	"limits.burst":              10,

	"flickr.api_key":            "",
	"flickr.api_secret":         "",
	"flickr.oauth_token":        "",
	"flickr.oauth_token_secret": "",
	"flickr.user_id":            "",
	"flickr.credentials_file":   "",

	"google_photos.client_id":     "",
	"google_photos.client_secret": "",
	"google_photos.token_file":    "",
}

// Missing returns the names of the required Flickr settings that are empty.
func (c *FlickrConfig) Missing() []string {
	var missing []string
	if c.APIKey == "" {
		missing = append(missing, "flickr.api_key")
	}
	if c.APISecret == "" {
		missing = append(missing, "flickr.api_secret")
	}
	if c.OAuthToken == "" {
		missing = append(missing, "flickr.oauth_token")
	}
	if c.OAuthTokenSecret == "" {
		missing = append(missing, "flickr.oauth_token_secret")
	}
	return missing
}

// Missing returns the names of the required Google Photos settings that are empty.
func (c *GooglePhotosConfig) Missing() []string {
	var missing []string
	if c.ClientId == "" {
		missing = append(missing, "google_photos.client_id")
	}
	if c.ClientSecret == "" {
		missing = append(missing, "google_photos.client_secret")
	}
	if c.TokenFile == "" {
		missing = append(missing, "google_photos.token_file")
	}
	return missing
}

func (c *LimitsConfig) Validate() error {
	if c.Quota <= 0 {
		return fmt.Errorf("limits.quota must be positive, got %d", c.Quota)
	}
	if c.Window <= 0 {
		return fmt.Errorf("limits.window must be positive, got %s", c.Window)
	}
	if c.MaxAttempts <= 0 {
		return fmt.Errorf("limits.max_attempts must be positive, got %d", c.MaxAttempts)
	}
	if c.DownloadTimeout <= 0 {
		return fmt.Errorf("limits.download_timeout must be positive, got %s", c.DownloadTimeout)
	}
	if c.MaxDownloadBytes <= 0 {
		return fmt.Errorf("limits.max_download_bytes must be positive, got %d", c.MaxDownloadBytes)
	}
	return nil
}

// MissingSettings lists the required settings of the selected backend that are empty.
func (c *AlbumdropConfig) MissingSettings() []string {
	switch c.Backend {
	case BackendGooglePhotos:
		return c.GooglePhotos.Missing()
	default:
		return c.Flickr.Missing()
	}
}

// ValidateBasics checks everything but the backend credentials.
func (c *AlbumdropConfig) ValidateBasics() error {
	if c.Backend != BackendFlickr && c.Backend != BackendGooglePhotos {
		return fmt.Errorf("unknown backend %q (%s)", c.Backend, c.path)
	}
	if err := c.Limits.Validate(); err != nil {
		return fmt.Errorf("invalid limits config (%s): %w", c.path, err)
	}
	return nil
}

func (c *AlbumdropConfig) Validate() error {
	if err := c.ValidateBasics(); err != nil {
		return err
	}
	if missing := c.MissingSettings(); len(missing) > 0 {
		return fmt.Errorf("missing %s settings (%s): %s", c.Backend, c.path, strings.Join(missing, ", "))
	}
	return nil
}

// Path returns the config file that was read, or "" if none was.
func (c *AlbumdropConfig) Path() string {
	return c.path
}

// DefaultConfigPath returns the default path for the Albumdrop config file.
func DefaultConfigPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("unable to determine user config dir: %w", err)
	}
	return filepath.Join(dir, "albumdrop", "config.toml"), nil
}

// LoadConfig reads the config file and environment.
// An explicitly given path must exist; the default path is optional, so the
// service can be configured from the environment alone.
func LoadConfig(configPathFlag string) (AlbumdropConfig, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	// Allow users to override config values with environment variables.
	// In particular, may be desired for the API credentials.
	v.SetEnvPrefix("ALBUMDROP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	path := configPathFlag
	if path == "" {
		if defaultPath, err := DefaultConfigPath(); err == nil {
			if _, statErr := os.Stat(defaultPath); statErr == nil {
				path = defaultPath
			}
		}
	}
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			return AlbumdropConfig{}, fmt.Errorf("error reading (%s): %w", path, err)
		}
	}

	config := AlbumdropConfig{path: path}
	if err := v.Unmarshal(&config); err != nil {
		return AlbumdropConfig{}, fmt.Errorf("error unmarshaling (%s): %w", path, err)
	}
	if config.StagingDir == "" {
		config.StagingDir = filepath.Join(os.TempDir(), "albumdrop")
	}

	if config.Flickr.CredentialsFile != "" {
		if err := config.Flickr.mergeCredentialsFile(); err != nil {
			return AlbumdropConfig{}, err
		}
	}
	return config, nil
}

// flickrCredentials is the YAML layout of a Flickr credentials file.
type flickrCredentials struct {
	APIKey           string `yaml:"api_key"`
	APISecret        string `yaml:"api_secret"`
	OAuthToken       string `yaml:"oauth_token"`
	OAuthTokenSecret string `yaml:"oauth_token_secret"`
}

func (c *FlickrConfig) mergeCredentialsFile() error {
	data, err := os.ReadFile(c.CredentialsFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("flickr credentials file %s does not exist", c.CredentialsFile)
		}
		return fmt.Errorf("failed to read flickr credentials file: %w", err)
	}
	var creds flickrCredentials
	if err := yaml.Unmarshal(data, &creds); err != nil {
		return fmt.Errorf("failed to parse flickr credentials file %s: %w", c.CredentialsFile, err)
	}

	// Only fill what the config and environment left empty.
	if c.APIKey == "" {
		c.APIKey = creds.APIKey
	}
	if c.APISecret == "" {
		c.APISecret = creds.APISecret
	}
	if c.OAuthToken == "" {
		c.OAuthToken = creds.OAuthToken
	}
	if c.OAuthTokenSecret == "" {
		c.OAuthTokenSecret = creds.OAuthTokenSecret
	}
	return nil
}
