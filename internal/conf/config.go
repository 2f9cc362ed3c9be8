// config.go: loading and access for WasteNet-Go application settings
package conf

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/viper"
)

// Log rotation types
const (
	RotationDaily  = "daily"
	RotationWeekly = "weekly"
	RotationSize   = "size"
)

// LogConfig defines the configuration for a log file
type LogConfig struct {
	Enabled     bool         // true to enable this log
	Path        string       // path to log file
	Rotation    string       // rotation type
	MaxSize     int64        // max size in bytes for RotationSize
	RotationDay time.Weekday // day of the week for RotationWeekly
}

// MainSettings contains the main application settings
type MainSettings struct {
	Name string    // name of the node, also used as the MQTT client id
	Log  LogConfig // default log configuration
}

// ModelSettings contains the TFLite classification model settings
type ModelSettings struct {
	Path      string // path to the .tflite model artifact
	InputSize int    // square input resolution expected by the model
	Threads   int    // interpreter thread count, 0 for automatic
}

// ClassifierSettings contains classification behavior settings
type ClassifierSettings struct {
	FallbackThresholdBytes int64 // byte-size cutoff for the fallback heuristic
}

// CaptureSettings describes the camera device and image storage
type CaptureSettings struct {
	BinID string // default bin identifier when the device sends none
	Path  string // directory for stored capture images
}

// SQLiteSettings contains SQLite backend settings
type SQLiteSettings struct {
	Enabled bool
	Path    string // path to the database file
}

// MySQLSettings contains MySQL backend settings
type MySQLSettings struct {
	Enabled  bool
	Username string
	Password string
	Database string
	Host     string
	Port     string
}

// OutputSettings selects and configures the disposal record store
type OutputSettings struct {
	SQLite SQLiteSettings
	MySQL  MySQLSettings
}

// WebServerSettings contains the HTTP server settings
type WebServerSettings struct {
	Enabled bool
	Port    string
	Debug   bool
}

// MQTTSettings contains the MQTT event publishing settings
type MQTTSettings struct {
	Enabled  bool
	Broker   string // broker URL, e.g. tcp://localhost:1883
	Topic    string
	Username string
	Password string
	Retain   bool
}

// Settings is the root configuration structure
type Settings struct {
	Debug bool

	Main       MainSettings
	Model      ModelSettings
	Classifier ClassifierSettings
	Capture    CaptureSettings
	Output     OutputSettings
	WebServer  WebServerSettings
	MQTT       MQTTSettings
}

// settingsInstance is the current settings instance
var (
	settingsInstance *Settings
	settingsMutex    sync.RWMutex
)

// Load reads the configuration file and environment variables into Settings.
func Load() (*Settings, error) {
	settingsMutex.Lock()
	defer settingsMutex.Unlock()

	settings := &Settings{}

	if err := initViper(); err != nil {
		return nil, fmt.Errorf("error initializing viper: %w", err)
	}

	if err := viper.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("error unmarshaling config into struct: %w", err)
	}

	if err := ValidateSettings(settings); err != nil {
		return nil, fmt.Errorf("error validating settings: %w", err)
	}

	settingsInstance = settings
	return settingsInstance, nil
}

// initViper initializes viper with default values and reads the configuration file.
func initViper() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	configPaths, err := GetDefaultConfigPaths()
	if err != nil {
		return fmt.Errorf("error getting default config paths: %w", err)
	}
	for _, path := range configPaths {
		viper.AddConfigPath(path)
	}

	// Set default values for each configuration parameter
	// function defined in defaults.go
	setDefaultConfig()

	err = viper.ReadInConfig()
	if err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			// Config file not found, create config with defaults
			return createDefaultConfig()
		}
		return fmt.Errorf("fatal error reading config file: %w", err)
	}

	return nil
}

// GetDefaultConfigPaths returns the list of directories searched for config.yaml,
// in priority order.
func GetDefaultConfigPaths() ([]string, error) {
	paths := []string{"."}

	homeDir, err := os.UserHomeDir()
	if err == nil {
		paths = append(paths, filepath.Join(homeDir, ".config", "wastenet"))
	}

	return paths, nil
}

// createDefaultConfig creates a default config file and writes it to the default config path
func createDefaultConfig() error {
	configPaths, err := GetDefaultConfigPaths()
	if err != nil {
		return fmt.Errorf("error getting default config paths: %w", err)
	}
	configPath := filepath.Join(configPaths[0], "config.yaml")

	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}
	if err := os.WriteFile(configPath, []byte(getDefaultConfig()), 0o644); err != nil {
		return fmt.Errorf("error writing default config file: %w", err)
	}

	return viper.ReadInConfig()
}

// getDefaultConfig returns the default configuration file contents.
func getDefaultConfig() string {
	return `# WasteNet-Go configuration

debug: false

main:
  name: WasteNet-Go
  log:
    enabled: true
    path: wastenet.log
    rotation: daily
    maxsize: 1048576

model:
  path: model/wastenet_v1.tflite
  inputsize: 224
  threads: 0

classifier:
  fallbackthresholdbytes: 4000

capture:
  binid: ESP32CAM-01
  path: uploads/

output:
  sqlite:
    enabled: true
    path: wastenet.db
  mysql:
    enabled: false
    username: wastenet
    password: wastenet
    database: wastenet
    host: localhost
    port: "3306"

webserver:
  enabled: true
  port: "8080"
  debug: false

mqtt:
  enabled: false
  broker: tcp://localhost:1883
  topic: wastenet/disposals
  retain: false
`
}

// Setting returns the current settings instance, loading the configuration
// on first use.
func Setting() *Settings {
	settingsMutex.RLock()
	instance := settingsInstance
	settingsMutex.RUnlock()
	if instance != nil {
		return instance
	}

	instance, err := Load()
	if err != nil {
		panic(fmt.Sprintf("error loading settings: %v", err))
	}
	return instance
}
