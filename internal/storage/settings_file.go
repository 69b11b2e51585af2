package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"eggtimer/internal/platform"
	"eggtimer/internal/preferences"
)

// ConfigEnv names the environment variable that points at an explicit
// settings file.
const ConfigEnv = "EGGTIMER_CONFIG"

var settingsFileNames = []string{"settings.yaml", "settings.toml"}

type fileSettings struct {
	Debug                bool   `mapstructure:"debug"`
	DesktopNotify        bool   `mapstructure:"desktop_notify"`
	NotifySummary        string `mapstructure:"notify_summary"`
	NotifyTimeoutSeconds int    `mapstructure:"notify_timeout_seconds"`
}

// LoadSettings reads user preferences for appName. The file named by
// EGGTIMER_CONFIG wins; otherwise settings.yaml and then settings.toml are
// tried in the user config directory. If no file exists, default settings
// are returned with an empty path.
func LoadSettings(appName string) (preferences.Settings, string, error) {
	if path := os.Getenv(ConfigEnv); path != "" {
		settings, err := LoadSettingsFile(path)
		return settings, path, err
	}

	configDir, err := platform.ConfigDir()
	if err != nil {
		return preferences.DefaultSettings(), "", err
	}

	for _, name := range settingsFileNames {
		path := filepath.Join(configDir, appName, name)
		settings, err := LoadSettingsFile(path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		return settings, path, err
	}
	return preferences.DefaultSettings(), "", nil
}

// LoadSettingsFile reads one settings file. The format follows the file
// extension: .yaml/.yml or .toml.
func LoadSettingsFile(path string) (preferences.Settings, error) {
	settings := preferences.DefaultSettings()

	rawData, err := os.ReadFile(path)
	if err != nil {
		return settings, fmt.Errorf("read settings file: %w", err)
	}

	values := make(map[string]any)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(rawData, &values); err != nil {
			return settings, fmt.Errorf("parse settings yaml: %w", err)
		}
	case ".toml":
		if err := toml.Unmarshal(rawData, &values); err != nil {
			return settings, fmt.Errorf("parse settings toml: %w", err)
		}
	default:
		return settings, fmt.Errorf("unsupported settings format %q", ext)
	}

	var fileData fileSettings
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &fileData,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return settings, fmt.Errorf("create settings decoder: %w", err)
	}
	if err := decoder.Decode(values); err != nil {
		return settings, fmt.Errorf("decode settings: %w", err)
	}

	applyFileSettings(&settings, fileData)
	return settings, nil
}

func applyFileSettings(settings *preferences.Settings, fileData fileSettings) {
	settings.Debug = fileData.Debug
	settings.DesktopNotify = fileData.DesktopNotify

	if summary := strings.TrimSpace(fileData.NotifySummary); summary != "" {
		settings.NotifySummary = summary
	}
	if fileData.NotifyTimeoutSeconds > 0 {
		settings.NotifyTimeout = time.Duration(fileData.NotifyTimeoutSeconds) * time.Second
	}
}
