// Package config loads the engine-level tunables the host process starts
// with: default FPS ceiling, default bitrate, STUN/ICE servers, and log
// level/format. It is distinct from ScreenShareConfig, which the host
// builds programmatically per call to StartScreenShare and never persists.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/viper"
)

type Config struct {
	DefaultFPSCeiling    int      `mapstructure:"default_fps_ceiling"`
	DefaultBitrateKbps   int      `mapstructure:"default_bitrate_kbps"`
	MaxBitrateKbps       int      `mapstructure:"max_bitrate_kbps"`
	PreferHardwareEncode bool     `mapstructure:"prefer_hardware_encode"`
	ICEServers           []string `mapstructure:"ice_servers"`
	SignalingServerURL   string   `mapstructure:"signaling_server_url"`

	LogLevel      string `mapstructure:"log_level"`
	LogFormat     string `mapstructure:"log_format"`
	LogFile       string `mapstructure:"log_file"`
	LogMaxSizeMB  int    `mapstructure:"log_max_size_mb"`
	LogMaxBackups int    `mapstructure:"log_max_backups"`

	CaptureChannelDepth int `mapstructure:"capture_channel_depth"`
	AudioChannelDepth   int `mapstructure:"audio_channel_depth"`
}

func Default() *Config {
	return &Config{
		DefaultFPSCeiling:    30,
		DefaultBitrateKbps:   4000,
		MaxBitrateKbps:       12000,
		PreferHardwareEncode: true,
		ICEServers:           []string{"stun:stun.l.google.com:19302"},
		LogLevel:             "info",
		LogFormat:            "text",
		LogMaxSizeMB:         50,
		LogMaxBackups:        3,
		CaptureChannelDepth:  2,
		AudioChannelDepth:    32,
	}
}

// Load reads cfgFile (or the default search path) through viper with the
// BREEZE_ENGINE environment prefix, unmarshals onto Default(), and runs
// ValidateTiered: fatals block startup, warnings are logged; range
// warnings leave the field at its clamped value, log_level and log_format
// warnings leave it unchanged.
func Load(cfgFile string) (*Config, error) {
	cfg := Default()

	v := viper.New()
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("engine")
		v.SetConfigType("yaml")
		v.AddConfigPath(configDir())
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("BREEZE_ENGINE")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}

	result := cfg.ValidateTiered()
	for _, err := range result.Warnings {
		slog.Warn("config validation", "error", err)
	}
	if result.HasFatals() {
		for _, err := range result.Fatals {
			slog.Error("config validation fatal", "error", err)
		}
		return nil, fmt.Errorf("config has fatal validation errors: %v", result.Fatals[0])
	}

	return cfg, nil
}

// Save writes cfg to cfgFile (or the default path), restricted to
// owner-only access since it may carry a signaling server URL with an
// embedded credential.
func Save(cfg *Config, cfgFile string) error {
	v := viper.New()
	v.Set("default_fps_ceiling", cfg.DefaultFPSCeiling)
	v.Set("default_bitrate_kbps", cfg.DefaultBitrateKbps)
	v.Set("max_bitrate_kbps", cfg.MaxBitrateKbps)
	v.Set("prefer_hardware_encode", cfg.PreferHardwareEncode)
	v.Set("ice_servers", cfg.ICEServers)
	v.Set("signaling_server_url", cfg.SignalingServerURL)
	v.Set("log_level", cfg.LogLevel)
	v.Set("log_format", cfg.LogFormat)
	v.Set("log_file", cfg.LogFile)
	v.Set("log_max_size_mb", cfg.LogMaxSizeMB)
	v.Set("log_max_backups", cfg.LogMaxBackups)
	v.Set("capture_channel_depth", cfg.CaptureChannelDepth)
	v.Set("audio_channel_depth", cfg.AudioChannelDepth)

	cfgPath := cfgFile
	if cfgPath == "" {
		cfgPath = filepath.Join(configDir(), "engine.yaml")
	}
	if dir := filepath.Dir(cfgPath); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return err
		}
	}
	if err := v.WriteConfigAs(cfgPath); err != nil {
		return err
	}
	return os.Chmod(cfgPath, 0600)
}

func configDir() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("ProgramData"), "Breeze")
	case "darwin":
		return "/Library/Application Support/Breeze"
	default:
		return "/etc/breeze"
	}
}
