package config

import (
	"fmt"
	"net/url"
	"strings"
)

var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"warning": true,
	"error": true,
}

// ValidationResult splits validation failures into Fatals (block startup)
// and Warnings (logged; range warnings clamp their field in place, while
// log_level and log_format warnings leave the field as it was set).
type ValidationResult struct {
	Fatals   []error
	Warnings []error
}

func (r ValidationResult) HasFatals() bool { return len(r.Fatals) > 0 }

func (r ValidationResult) AllErrors() []error {
	all := make([]error, 0, len(r.Fatals)+len(r.Warnings))
	all = append(all, r.Fatals...)
	all = append(all, r.Warnings...)
	return all
}

// ValidateTiered checks the config for invalid values. A value that would
// make the engine fail outright (a malformed signaling URL, a STUN server
// with no scheme) is fatal. A value that is merely out of the sane range
// (FPS ceiling, channel depths) is a warning and gets clamped in place so
// the engine still starts.
func (c *Config) ValidateTiered() ValidationResult {
	var result ValidationResult

	if c.SignalingServerURL != "" {
		u, err := url.Parse(c.SignalingServerURL)
		if err != nil {
			result.Fatals = append(result.Fatals, fmt.Errorf("signaling_server_url %q is not a valid URL: %w", c.SignalingServerURL, err))
		} else {
			switch u.Scheme {
			case "http", "https", "ws", "wss":
			default:
				result.Fatals = append(result.Fatals, fmt.Errorf("signaling_server_url scheme must be http/https/ws/wss, got %q", u.Scheme))
			}
		}
	}

	for _, server := range c.ICEServers {
		if !strings.HasPrefix(server, "stun:") && !strings.HasPrefix(server, "turn:") && !strings.HasPrefix(server, "turns:") {
			result.Fatals = append(result.Fatals, fmt.Errorf("ice_servers entry %q must start with stun:, turn:, or turns:", server))
		}
	}

	if c.DefaultFPSCeiling < 1 {
		result.Warnings = append(result.Warnings, fmt.Errorf("default_fps_ceiling %d is below minimum 1, clamping", c.DefaultFPSCeiling))
		c.DefaultFPSCeiling = 1
	} else if c.DefaultFPSCeiling > 60 {
		result.Warnings = append(result.Warnings, fmt.Errorf("default_fps_ceiling %d exceeds maximum 60, clamping", c.DefaultFPSCeiling))
		c.DefaultFPSCeiling = 60
	}

	if c.DefaultBitrateKbps < 100 {
		result.Warnings = append(result.Warnings, fmt.Errorf("default_bitrate_kbps %d is below minimum 100, clamping", c.DefaultBitrateKbps))
		c.DefaultBitrateKbps = 100
	}
	if c.MaxBitrateKbps < c.DefaultBitrateKbps {
		result.Warnings = append(result.Warnings, fmt.Errorf("max_bitrate_kbps %d is below default_bitrate_kbps %d, raising to match", c.MaxBitrateKbps, c.DefaultBitrateKbps))
		c.MaxBitrateKbps = c.DefaultBitrateKbps
	}

	if c.LogLevel != "" && !validLogLevels[strings.ToLower(c.LogLevel)] {
		result.Warnings = append(result.Warnings, fmt.Errorf("log_level %q is not valid (use debug, info, warn, error)", c.LogLevel))
	}
	if c.LogFormat != "" && c.LogFormat != "text" && c.LogFormat != "json" {
		result.Warnings = append(result.Warnings, fmt.Errorf("log_format %q is not valid (use text or json)", c.LogFormat))
	}

	if c.CaptureChannelDepth < 1 {
		result.Warnings = append(result.Warnings, fmt.Errorf("capture_channel_depth %d is below minimum 1, clamping", c.CaptureChannelDepth))
		c.CaptureChannelDepth = 1
	} else if c.CaptureChannelDepth > 16 {
		result.Warnings = append(result.Warnings, fmt.Errorf("capture_channel_depth %d exceeds maximum 16, clamping", c.CaptureChannelDepth))
		c.CaptureChannelDepth = 16
	}

	if c.AudioChannelDepth < 1 {
		result.Warnings = append(result.Warnings, fmt.Errorf("audio_channel_depth %d is below minimum 1, clamping", c.AudioChannelDepth))
		c.AudioChannelDepth = 1
	} else if c.AudioChannelDepth > 256 {
		result.Warnings = append(result.Warnings, fmt.Errorf("audio_channel_depth %d exceeds maximum 256, clamping", c.AudioChannelDepth))
		c.AudioChannelDepth = 256
	}

	return result
}
