// Package config loads rover thresholds and server settings from a config
// file and ROVER_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cast"
	"github.com/spf13/viper"

	"github.com/teslashibe/go-rover/pkg/rover"
	"github.com/teslashibe/go-rover/pkg/vision"
)

// EnvPrefix is prepended to every environment override, e.g. ROVER_MAX_VELOCITY.
const EnvPrefix = "ROVER"

// DefaultPort is the bridge listen port.
const DefaultPort = "4567"

var (
	// ErrMissingThreshold is returned when a required threshold is absent.
	ErrMissingThreshold = errors.New("config: missing required threshold")

	// ErrInvalidThreshold is returned when a value cannot be parsed or is out of range.
	ErrInvalidThreshold = errors.New("config: invalid threshold")
)

// Required thresholds have no defaults.
var requiredFloats = []string{"max_velocity", "throttle_set", "brake_set"}
var requiredInts = []string{"stop_forward", "go_forward", "stuck_time_limit", "rock_pixel_threshold"}

// Config is everything cmd/rover needs to start.
type Config struct {
	Rover    rover.Config
	Port     string
	LogLevel string
}

// New returns a viper instance with defaults and environment overrides
// installed.
func New() *viper.Viper {
	v := viper.New()

	def := rover.DefaultConfig()
	v.SetDefault("nav_threshold", rgbSlice(def.Perception.Navigable))
	v.SetDefault("sample_low", rgbSlice(def.Perception.SampleLow))
	v.SetDefault("sample_high", rgbSlice(def.Perception.SampleHigh))
	v.SetDefault("sample_grace_frames", def.Perception.GraceFrames)
	v.SetDefault("map_size", def.MapSize)
	v.SetDefault("map_scale", def.MapScale)
	v.SetDefault("dst_size", def.DstSize)
	v.SetDefault("bottom_offset", def.BottomOffset)
	v.SetDefault("image_width", def.ImageWidth)
	v.SetDefault("image_height", def.ImageHeight)

	v.SetDefault("server.port", DefaultPort)
	v.SetDefault("log_level", "info")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads path (any format viper understands, chosen by extension) and
// applies environment overrides. An empty path uses the environment only.
func Load(path string) (*Config, error) {
	v := New()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}
	return FromViper(v)
}

// FromViper builds the configuration from an already populated viper
// instance. Every required threshold must be set.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := rover.DefaultConfig()

	floats := make(map[string]float64, len(requiredFloats))
	for _, key := range requiredFloats {
		f, err := requireFloat(v, key)
		if err != nil {
			return nil, err
		}
		floats[key] = f
	}
	ints := make(map[string]int, len(requiredInts))
	for _, key := range requiredInts {
		n, err := requireInt(v, key)
		if err != nil {
			return nil, err
		}
		ints[key] = n
	}

	cfg.Decision.MaxVelocity = floats["max_velocity"]
	cfg.Decision.ThrottleSet = floats["throttle_set"]
	cfg.Decision.BrakeSet = floats["brake_set"]
	cfg.Decision.StopForward = ints["stop_forward"]
	cfg.Decision.GoForward = ints["go_forward"]
	cfg.Decision.StuckTimeLimit = ints["stuck_time_limit"]
	cfg.SamplePixels = ints["rock_pixel_threshold"]

	var err error
	if cfg.Perception.Navigable, err = getRGB(v, "nav_threshold"); err != nil {
		return nil, err
	}
	if cfg.Perception.SampleLow, err = getRGB(v, "sample_low"); err != nil {
		return nil, err
	}
	if cfg.Perception.SampleHigh, err = getRGB(v, "sample_high"); err != nil {
		return nil, err
	}
	if cfg.Perception.GraceFrames, err = getInt(v, "sample_grace_frames"); err != nil {
		return nil, err
	}
	if cfg.MapSize, err = getInt(v, "map_size"); err != nil {
		return nil, err
	}
	if cfg.MapScale, err = getFloat(v, "map_scale"); err != nil {
		return nil, err
	}
	if cfg.DstSize, err = getFloat(v, "dst_size"); err != nil {
		return nil, err
	}
	if cfg.BottomOffset, err = getFloat(v, "bottom_offset"); err != nil {
		return nil, err
	}
	if cfg.ImageWidth, err = getInt(v, "image_width"); err != nil {
		return nil, err
	}
	if cfg.ImageHeight, err = getInt(v, "image_height"); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidThreshold, err)
	}

	port, err := cast.ToStringE(v.Get("server.port"))
	if err != nil || port == "" {
		return nil, fmt.Errorf("%w: server.port %v", ErrInvalidThreshold, v.Get("server.port"))
	}

	return &Config{
		Rover:    cfg,
		Port:     port,
		LogLevel: v.GetString("log_level"),
	}, nil
}

func requireFloat(v *viper.Viper, key string) (float64, error) {
	if !v.IsSet(key) {
		return 0, fmt.Errorf("%w: %s", ErrMissingThreshold, key)
	}
	return getFloat(v, key)
}

func requireInt(v *viper.Viper, key string) (int, error) {
	if !v.IsSet(key) {
		return 0, fmt.Errorf("%w: %s", ErrMissingThreshold, key)
	}
	return getInt(v, key)
}

func getFloat(v *viper.Viper, key string) (float64, error) {
	f, err := cast.ToFloat64E(v.Get(key))
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrInvalidThreshold, key, err)
	}
	return f, nil
}

func getInt(v *viper.Viper, key string) (int, error) {
	n, err := cast.ToIntE(v.Get(key))
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrInvalidThreshold, key, err)
	}
	return n, nil
}

// getRGB accepts a three element list or, from the environment, a
// comma-separated string such as "170,170,170".
func getRGB(v *viper.Viper, key string) (vision.RGB, error) {
	raw := v.Get(key)

	var parts []int
	if s, ok := raw.(string); ok {
		for _, field := range strings.Split(s, ",") {
			n, err := cast.ToIntE(strings.TrimSpace(field))
			if err != nil {
				return vision.RGB{}, fmt.Errorf("%w: %s: %v", ErrInvalidThreshold, key, err)
			}
			parts = append(parts, n)
		}
	} else {
		var err error
		if parts, err = cast.ToIntSliceE(raw); err != nil {
			return vision.RGB{}, fmt.Errorf("%w: %s: %v", ErrInvalidThreshold, key, err)
		}
	}

	if len(parts) != 3 {
		return vision.RGB{}, fmt.Errorf("%w: %s needs 3 values, got %d", ErrInvalidThreshold, key, len(parts))
	}
	for _, p := range parts {
		if p < 0 || p > 255 {
			return vision.RGB{}, fmt.Errorf("%w: %s value %d outside [0, 255]", ErrInvalidThreshold, key, p)
		}
	}
	return vision.RGB{R: uint8(parts[0]), G: uint8(parts[1]), B: uint8(parts[2])}, nil
}

func rgbSlice(c vision.RGB) []int {
	return []int{int(c.R), int(c.G), int(c.B)}
}
