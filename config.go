package collide

import (
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"
)

var ErrInvalidConfig = errors.New("collide: invalid config")

// ResolverKind selects the uncollide strategy run after the narrow phase.
type ResolverKind string

const (
	ResolverHermann  ResolverKind = "hermann"
	ResolverRayDelta ResolverKind = "ray_delta"
	ResolverNone     ResolverKind = "none"
)

// Config is read once by New.
type Config struct {
	SweepAxes [3]mgl64.Vec3 `yaml:"sweep_axes"`
	// BiasMultiplier scales the back-off used by the ray delta casts.
	BiasMultiplier float64 `yaml:"bias_multiplier"`
	// Angles in degrees to the consensus direction. Rays below start count
	// fully, rays beyond finish are ignored for the push-out magnitude.
	ForceSmoothStartDeg  float64      `yaml:"force_smooth_start_deg"`
	ForceSmoothFinishDeg float64      `yaml:"force_smooth_finish_deg"`
	Resolver             ResolverKind `yaml:"resolver"`
	// Workers > 1 fans mid and narrow phase work out per pair; 0 uses one
	// worker per CPU.
	Workers int  `yaml:"workers"`
	Strict  bool `yaml:"strict"`

	Logging LoggingConfig `yaml:"logging"`
}

func DefaultConfig() Config {
	return Config{
		SweepAxes:            [3]mgl64.Vec3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}},
		BiasMultiplier:       1.0,
		ForceSmoothStartDeg:  2.5,
		ForceSmoothFinishDeg: 7.5,
		Resolver:             ResolverHermann,
		Workers:              1,
		Logging:              DefaultLoggingConfig(),
	}
}

// LoadConfig overlays the yaml file at path on DefaultConfig.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("loading config from %s: %w", path, err)
	}
	return ParseConfig(data)
}

func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	for i, a := range c.SweepAxes {
		if a.Len() < 1e-6 {
			return fmt.Errorf("%w: sweep axis %d is zero", ErrInvalidConfig, i)
		}
	}
	for i := 0; i < 3; i++ {
		for j := i + 1; j < 3; j++ {
			if c.SweepAxes[i].Cross(c.SweepAxes[j]).Len() < 1e-6*c.SweepAxes[i].Len()*c.SweepAxes[j].Len() {
				return fmt.Errorf("%w: sweep axes %d and %d are parallel", ErrInvalidConfig, i, j)
			}
		}
	}
	if !(c.BiasMultiplier > 0) || math.IsInf(c.BiasMultiplier, 0) {
		return fmt.Errorf("%w: bias_multiplier must be positive, got %v", ErrInvalidConfig, c.BiasMultiplier)
	}
	if c.ForceSmoothStartDeg < 0 || c.ForceSmoothStartDeg >= c.ForceSmoothFinishDeg || c.ForceSmoothFinishDeg >= 90 {
		return fmt.Errorf("%w: need 0 <= force_smooth_start_deg < force_smooth_finish_deg < 90, got %v and %v",
			ErrInvalidConfig, c.ForceSmoothStartDeg, c.ForceSmoothFinishDeg)
	}
	switch c.Resolver {
	case ResolverHermann, ResolverRayDelta, ResolverNone:
	default:
		return fmt.Errorf("%w: unknown resolver %q", ErrInvalidConfig, c.Resolver)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers must be >= 0, got %d", ErrInvalidConfig, c.Workers)
	}
	return nil
}

// forceSmoothing returns the smoothing thresholds in radians.
func (c Config) forceSmoothing() (start, finish float64) {
	return mgl64.DegToRad(c.ForceSmoothStartDeg), mgl64.DegToRad(c.ForceSmoothFinishDeg)
}
