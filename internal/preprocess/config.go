package preprocess

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// MaxBlurRadius bounds the user-supplied smoothing radius.
const MaxBlurRadius = 50

// ErrInvalidParam is returned when a preprocessing form field cannot be parsed
var ErrInvalidParam = errors.New("invalid preprocessing parameter")

// Config holds the user-tunable parameters of the enhancement chain
type Config struct {
	Contrast   float64 // multiplicative gain
	Brightness int     // additive offset
	BlurRadius int     // 0 disables user smoothing
}

// DefaultConfig returns the identity configuration (1.0, 0, 0)
func DefaultConfig() Config {
	return Config{Contrast: 1.0}
}

// KernelSize returns the side length of the smoothing kernel for the configured radius
func (c Config) KernelSize() int {
	return 2*c.BlurRadius + 1
}

// ParseConfig builds a Config from form values. lookup reports whether a field
// was supplied at all; missing fields keep their defaults while supplied but
// unparsable fields fail with ErrInvalidParam.
func ParseConfig(lookup func(name string) (string, bool)) (Config, error) {
	cfg := DefaultConfig()

	if raw, ok := lookup("contrast"); ok {
		v, err := parseReal(raw)
		if err != nil {
			return DefaultConfig(), fmt.Errorf("%w: contrast: %v", ErrInvalidParam, err)
		}
		cfg.Contrast = v
	}

	if raw, ok := lookup("brightness"); ok {
		v, err := parseReal(raw)
		if err != nil {
			return DefaultConfig(), fmt.Errorf("%w: brightness: %v", ErrInvalidParam, err)
		}
		cfg.Brightness = truncate(v)
	}

	if raw, ok := lookup("blur"); ok {
		v, err := parseReal(raw)
		if err != nil {
			return DefaultConfig(), fmt.Errorf("%w: blur: %v", ErrInvalidParam, err)
		}
		cfg.BlurRadius = truncate(v)
	}

	// Negative radii disable smoothing
	if cfg.BlurRadius < 0 {
		cfg.BlurRadius = 0
	}
	if cfg.BlurRadius > MaxBlurRadius {
		cfg.BlurRadius = MaxBlurRadius
	}

	return cfg, nil
}

func parseReal(raw string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("non-finite value %q", raw)
	}
	return v, nil
}

// truncate converts toward zero, saturating at the int32 range
func truncate(v float64) int {
	if v > math.MaxInt32 {
		return math.MaxInt32
	}
	if v < math.MinInt32 {
		return math.MinInt32
	}
	return int(v)
}
