package render

import (
	"strings"

	"github.com/vulkan-go/vulkan"
	"goarrg.com/debug"
)

type Config struct {
	// MaxFramesInFlight is the number of frame slots, the upper bound on
	// frames submitted to the GPU whose fence has not been observed.
	MaxFramesInFlight int

	// PreferredFormat is used when the surface supports this exact
	// format and color space pair, otherwise the first supported format is.
	PreferredFormat vulkan.SurfaceFormat

	// PreferredPresentMode falls back to FIFO, which is always available.
	PreferredPresentMode vulkan.PresentMode

	ClearColor [4]float32
}

func DefaultConfig() Config {
	return Config{
		MaxFramesInFlight: 2,
		PreferredFormat: vulkan.SurfaceFormat{
			Format:     vulkan.FormatB8g8r8a8Srgb,
			ColorSpace: vulkan.ColorSpaceSrgbNonlinear,
		},
		PreferredPresentMode: vulkan.PresentModeMailbox,
		ClearColor:           [4]float32{0, 0, 0, 1},
	}
}

func (c *Config) validate() error {
	if c.MaxFramesInFlight < 1 {
		return debug.Errorf("Config.MaxFramesInFlight must be >= 1, got %d", c.MaxFramesInFlight)
	}
	return nil
}

var presentModes = map[string]vulkan.PresentMode{
	"immediate":    vulkan.PresentModeImmediate,
	"mailbox":      vulkan.PresentModeMailbox,
	"fifo":         vulkan.PresentModeFifo,
	"fifo-relaxed": vulkan.PresentModeFifoRelaxed,
}

func ParsePresentMode(s string) (vulkan.PresentMode, error) {
	mode, ok := presentModes[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return vulkan.PresentModeFifo, debug.Errorf("Unknown present mode %q", s)
	}
	return mode, nil
}

func PresentModeString(mode vulkan.PresentMode) string {
	for k, v := range presentModes {
		if v == mode {
			return k
		}
	}
	return "unknown"
}
