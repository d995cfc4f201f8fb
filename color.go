// color.go — the color variant's payload type.
package stencil

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Color is an 8-bit RGBA color. The zero value is fully transparent black.
type Color struct {
	R, G, B, A uint8
}

// RGB builds an opaque color.
func RGB(r, g, b uint8) Color { return Color{R: r, G: g, B: b, A: 255} }

// namedColors covers the spellings scripts actually use; everything else is
// written as "#rrggbb".
var namedColors = map[string]Color{
	"black":       RGB(0, 0, 0),
	"white":       RGB(255, 255, 255),
	"red":         RGB(255, 0, 0),
	"green":       RGB(0, 255, 0),
	"blue":        RGB(0, 0, 255),
	"yellow":      RGB(255, 255, 0),
	"cyan":        RGB(0, 255, 255),
	"magenta":     RGB(255, 0, 255),
	"gray":        RGB(128, 128, 128),
	"grey":        RGB(128, 128, 128),
	"orange":      RGB(255, 165, 0),
	"brown":       RGB(165, 42, 42),
	"transparent": {},
}

// ParseColor reads "#rrggbb", "#rrggbbaa", or a named color.
func ParseColor(s string) (Color, bool) {
	if c, ok := namedColors[strings.ToLower(s)]; ok {
		return c, true
	}
	if !strings.HasPrefix(s, "#") {
		return Color{}, false
	}
	hex := s[1:]
	if len(hex) != 6 && len(hex) != 8 {
		return Color{}, false
	}
	n, err := strconv.ParseUint(hex, 16, 64)
	if err != nil {
		return Color{}, false
	}
	if len(hex) == 6 {
		return Color{R: uint8(n >> 16), G: uint8(n >> 8), B: uint8(n), A: 255}, true
	}
	return Color{R: uint8(n >> 24), G: uint8(n >> 16), B: uint8(n >> 8), A: uint8(n)}, true
}

// String renders "#rrggbb", or "#rrggbbaa" when not fully opaque. This is the
// form Equal compares by, so a color is equal to its hex string spelling.
func (c Color) String() string {
	if c.A == 255 {
		return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}

// Code renders the re-parseable form: an rgb() or rgba() call.
func (c Color) Code() string {
	if c.A == 255 {
		return fmt.Sprintf("rgb(r: %d, g: %d, b: %d)", c.R, c.G, c.B)
	}
	return fmt.Sprintf("rgba(r: %d, g: %d, b: %d, a: %d)", c.R, c.G, c.B, c.A)
}

// Lerp interpolates between a and b; t is clamped to [0,1].
func Lerp(a, b Color, t float64) Color {
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	mix := func(x, y uint8) uint8 {
		return uint8(float64(x) + t*(float64(y)-float64(x)) + 0.5)
	}
	return Color{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B), A: mix(a.A, b.A)}
}

// Colors persist as their hex spelling in filter documents (filter.go).

func (c Color) MarshalYAML() (any, error) { return c.String(), nil }

func (c *Color) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	parsed, ok := ParseColor(s)
	if !ok {
		return fmt.Errorf("invalid color %q", s)
	}
	*c = parsed
	return nil
}
