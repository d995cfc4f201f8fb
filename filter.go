// filter.go — symbol shapes, fill filters, and their YAML persistence.
//
// A symbol is a resolution-independent shape over the unit square, sampled
// as a coverage field: 1 deep inside the shape, 0 outside, a ramp across the
// edge. Rendering classifies every pixel into inside / border / outside by
// coverage thresholds and asks a SymbolFilter for the color of the first two
// regions; outside pixels stay transparent.
//
// Filters persist as YAML documents so hosts can store fill styles next to
// their other assets; the `type` key selects the concrete filter on load.
package stencil

import (
	"fmt"
	"image"
	"io"
	"math"

	"gopkg.in/yaml.v3"
)

// SymbolRegion classifies a pixel relative to a symbol's shape.
type SymbolRegion int

const (
	RegionOutside SymbolRegion = iota
	RegionBorder
	RegionInside
)

// Coverage thresholds: at or above insideThreshold a pixel is inside the
// shape, at or above borderThreshold it is border, below it is outside.
const (
	insideThreshold = 0.78
	borderThreshold = 0.20
)

// Symbol is a shape sampled over the unit square. Sample returns coverage in
// [0,1]; implementations must be pure.
type Symbol interface {
	Sample(x, y float64) float64
}

// CircleSymbol is the built-in disc: full coverage inside radius 0.4, a
// linear edge ramp out to 0.5.
type CircleSymbol struct{}

func (CircleSymbol) Sample(x, y float64) float64 {
	d := math.Hypot(x-0.5, y-0.5)
	return clamp01((0.5 - d) / 0.1)
}

// SymbolFilter decides the color of a pixel given its unit-square position
// and region. FillType is the stable name the persistence layer keys on.
type SymbolFilter interface {
	Color(x, y float64, region SymbolRegion) Color
	FillType() string
	Equal(other SymbolFilter) bool
}

/* ---------- solid fill ---------- */

// SolidFillFilter paints the inside and border each with one color.
type SolidFillFilter struct {
	Type   string `yaml:"type"`
	Fill   Color  `yaml:"fill_color"`
	Border Color  `yaml:"border_color"`
}

// NewSolidFill builds a solid fill filter.
func NewSolidFill(fill, border Color) *SolidFillFilter {
	return &SolidFillFilter{Type: "solid", Fill: fill, Border: border}
}

func (f *SolidFillFilter) FillType() string { return "solid" }

func (f *SolidFillFilter) Color(x, y float64, region SymbolRegion) Color {
	switch region {
	case RegionInside:
		return f.Fill
	case RegionBorder:
		return f.Border
	default:
		return Color{}
	}
}

func (f *SolidFillFilter) Equal(other SymbolFilter) bool {
	o, ok := other.(*SolidFillFilter)
	return ok && f.Fill == o.Fill && f.Border == o.Border
}

/* ---------- gradients ---------- */

// gradientColors is the shared color set of the gradient filters: fill and
// border colors at each end of the gradient.
type gradientColors struct {
	Fill1   Color `yaml:"fill_color_1"`
	Border1 Color `yaml:"border_color_1"`
	Fill2   Color `yaml:"fill_color_2"`
	Border2 Color `yaml:"border_color_2"`
}

func (g *gradientColors) colorAt(t float64, region SymbolRegion) Color {
	switch region {
	case RegionInside:
		return Lerp(g.Fill1, g.Fill2, t)
	case RegionBorder:
		return Lerp(g.Border1, g.Border2, t)
	default:
		return Color{}
	}
}

func (g *gradientColors) equal(o *gradientColors) bool {
	return g.Fill1 == o.Fill1 && g.Border1 == o.Border1 &&
		g.Fill2 == o.Fill2 && g.Border2 == o.Border2
}

// LinearGradientFilter blends along the axis from (X1,Y1) to (X2,Y2) in unit
// coordinates; positions are projected onto the axis and clamped.
type LinearGradientFilter struct {
	Type           string `yaml:"type"`
	gradientColors `yaml:",inline"`
	X1             float64 `yaml:"center_x"`
	Y1             float64 `yaml:"center_y"`
	X2             float64 `yaml:"end_x"`
	Y2             float64 `yaml:"end_y"`
}

// NewLinearGradient builds a linear gradient filter along the given axis.
func NewLinearGradient(colors gradientColors, x1, y1, x2, y2 float64) *LinearGradientFilter {
	return &LinearGradientFilter{Type: "linear gradient", gradientColors: colors, X1: x1, Y1: y1, X2: x2, Y2: y2}
}

func (f *LinearGradientFilter) FillType() string { return "linear gradient" }

func (f *LinearGradientFilter) Color(x, y float64, region SymbolRegion) Color {
	dx, dy := f.X2-f.X1, f.Y2-f.Y1
	len2 := dx*dx + dy*dy
	t := 0.5
	if len2 > 0 {
		t = clamp01(((x-f.X1)*dx + (y-f.Y1)*dy) / len2)
	}
	return f.colorAt(t, region)
}

func (f *LinearGradientFilter) Equal(other SymbolFilter) bool {
	o, ok := other.(*LinearGradientFilter)
	return ok && f.gradientColors.equal(&o.gradientColors) &&
		f.X1 == o.X1 && f.Y1 == o.Y1 && f.X2 == o.X2 && f.Y2 == o.Y2
}

// RadialGradientFilter blends outward from the center of the unit square,
// reaching the far colors at the corners' inscribed circle.
type RadialGradientFilter struct {
	Type           string `yaml:"type"`
	gradientColors `yaml:",inline"`
}

// NewRadialGradient builds a radial gradient filter.
func NewRadialGradient(colors gradientColors) *RadialGradientFilter {
	return &RadialGradientFilter{Type: "radial gradient", gradientColors: colors}
}

func (f *RadialGradientFilter) FillType() string { return "radial gradient" }

func (f *RadialGradientFilter) Color(x, y float64, region SymbolRegion) Color {
	t := clamp01(2 * math.Hypot(x-0.5, y-0.5))
	return f.colorAt(t, region)
}

func (f *RadialGradientFilter) Equal(other SymbolFilter) bool {
	o, ok := other.(*RadialGradientFilter)
	return ok && f.gradientColors.equal(&o.gradientColors)
}

/* ---------- rendering ---------- */

// FilterSymbol rasterizes a symbol through a filter at the given size,
// sampling coverage at pixel centers.
func FilterSymbol(sym Symbol, filter SymbolFilter, width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for py := 0; py < height; py++ {
		y := (float64(py) + 0.5) / float64(height)
		for px := 0; px < width; px++ {
			x := (float64(px) + 0.5) / float64(width)
			cov := sym.Sample(x, y)
			var region SymbolRegion
			switch {
			case cov >= insideThreshold:
				region = RegionInside
			case cov >= borderThreshold:
				region = RegionBorder
			default:
				continue
			}
			setPixel(img, px, py, filter.Color(x, y, region))
		}
	}
	return img
}

// RenderedSymbol is the lazy image a script gets from render_symbol: the
// rasterization runs only when a host forces it with a concrete size.
type RenderedSymbol struct {
	Symbol Symbol
	Filter SymbolFilter
}

func (r RenderedSymbol) Generate(width, height int) *image.RGBA {
	return FilterSymbol(r.Symbol, r.Filter, width, height)
}

func clamp01(t float64) float64 {
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}

/* ---------- persistence ---------- */

// filterPrototypes maps the persisted `type` key to a fresh instance to
// decode into.
var filterPrototypes = map[string]func() SymbolFilter{
	"solid":           func() SymbolFilter { return &SolidFillFilter{Type: "solid"} },
	"linear gradient": func() SymbolFilter { return &LinearGradientFilter{Type: "linear gradient"} },
	"radial gradient": func() SymbolFilter { return &RadialGradientFilter{Type: "radial gradient"} },
}

type filterSpec struct {
	F SymbolFilter
}

func (s *filterSpec) UnmarshalYAML(node *yaml.Node) error {
	var head struct {
		Type string `yaml:"type"`
	}
	if err := node.Decode(&head); err != nil {
		return err
	}
	proto, ok := filterPrototypes[head.Type]
	if !ok {
		return fmt.Errorf("unknown filter type %q", head.Type)
	}
	f := proto()
	if err := node.Decode(f); err != nil {
		return err
	}
	s.F = f
	return nil
}

func (s filterSpec) MarshalYAML() (any, error) { return s.F, nil }

type filterFile struct {
	Filters []filterSpec `yaml:"filters"`
}

// LoadFilters reads a YAML filter document.
func LoadFilters(r io.Reader) ([]SymbolFilter, error) {
	var doc filterFile
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, err
	}
	out := make([]SymbolFilter, len(doc.Filters))
	for i, s := range doc.Filters {
		out[i] = s.F
	}
	return out, nil
}

// SaveFilters writes filters as a YAML document LoadFilters accepts.
func SaveFilters(w io.Writer, filters []SymbolFilter) error {
	doc := filterFile{Filters: make([]filterSpec, len(filters))}
	for i, f := range filters {
		doc.Filters[i] = filterSpec{F: f}
	}
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(doc)
}
