package knob

// Variant selects how a renderer draws a knob.
type Variant string

const (
	VariantRing     Variant = "ring"
	VariantGradient Variant = "gradient"
)

// Valid reports whether v names a known variant.
func (v Variant) Valid() bool {
	return v == VariantRing || v == VariantGradient
}

// Orientation is the direction of a linear gradient.
type Orientation string

const (
	Horizontal Orientation = "horizontal"
	Vertical   Orientation = "vertical"
)

// IndicatorType selects single or split value indicators.
type IndicatorType string

const (
	// IndicatorSingle uses IndicatorFill over the whole range.
	IndicatorSingle IndicatorType = "single"
	// IndicatorDouble uses IndicatorDoubleFill below the top of the track and
	// IndicatorFill above it.
	IndicatorDouble IndicatorType = "double"
)

// Stop is one color stop of a gradient. Offset is in [0, 1].
type Stop struct {
	Offset float64 `yaml:"offset" json:"offset"`
	Color  string  `yaml:"color" json:"color"`
}

// Gradient is an ordered list of color stops.
type Gradient []Stop

// Style carries presentation settings. The core passes it to renderers
// untouched.
type Style struct {
	IndicatorFill                Gradient      `yaml:"indicator_fill,omitempty" json:"indicatorFill,omitempty"`
	IndicatorDoubleFill          Gradient      `yaml:"indicator_double_fill,omitempty" json:"indicatorDoubleFill,omitempty"`
	IndicatorGradientOrientation Orientation   `yaml:"indicator_gradient_orientation,omitempty" json:"indicatorGradientOrientation,omitempty"`
	IndicatorType                IndicatorType `yaml:"indicator_type,omitempty" json:"indicatorType,omitempty"`
	TrackFill                    string        `yaml:"track_fill,omitempty" json:"trackFill,omitempty"`
	TrackStroke                  string        `yaml:"track_stroke,omitempty" json:"trackStroke,omitempty"`
	OuterWheelFill               Gradient      `yaml:"outer_wheel_fill,omitempty" json:"outerWheelFill,omitempty"`
	OuterGradientOrientation     Orientation   `yaml:"outer_gradient_orientation,omitempty" json:"outerGradientOrientation,omitempty"`
	InnerWheelFill               Gradient      `yaml:"inner_wheel_fill,omitempty" json:"innerWheelFill,omitempty"`
	InnerGradientOrientation     Orientation   `yaml:"inner_gradient_orientation,omitempty" json:"innerGradientOrientation,omitempty"`
	ShadowFill                   string        `yaml:"shadow_fill,omitempty" json:"shadowFill,omitempty"`

	// MoveSizeFactor and UpSizeFactor size the center wheel, in percent of
	// the radius, while moving and while settled.
	MoveSizeFactor float64 `yaml:"move_size_factor,omitempty" json:"moveSizeFactor,omitempty"`
	UpSizeFactor   float64 `yaml:"up_size_factor,omitempty" json:"upSizeFactor,omitempty"`

	// Rings is the number of orbiting rings drawn by the ring variant while
	// moving, 0 to 20.
	Rings    int      `yaml:"rings,omitempty" json:"rings,omitempty"`
	RingFill Gradient `yaml:"ring_fill,omitempty" json:"ringFill,omitempty"`
}

// First returns the color of the first stop, or fallback when g is empty.
func (g Gradient) First(fallback string) string {
	if len(g) == 0 {
		return fallback
	}
	return g[0].Color
}
