package mapengine

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/hashicorp/go-multierror"
)

// Sizes below are in points and scale with the render DPI.

type Fill struct {
	Color     string
	Edge      string
	LineWidth float64
	Alpha     float64
}

// Marker sizes follow scatter conventions: Size is the marker area in pt².
type Marker struct {
	Color     string
	Size      float64
	EdgeColor string
	EdgeWidth float64
}

type PathStyle struct {
	Points      int
	CurveHeight float64
	Color       string
	LineWidth   float64
	Alpha       float64
	PlaneSize   float64
	PlaneOffset float64 // degrees of latitude added to the plane position
}

type LabelStyle struct {
	FontSize float64
	Offset   float64 // degrees of latitude above the city
	Color    string
	Box      string
	BoxAlpha float64
	PadEm    float64
}

type LegendStyle struct {
	FontSize   float64
	Background string
	Edge       string
	TextColor  string
	Alpha      float64
}

type Style struct {
	FigWidth, FigHeight float64 // inches
	PadInches           float64
	Background          string
	Extent              Extent
	CropWorld           bool

	World          Fill
	Europe         Fill
	India          Fill
	DissolveEurope bool

	PrimaryMarker   Marker
	SecondaryMarker *Marker

	Labels *LabelStyle
	Path   PathStyle
	Legend *LegendStyle
}

func DesktopStyle() Style {
	return Style{
		FigWidth:   18,
		FigHeight:  12,
		PadInches:  0.1,
		Background: "#01110c",
		Extent:     Extent{MinLon: -40, MaxLon: 130, MinLat: 10, MaxLat: 85},
		CropWorld:  true,

		World:  Fill{Color: "#243447", Edge: "#1a2332", LineWidth: 0.5, Alpha: 0.8},
		Europe: Fill{Color: "#A3C585", Edge: "#87A96B", LineWidth: 2, Alpha: 0.9},
		India:  Fill{Color: "#FF8C42", Edge: "#E67E22", LineWidth: 2, Alpha: 0.9},

		PrimaryMarker: Marker{Color: "#00FF7F", Size: 100, EdgeColor: "#FFFFFF", EdgeWidth: 2},

		Labels: &LabelStyle{
			FontSize: 16,
			Offset:   4,
			Color:    "#FFFFFF",
			Box:      "#000000",
			BoxAlpha: 0.8,
			PadEm:    0.5,
		},
		Path: PathStyle{
			Points:      100,
			CurveHeight: 18,
			Color:       "#FFFFFF",
			LineWidth:   5,
			Alpha:       0.8,
			PlaneSize:   24,
		},
		Legend: &LegendStyle{
			FontSize:   14,
			Background: "#01110c",
			Edge:       "#87A96B",
			TextColor:  "#FFFFFF",
			Alpha:      0.8,
		},
	}
}

func MobileStyle() Style {
	return Style{
		FigWidth:   16,
		FigHeight:  9,
		Background: "#000000",
		Extent:     Extent{MinLon: -250, MaxLon: 250, MinLat: -120, MaxLat: 140},

		World:          Fill{Color: "#1a2e3a", Edge: "#0f1f28", LineWidth: 0.3, Alpha: 0.7},
		Europe:         Fill{Color: "#1a2e3a", Edge: "#7FB069", LineWidth: 0.8, Alpha: 0.7},
		India:          Fill{Color: "#1a2e3a", Edge: "#7FB069", LineWidth: 0.8, Alpha: 0.7},
		DissolveEurope: true,

		PrimaryMarker:   Marker{Color: "#00FF7F", Size: 40, EdgeColor: "#FFFFFF", EdgeWidth: 1},
		SecondaryMarker: &Marker{Color: "#FF0000", Size: 60, EdgeColor: "#FFFFFF", EdgeWidth: 1.5},

		Path: PathStyle{
			Points:      60,
			CurveHeight: 20,
			Color:       "#FFFFFF",
			LineWidth:   2,
			Alpha:       0.6,
			PlaneSize:   8,
			PlaneOffset: 1,
		},
	}
}

func StyleFor(d Device) Style {
	if d == Mobile {
		return MobileStyle()
	}
	return DesktopStyle()
}

// MarkerFor returns the marker drawn on city for the audience, if any.
func (s Style) MarkerFor(a Audience, city City) (Marker, bool) {
	if city.Name == a.PrimaryCity().Name {
		return s.PrimaryMarker, true
	}
	if s.SecondaryMarker != nil {
		return *s.SecondaryMarker, true
	}
	return Marker{}, false
}

// Validate checks every colour and size in the style.
func (s Style) Validate() error {
	var result *multierror.Error
	check := func(field, hex string) {
		if _, err := parseHexColor(hex); err != nil {
			result = multierror.Append(result, fmt.Errorf("%s: %w", field, err))
		}
	}

	if s.FigWidth <= 0 || s.FigHeight <= 0 {
		result = multierror.Append(result, fmt.Errorf("figure size must be positive, got %vx%v", s.FigWidth, s.FigHeight))
	}
	if s.Extent.Width() <= 0 || s.Extent.Height() <= 0 {
		result = multierror.Append(result, fmt.Errorf("empty extent %+v", s.Extent))
	}
	check("background", s.Background)
	for name, f := range map[string]Fill{"world": s.World, "europe": s.Europe, "india": s.India} {
		check(name+".color", f.Color)
		check(name+".edge", f.Edge)
	}
	check("primary_marker.color", s.PrimaryMarker.Color)
	check("primary_marker.edge", s.PrimaryMarker.EdgeColor)
	if s.SecondaryMarker != nil {
		check("secondary_marker.color", s.SecondaryMarker.Color)
		check("secondary_marker.edge", s.SecondaryMarker.EdgeColor)
	}
	check("path.color", s.Path.Color)
	if s.Labels != nil {
		check("labels.color", s.Labels.Color)
		check("labels.box", s.Labels.Box)
	}
	if s.Legend != nil {
		check("legend.background", s.Legend.Background)
		check("legend.edge", s.Legend.Edge)
		check("legend.text", s.Legend.TextColor)
	}
	return result.ErrorOrNil()
}

// parseHexColor accepts #rgb and #rrggbb.
func parseHexColor(s string) (color.NRGBA, error) {
	hex := strings.TrimPrefix(s, "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return color.NRGBA{}, fmt.Errorf("invalid colour %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid colour %q", s)
	}
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, nil
}

// rgba resolves a validated hex colour with the given opacity.
func rgba(hex string, alpha float64) color.NRGBA {
	c, _ := parseHexColor(hex)
	c.A = uint8(clamp01(alpha)*255 + 0.5)
	return c
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
