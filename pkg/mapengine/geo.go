// Package mapengine loads country geometry, selects the highlighted regions and
// renders the Europe/India flight map variants.
package mapengine

import (
	"fmt"
	"math"
	"strings"

	"github.com/biter777/countries"
	"github.com/jonas-p/go-shp"
	geojson "github.com/paulmach/go.geojson"
)

type Point struct {
	Lon, Lat float64
}

// Extent is a lon/lat bounding box.
type Extent struct {
	MinLon, MaxLon float64
	MinLat, MaxLat float64
}

func (e Extent) Width() float64  { return e.MaxLon - e.MinLon }
func (e Extent) Height() float64 { return e.MaxLat - e.MinLat }

// Union is the smallest extent covering both.
func (e Extent) Union(o Extent) Extent {
	return Extent{
		MinLon: math.Min(e.MinLon, o.MinLon), MaxLon: math.Max(e.MaxLon, o.MaxLon),
		MinLat: math.Min(e.MinLat, o.MinLat), MaxLat: math.Max(e.MaxLat, o.MaxLat),
	}
}

func (e Extent) Intersects(o Extent) bool {
	return e.MinLon <= o.MaxLon && o.MinLon <= e.MaxLon &&
		e.MinLat <= o.MaxLat && o.MinLat <= e.MaxLat
}

// Country is one row of the admin-0 dataset. Geometry is always a MultiPolygon.
type Country struct {
	Name     string
	Code     countries.CountryCode
	Geometry *geojson.Geometry
	Bounds   Extent
}

// LoadCountries reads every polygon row of the shapefile at path together with
// its NAME attribute.
func LoadCountries(path string) ([]Country, error) {
	r, err := shp.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening shapefile: %w", err)
	}
	defer r.Close()

	nameIdx := -1
	for i, f := range r.Fields() {
		if strings.EqualFold(f.String(), "NAME") {
			nameIdx = i
			break
		}
	}
	if nameIdx < 0 {
		return nil, fmt.Errorf("shapefile %s has no NAME attribute", path)
	}

	var out []Country
	for r.Next() {
		n, s := r.Shape()
		poly, ok := s.(*shp.Polygon)
		if !ok || len(poly.Points) == 0 {
			continue
		}
		name := cleanAttribute(r.ReadAttribute(n, nameIdx))
		out = append(out, Country{
			Name:     name,
			Code:     countries.ByName(name),
			Geometry: geojson.NewMultiPolygonGeometry(polygonRings(poly)...),
			Bounds: Extent{
				MinLon: poly.Box.MinX, MaxLon: poly.Box.MaxX,
				MinLat: poly.Box.MinY, MaxLat: poly.Box.MaxY,
			},
		})
	}
	return out, nil
}

func cleanAttribute(s string) string {
	return strings.TrimSpace(strings.Trim(s, "\x00"))
}

// polygonRings groups the parts of a shapefile polygon into GeoJSON polygons.
// Shapefile outer rings run clockwise; counter-clockwise rings are holes of
// the outer ring that contains them.
func polygonRings(p *shp.Polygon) [][][][]float64 {
	var polys [][][][]float64
	var holes [][][]float64
	for i := range p.Parts {
		start := int(p.Parts[i])
		end := len(p.Points)
		if i+1 < len(p.Parts) {
			end = int(p.Parts[i+1])
		}
		if start >= end {
			continue
		}
		ring := make([][]float64, 0, end-start)
		for _, pt := range p.Points[start:end] {
			ring = append(ring, []float64{pt.X, pt.Y})
		}
		if signedArea(ring) > 0 {
			holes = append(holes, ring)
			continue
		}
		polys = append(polys, [][][]float64{ring})
	}

	for _, hole := range holes {
		idx := containingPolygon(polys, hole[0])
		if idx < 0 {
			// Orphan hole, most likely a wrongly wound outer ring.
			polys = append(polys, [][][]float64{hole})
			continue
		}
		polys[idx] = append(polys[idx], hole)
	}
	return polys
}

// signedArea is positive for counter-clockwise rings.
func signedArea(ring [][]float64) float64 {
	var sum float64
	for i := range ring {
		j := (i + 1) % len(ring)
		sum += ring[i][0]*ring[j][1] - ring[j][0]*ring[i][1]
	}
	return sum / 2
}

func containingPolygon(polys [][][][]float64, pt []float64) int {
	for i, poly := range polys {
		if pointInRing(poly[0], pt[0], pt[1]) {
			return i
		}
	}
	return -1
}

func pointInRing(ring [][]float64, x, y float64) bool {
	inside := false
	for i, j := 0, len(ring)-1; i < len(ring); j, i = i, i+1 {
		xi, yi := ring[i][0], ring[i][1]
		xj, yj := ring[j][0], ring[j][1]
		if (yi > y) != (yj > y) && x < (xj-xi)*(y-yi)/(yj-yi)+xi {
			inside = !inside
		}
	}
	return inside
}

// polygons returns the polygon list of a Polygon or MultiPolygon geometry.
func polygons(g *geojson.Geometry) [][][][]float64 {
	if g == nil {
		return nil
	}
	if g.IsPolygon() {
		return [][][][]float64{g.Polygon}
	}
	if g.IsMultiPolygon() {
		return g.MultiPolygon
	}
	return nil
}

// Projection maps lon/lat onto canvas pixels. Latitude is stretched by
// 1/cos(mid latitude) of the aspect bounds, see AspectBounds.
type Projection struct {
	extent Extent
	aspect float64
	scale  float64
	pad    float64
}

// AspectBounds is the area whose middle latitude sets the latitude stretch.
// India is the last layer drawn and fixes the aspect; without it the view
// extent is used.
func AspectBounds(s Style, india []Country) Extent {
	if len(india) == 0 {
		return s.Extent
	}
	b := india[0].Bounds
	for _, c := range india[1:] {
		b = b.Union(c.Bounds)
	}
	return b
}

func latitudeAspect(e Extent) float64 {
	mid := (e.MinLat + e.MaxLat) / 2
	mid = math.Max(-60, math.Min(60, mid))
	return 1 / math.Cos(mid*math.Pi/180)
}

func (p Projection) Project(lon, lat float64) (x, y float64) {
	x = p.pad + (lon-p.extent.MinLon)*p.scale
	y = p.pad + (p.extent.MaxLat-lat)*p.aspect*p.scale
	return x, y
}

// Viewport is the map area in canvas pixels.
func (p Projection) Viewport() (x, y, w, h float64) {
	return p.pad, p.pad, p.extent.Width() * p.scale, p.extent.Height() * p.aspect * p.scale
}

// Layout is the canvas size and projection for a style at a given DPI: the
// extent is fit inside the figure and the canvas is trimmed to the map area
// plus padding.
type Layout struct {
	Width, Height int
	Proj          Projection
}

func NewLayout(s Style, dpi float64, india []Country) Layout {
	aspect := latitudeAspect(AspectBounds(s, india))
	figW, figH := s.FigWidth*dpi, s.FigHeight*dpi
	dataRatio := s.Extent.Width() / (s.Extent.Height() * aspect)

	mapW := figW
	if figW/figH > dataRatio {
		mapW = figH * dataRatio
	}
	scale := mapW / s.Extent.Width()
	mapH := s.Extent.Height() * aspect * scale
	pad := s.PadInches * dpi

	return Layout{
		Width:  int(math.Ceil(mapW + 2*pad)),
		Height: int(math.Ceil(mapH + 2*pad)),
		Proj:   Projection{extent: s.Extent, aspect: aspect, scale: scale, pad: pad},
	}
}
