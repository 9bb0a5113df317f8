package mapengine

import (
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/fogleman/gg"
)

var ErrRender = errors.New("render failed")

const maxCanvasPixels = 100_000_000

// Scene is the data drawn into one image.
type Scene struct {
	Regions
	Audience Audience
}

func NewScene(all []Country, s Style, a Audience) Scene {
	return Scene{Regions: SelectRegions(all, s), Audience: a}
}

type Renderer struct {
	Style Style
	DPI   float64
}

func NewRenderer(s Style, dpi float64) *Renderer {
	return &Renderer{Style: s, DPI: dpi}
}

// pt converts typographic points to pixels.
func (r *Renderer) pt(v float64) float64 {
	return v * r.DPI / 72
}

// Render draws the scene. Panics raised while drawing are returned as
// ErrRender instead of propagating.
func (r *Renderer) Render(scene Scene) (img image.Image, err error) {
	defer func() {
		if p := recover(); p != nil {
			img, err = nil, fmt.Errorf("%w: panic: %v", ErrRender, p)
		}
	}()

	if r.DPI <= 0 || math.IsNaN(r.DPI) || math.IsInf(r.DPI, 0) {
		return nil, fmt.Errorf("%w: dpi must be positive, got %v", ErrRender, r.DPI)
	}
	if err := r.Style.Validate(); err != nil {
		return nil, fmt.Errorf("%w: invalid style: %w", ErrRender, err)
	}
	layout := NewLayout(r.Style, r.DPI, scene.India)
	if layout.Width <= 0 || layout.Height <= 0 || layout.Width*layout.Height > maxCanvasPixels {
		return nil, fmt.Errorf("%w: canvas %dx%d out of range", ErrRender, layout.Width, layout.Height)
	}

	s := r.Style
	proj := layout.Proj
	dc := gg.NewContext(layout.Width, layout.Height)
	dc.SetColor(rgba(s.Background, 1))
	dc.Clear()
	dc.SetLineJoin(gg.LineJoinRound)

	vx, vy, vw, vh := proj.Viewport()
	clip := func() {
		dc.ResetClip()
		dc.DrawRectangle(vx, vy, vw, vh)
		dc.Clip()
	}

	clip()
	r.drawCountries(dc, proj, scene.World, s.World)
	if s.DissolveEurope {
		r.drawDissolved(dc, proj, scene.Europe, s.Europe)
	} else {
		r.drawCountries(dc, proj, scene.Europe, s.Europe)
	}
	r.drawCountries(dc, proj, scene.India, s.India)
	dc.ResetClip()

	if s.Labels != nil {
		for _, city := range []City{Berlin, Bengaluru} {
			if err := r.drawLabel(dc, proj, city); err != nil {
				return nil, fmt.Errorf("%w: %w", ErrRender, err)
			}
		}
	}

	clip()
	path := FlightPath(Berlin.Point, Bengaluru.Point, s.Path.Points, s.Path.CurveHeight)
	r.drawPath(dc, proj, path)
	r.drawPlane(dc, proj, path)
	for _, city := range []City{Berlin, Bengaluru} {
		if m, ok := s.MarkerFor(scene.Audience, city); ok {
			r.drawMarker(dc, proj, city.Point, m)
		}
	}
	dc.ResetClip()

	if s.Legend != nil {
		if err := r.drawLegend(dc, proj); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrRender, err)
		}
	}
	return dc.Image(), nil
}

func tracePolygon(dc *gg.Context, proj Projection, rings [][][]float64) {
	for _, ring := range rings {
		dc.NewSubPath()
		for i, pt := range ring {
			x, y := proj.Project(pt[0], pt[1])
			if i == 0 {
				dc.MoveTo(x, y)
			} else {
				dc.LineTo(x, y)
			}
		}
		dc.ClosePath()
	}
}

func (r *Renderer) drawCountries(dc *gg.Context, proj Projection, cs []Country, f Fill) {
	dc.SetFillRule(gg.FillRuleEvenOdd)
	dc.SetLineWidth(r.pt(f.LineWidth))
	for _, c := range cs {
		for _, poly := range polygons(c.Geometry) {
			tracePolygon(dc, proj, poly)
			dc.SetColor(rgba(f.Color, f.Alpha))
			dc.FillPreserve()
			dc.SetColor(rgba(f.Edge, f.Alpha))
			dc.Stroke()
		}
	}
}

func (r *Renderer) drawLabel(dc *gg.Context, proj Projection, city City) error {
	ls := r.Style.Labels
	size := r.pt(ls.FontSize)
	face, err := fontFace(true, size)
	if err != nil {
		return fmt.Errorf("loading label font: %w", err)
	}
	dc.SetFontFace(face)

	// Anchored bottom-centre, lifted above the city.
	x, y := proj.Project(city.Lon, city.Lat+ls.Offset)
	w, h := dc.MeasureString(city.Name)
	pad := ls.PadEm * size
	dc.DrawRoundedRectangle(x-w/2-pad, y-h-pad, w+2*pad, h+2*pad, pad)
	dc.SetColor(rgba(ls.Box, ls.BoxAlpha))
	dc.Fill()

	dc.SetColor(rgba(ls.Color, 1))
	dc.DrawStringAnchored(city.Name, x, y-h/2, 0.5, 0.5)
	return nil
}

func (r *Renderer) drawPath(dc *gg.Context, proj Projection, path []Point) {
	ps := r.Style.Path
	lw := r.pt(ps.LineWidth)
	for i, p := range path {
		x, y := proj.Project(p.Lon, p.Lat)
		if i == 0 {
			dc.MoveTo(x, y)
		} else {
			dc.LineTo(x, y)
		}
	}
	dc.SetColor(rgba(ps.Color, ps.Alpha))
	dc.SetLineWidth(lw)
	dc.SetLineCap(gg.LineCapButt)
	dc.SetDash(3.7*lw, 1.6*lw)
	dc.Stroke()
	dc.SetDash()
}

// planeOutline is an airplane silhouette, nose towards +x, one unit long.
var planeOutline = func() [][2]float64 {
	upper := [][2]float64{
		{0.50, 0}, {0.42, 0.05}, {0.08, 0.05}, {-0.12, 0.46}, {-0.22, 0.46},
		{-0.10, 0.05}, {-0.34, 0.05}, {-0.44, 0.20}, {-0.50, 0.20}, {-0.45, 0},
	}
	out := append([][2]float64(nil), upper...)
	for i := len(upper) - 2; i > 0; i-- {
		out = append(out, [2]float64{upper[i][0], -upper[i][1]})
	}
	return out
}()

// drawPlane puts the airplane glyph on the middle point of the path, turned
// along the direction of travel.
func (r *Renderer) drawPlane(dc *gg.Context, proj Projection, path []Point) {
	ps := r.Style.Path
	mid := len(path) / 2
	p := path[mid]
	x, y := proj.Project(p.Lon, p.Lat+ps.PlaneOffset)

	prev, next := path[max(mid-1, 0)], path[min(mid+1, len(path)-1)]
	px, py := proj.Project(prev.Lon, prev.Lat)
	nx, ny := proj.Project(next.Lon, next.Lat)

	dc.Push()
	defer dc.Pop()
	dc.Translate(x, y)
	dc.Rotate(math.Atan2(ny-py, nx-px))
	size := r.pt(ps.PlaneSize)
	dc.Scale(size, size)
	for i, pt := range planeOutline {
		if i == 0 {
			dc.MoveTo(pt[0], pt[1])
		} else {
			dc.LineTo(pt[0], pt[1])
		}
	}
	dc.ClosePath()
	dc.SetColor(rgba(ps.Color, 1))
	dc.Fill()
}

func (r *Renderer) drawMarker(dc *gg.Context, proj Projection, p Point, m Marker) {
	x, y := proj.Project(p.Lon, p.Lat)
	dc.DrawCircle(x, y, r.pt(math.Sqrt(m.Size)/2))
	dc.SetColor(rgba(m.Color, 1))
	dc.FillPreserve()
	dc.SetColor(rgba(m.EdgeColor, 1))
	dc.SetLineWidth(r.pt(m.EdgeWidth))
	dc.Stroke()
}

// drawLegend draws the Europe/India swatches in the lower right corner of the
// map area. Spacing is in units of the font size.
func (r *Renderer) drawLegend(dc *gg.Context, proj Projection) error {
	ls := r.Style.Legend
	fs := r.pt(ls.FontSize)
	face, err := fontFace(false, fs)
	if err != nil {
		return fmt.Errorf("loading legend font: %w", err)
	}
	dc.SetFontFace(face)

	entries := []struct {
		label string
		fill  Fill
	}{
		{"Europe", r.Style.Europe},
		{"India", r.Style.India},
	}
	var textW float64
	for _, e := range entries {
		w, _ := dc.MeasureString(e.label)
		textW = max(textW, w)
	}

	border, handleW, handleH := 0.4*fs, 2*fs, 0.7*fs
	gap, spacing, inset := 0.8*fs, 0.5*fs, 0.5*fs
	boxW := 2*border + handleW + gap + textW
	boxH := 2*border + float64(len(entries))*fs + float64(len(entries)-1)*spacing

	vx, vy, vw, vh := proj.Viewport()
	bx, by := vx+vw-inset-boxW, vy+vh-inset-boxH
	dc.DrawRoundedRectangle(bx, by, boxW, boxH, 0.2*fs)
	dc.SetColor(rgba(ls.Background, ls.Alpha))
	dc.FillPreserve()
	dc.SetColor(rgba(ls.Edge, ls.Alpha))
	dc.SetLineWidth(r.pt(1))
	dc.Stroke()

	for i, e := range entries {
		cy := by + border + float64(i)*(fs+spacing) + fs/2
		dc.DrawRectangle(bx+border, cy-handleH/2, handleW, handleH)
		dc.SetColor(rgba(e.fill.Color, 1))
		dc.Fill()
		dc.SetColor(rgba(ls.TextColor, 1))
		dc.DrawStringAnchored(e.label, bx+border+handleW+gap, cy, 0, 0.5)
	}
	return nil
}
