package mapengine

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/fogleman/gg"
)

// drawDissolved fills the countries as one shape and strokes only the outer
// boundary of their union, so shared borders between them disappear.
func (r *Renderer) drawDissolved(dc *gg.Context, proj Projection, cs []Country, f Fill) {
	if len(cs) == 0 {
		return
	}
	dst, ok := dc.Image().(*image.RGBA)
	if !ok {
		r.drawCountries(dc, proj, cs, f)
		return
	}

	cov := coverageMask(dc.Width(), dc.Height(), proj, cs)
	vx, vy, vw, vh := proj.Viewport()
	area := image.Rect(int(vx), int(vy), int(math.Ceil(vx+vw)), int(math.Ceil(vy+vh))).Intersect(dst.Bounds())

	draw.DrawMask(dst, area, image.NewUniform(rgba(f.Color, f.Alpha)), image.Point{}, cov, area.Min, draw.Over)
	edge := outlineMask(cov, r.pt(f.LineWidth))
	draw.DrawMask(dst, area, image.NewUniform(rgba(f.Edge, f.Alpha)), image.Point{}, edge, area.Min, draw.Over)
}

// coverageMask rasterises the union of the countries into an alpha mask.
func coverageMask(w, h int, proj Projection, cs []Country) *image.Alpha {
	mc := gg.NewContext(w, h)
	mc.SetFillRule(gg.FillRuleEvenOdd)
	mc.SetColor(color.White)
	for _, c := range cs {
		for _, poly := range polygons(c.Geometry) {
			tracePolygon(mc, proj, poly)
			mc.Fill()
		}
	}
	src := mc.Image()
	cov := image.NewAlpha(src.Bounds())
	draw.Draw(cov, cov.Bounds(), src, src.Bounds().Min, draw.Src)
	return cov
}

// outlineMask marks the boundary pixels of cov, thickened to width pixels.
func outlineMask(cov *image.Alpha, width float64) *image.Alpha {
	b := cov.Bounds()
	out := image.NewAlpha(b)
	radius := int(math.Round(width / 2))

	inside := func(x, y int) bool {
		if x < b.Min.X || y < b.Min.Y || x >= b.Max.X || y >= b.Max.Y {
			return false
		}
		return cov.Pix[cov.PixOffset(x, y)] >= 128
	}

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if !inside(x, y) {
				continue
			}
			if inside(x-1, y) && inside(x+1, y) && inside(x, y-1) && inside(x, y+1) {
				continue
			}
			for dy := -radius; dy <= radius; dy++ {
				for dx := -radius; dx <= radius; dx++ {
					px, py := x+dx, y+dy
					if px < b.Min.X || py < b.Min.Y || px >= b.Max.X || py >= b.Max.Y {
						continue
					}
					out.Pix[out.PixOffset(px, py)] = 255
				}
			}
		}
	}
	return out
}
