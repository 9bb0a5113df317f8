package mapengine

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/biter777/countries"
	geojson "github.com/paulmach/go.geojson"

	"github.com/sudorandom/flightmap/pkg/utils"
)

func isoAlpha2(c countries.CountryCode) string {
	if c == countries.Unknown {
		return ""
	}
	return c.Alpha2()
}

// ExportGeoJSON describes what the image shows as a FeatureCollection: the
// highlighted countries, both cities with their marker role and the flight
// path.
func ExportGeoJSON(scene Scene, s Style) ([]byte, error) {
	fc := geojson.NewFeatureCollection()

	addRegion := func(region string, cs []Country) {
		for _, c := range cs {
			f := geojson.NewFeature(c.Geometry)
			f.SetProperty("name", c.Name)
			f.SetProperty("iso_a2", isoAlpha2(c.Code))
			f.SetProperty("region", region)
			fc.AddFeature(f)
		}
	}
	addRegion("europe", scene.Europe)
	addRegion("india", scene.India)

	primary := scene.Audience.PrimaryCity()
	for _, city := range []City{Berlin, Bengaluru} {
		f := geojson.NewPointFeature([]float64{city.Lon, city.Lat})
		f.SetProperty("name", city.Name)
		f.SetProperty("iso_a2", isoAlpha2(city.Country))
		role := "none"
		if m, ok := s.MarkerFor(scene.Audience, city); ok {
			role = "secondary"
			if city.Name == primary.Name {
				role = "primary"
			}
			f.SetProperty("color", m.Color)
		}
		f.SetProperty("marker", role)
		fc.AddFeature(f)
	}

	path := FlightPath(Berlin.Point, Bengaluru.Point, s.Path.Points, s.Path.CurveHeight)
	coords := make([][]float64, len(path))
	for i, p := range path {
		coords[i] = []float64{p.Lon, p.Lat}
	}
	line := geojson.NewLineStringFeature(coords)
	line.SetProperty("name", "flight_path")
	fc.AddFeature(line)

	return fc.MarshalJSON()
}

// SaveGeoJSON writes ExportGeoJSON output to path.
func SaveGeoJSON(scene Scene, s Style, path string) error {
	data, err := ExportGeoJSON(scene, s)
	if err != nil {
		return fmt.Errorf("encoding geojson: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	return utils.WriteFileAtomic(path, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
}
