package mapengine

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/jonas-p/go-shp"
	"github.com/stretchr/testify/require"
)

type fixtureRow struct {
	name  string
	parts [][]shp.Point
}

// ring returns a closed clockwise rectangle, the winding shapefiles use for
// outer rings.
func ring(minX, minY, maxX, maxY float64) []shp.Point {
	return []shp.Point{
		{X: minX, Y: minY}, {X: minX, Y: maxY}, {X: maxX, Y: maxY}, {X: maxX, Y: minY}, {X: minX, Y: minY},
	}
}

// hole returns a closed counter-clockwise rectangle.
func hole(minX, minY, maxX, maxY float64) []shp.Point {
	return []shp.Point{
		{X: minX, Y: minY}, {X: maxX, Y: minY}, {X: maxX, Y: maxY}, {X: minX, Y: maxY}, {X: minX, Y: minY},
	}
}

var fixtureWorld = []fixtureRow{
	{"Germany", [][]shp.Point{ring(6, 47, 15, 55)}},
	{"France", [][]shp.Point{ring(-5, 43, 6, 51)}},
	{"India", [][]shp.Point{ring(68, 8, 90, 30)}},
	{"Brazil", [][]shp.Point{ring(-70, -30, -40, 0)}},
	{"Narnia", [][]shp.Point{ring(30, 30, 40, 40)}},
}

func writeShapefile(t *testing.T, dir string, rows []fixtureRow) string {
	t.Helper()
	return createShapefile(t, filepath.Join(dir, "countries.shp"), shp.StringField("NAME", 50), rows)
}

// createShapefile writes rows as polygons with a single attribute column.
func createShapefile(t *testing.T, path string, field shp.Field, rows []fixtureRow) string {
	t.Helper()
	w, err := shp.Create(path, shp.POLYGON)
	require.NoError(t, err)
	require.NoError(t, w.SetFields([]shp.Field{field}))
	for i, row := range rows {
		poly := shp.Polygon(*shp.NewPolyLine(row.parts))
		require.Equal(t, int32(i), w.Write(&poly))
		require.NoError(t, w.WriteAttribute(i, 0, row.name))
	}
	w.Close()

	// The writer names the table "<base>dbf" instead of "<base>.dbf".
	base := strings.TrimSuffix(path, filepath.Ext(path))
	require.NoError(t, os.Rename(base+"dbf", base+".dbf"))
	for _, ext := range []string{".shp", ".shx", ".dbf"} {
		require.FileExists(t, base+ext)
	}
	return path
}

func fixtureCountries(t *testing.T) []Country {
	t.Helper()
	all, err := LoadCountries(writeShapefile(t, t.TempDir(), fixtureWorld))
	require.NoError(t, err)
	return all
}

type fakeSource struct {
	path  string
	err   error
	calls atomic.Int32
}

func (f *fakeSource) EnsureCountries(context.Context) (string, error) {
	f.calls.Add(1)
	return f.path, f.err
}
