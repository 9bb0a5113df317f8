package mapengine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCurveOffset(t *testing.T) {
	for _, h := range []float64{0, 18, 20, -5} {
		assert.InDelta(t, 0, CurveOffset(0, h), 1e-12)
		assert.InDelta(t, 0, CurveOffset(1, h), 1e-12)
		assert.InDelta(t, h, CurveOffset(0.5, h), 1e-12)
		for _, tt := range []float64{0.1, 0.25, 0.4} {
			assert.InDelta(t, CurveOffset(tt, h), CurveOffset(1-tt, h), 1e-12)
		}
	}
}

func TestFlightPath(t *testing.T) {
	tests := []struct {
		name   string
		n      int
		height float64
	}{
		{"desktop", 100, 18},
		{"mobile", 60, 20},
		{"odd count", 101, 18},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := FlightPath(Berlin.Point, Bengaluru.Point, tt.n, tt.height)
			require.Len(t, path, tt.n)

			first, last := path[0], path[len(path)-1]
			assert.InDelta(t, Berlin.Lon, first.Lon, 1e-9)
			assert.InDelta(t, Berlin.Lat, first.Lat, 1e-9)
			assert.InDelta(t, Bengaluru.Lon, last.Lon, 1e-9)
			assert.InDelta(t, Bengaluru.Lat, last.Lat, 1e-9)

			for i := 1; i < len(path); i++ {
				assert.Greater(t, path[i].Lon, path[i-1].Lon, "longitude moves east monotonically")
			}
			if tt.n%2 == 1 {
				mid := path[tt.n/2]
				straight := (Berlin.Lat + Bengaluru.Lat) / 2
				assert.InDelta(t, straight+tt.height, mid.Lat, 1e-9)
			}
		})
	}
}

func TestFlightPathMinimumPoints(t *testing.T) {
	for _, n := range []int{-1, 0, 1} {
		path := FlightPath(Berlin.Point, Bengaluru.Point, n, 10)
		assert.Len(t, path, 2)
	}
}
