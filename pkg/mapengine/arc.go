package mapengine

// CurveOffset is the vertical lift of the flight path at t in [0,1]: zero at
// both ends and height at the midpoint.
func CurveOffset(t, height float64) float64 {
	return height * 4 * t * (1 - t)
}

// FlightPath interpolates n points from a to b and lifts them into a
// parabolic arc of the given height (in degrees of latitude).
func FlightPath(a, b Point, n int, height float64) []Point {
	if n < 2 {
		n = 2
	}
	pts := make([]Point, n)
	for i := range pts {
		t := float64(i) / float64(n-1)
		pts[i] = Point{
			Lon: a.Lon + (b.Lon-a.Lon)*t,
			Lat: a.Lat + (b.Lat-a.Lat)*t + CurveOffset(t, height),
		}
	}
	return pts
}
