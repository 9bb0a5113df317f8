package mapengine

import (
	"fmt"
	"path/filepath"

	"github.com/biter777/countries"
)

type Audience string

const (
	Employee Audience = "employee"
	Employer Audience = "employer"
)

func ParseAudience(s string) (Audience, error) {
	switch a := Audience(s); a {
	case Employee, Employer:
		return a, nil
	}
	return "", fmt.Errorf("unknown audience %q (want employee or employer)", s)
}

type Device string

const (
	Desktop Device = "desktop"
	Mobile  Device = "mobile"
)

func ParseDevice(s string) (Device, error) {
	switch d := Device(s); d {
	case Desktop, Mobile:
		return d, nil
	}
	return "", fmt.Errorf("unknown device %q (want desktop or mobile)", s)
}

type City struct {
	Name    string
	Country countries.CountryCode
	Point
}

var (
	Berlin    = City{Name: "Berlin", Country: countries.Germany, Point: Point{Lon: 13.4050, Lat: 52.5200}}
	Bengaluru = City{Name: "Bengaluru", Country: countries.India, Point: Point{Lon: 77.5946, Lat: 12.9716}}
)

// PrimaryCity is the city that gets the highlight marker for the audience.
func (a Audience) PrimaryCity() City {
	if a == Employee {
		return Bengaluru
	}
	return Berlin
}

// Variant is one generated image.
type Variant struct {
	Audience Audience
	Device   Device
}

func (v Variant) String() string {
	return string(v.Device) + "/" + string(v.Audience)
}

// FileName is europe_india_map[_mobile]_{audience} plus ext.
func (v Variant) FileName(ext string) string {
	name := "europe_india_map"
	if v.Device == Mobile {
		name += "_mobile"
	}
	return name + "_" + string(v.Audience) + ext
}

func (v Variant) OutputPath(dir, ext string) string {
	return filepath.Join(dir, v.FileName(ext))
}

// Variants returns every combination in device-major order.
func Variants(devices []Device, audiences []Audience) []Variant {
	out := make([]Variant, 0, len(devices)*len(audiences))
	for _, d := range devices {
		for _, a := range audiences {
			out = append(out, Variant{Audience: a, Device: d})
		}
	}
	return out
}

func AllVariants() []Variant {
	return Variants([]Device{Desktop, Mobile}, []Audience{Employee, Employer})
}
