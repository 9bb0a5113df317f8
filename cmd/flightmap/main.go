package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"

	"github.com/sudorandom/flightmap/pkg/mapengine"
	"github.com/sudorandom/flightmap/pkg/sources"
)

type CLI struct {
	LogLevel slog.Level `default:"info" help:"Log level (debug, info, warn, error)."`

	Generate GenerateCmd `cmd:"" default:"withargs" help:"Render the map images (default)."`
	Fetch    FetchCmd    `cmd:"" help:"Download the Natural Earth countries dataset if it is missing."`
}

type DataFlags struct {
	DataDir string        `default:"${data_dir}" help:"Directory holding the Natural Earth shapefile."`
	URL     string        `name:"url" default:"${url}" help:"Download URL of the countries archive."`
	Timeout time.Duration `default:"${timeout}" help:"HTTP timeout for the download."`
}

func (d DataFlags) fetcher() *sources.Fetcher {
	return sources.NewFetcher(d.DataDir, d.URL, d.Timeout)
}

type GenerateCmd struct {
	DataFlags `embed:""`

	OutDir   string   `default:"${out_dir}" help:"Directory the images are written to."`
	DPI      float64  `name:"dpi" default:"${dpi}" help:"Output resolution."`
	Audience []string `default:"employee,employer" enum:"employee,employer" help:"Audiences to render (${enum})."`
	Device   []string `default:"desktop,mobile" enum:"desktop,mobile" help:"Devices to render (${enum})."`
	GeoJSON  bool     `name:"geojson" help:"Also write a GeoJSON description next to each image."`
	Strict   bool     `help:"Exit with an error if any image could not be generated."`
}

func (c *GenerateCmd) variants() ([]mapengine.Variant, error) {
	var devices []mapengine.Device
	for _, s := range c.Device {
		d, err := mapengine.ParseDevice(s)
		if err != nil {
			return nil, err
		}
		if !slices.Contains(devices, d) {
			devices = append(devices, d)
		}
	}
	var audiences []mapengine.Audience
	for _, s := range c.Audience {
		a, err := mapengine.ParseAudience(s)
		if err != nil {
			return nil, err
		}
		if !slices.Contains(audiences, a) {
			audiences = append(audiences, a)
		}
	}
	return mapengine.Variants(devices, audiences), nil
}

func (c *GenerateCmd) Run(ctx context.Context) error {
	variants, err := c.variants()
	if err != nil {
		return err
	}
	gen := mapengine.NewGenerator(c.fetcher(), c.OutDir, c.DPI)
	gen.GeoJSON = c.GeoJSON

	if err := gen.GenerateAll(ctx, variants); err != nil {
		if c.Strict {
			return err
		}
		slog.Warn("some maps were not generated", "err", err)
		return nil
	}
	slog.Info("all maps generated", "count", len(variants), "out_dir", c.OutDir)
	return nil
}

type FetchCmd struct {
	DataFlags `embed:""`
}

func (c *FetchCmd) Run(ctx context.Context) error {
	path, err := c.fetcher().EnsureCountries(ctx)
	if err != nil {
		return err
	}
	slog.Info("dataset ready", "path", path)
	return nil
}

func newParser(cli *CLI, options ...kong.Option) (*kong.Kong, error) {
	return kong.New(cli, append([]kong.Option{
		kong.Name("flightmap"),
		kong.Description("Render the Europe/India relocation maps."),
		kong.UsageOnError(),
		kong.DefaultEnvars("FLIGHTMAP"),
		kong.Vars{
			"data_dir": sources.DefaultDataDir,
			"url":      sources.NaturalEarthCountriesURL,
			"timeout":  sources.DefaultFetchTimeout.String(),
			"out_dir":  mapengine.DefaultOutDir,
			"dpi":      fmt.Sprint(mapengine.DefaultDPI),
		},
	}, options...)...)
}

func setupLogging(level slog.Level, w *os.File) {
	slog.SetDefault(slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.TimeOnly,
		NoColor:    !isatty.IsTerminal(w.Fd()),
	})))
}

func main() {
	var cli CLI
	parser, err := newParser(&cli)
	if err != nil {
		panic(err)
	}
	kctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)

	setupLogging(cli.LogLevel, os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	kctx.BindTo(ctx, (*context.Context)(nil))
	kctx.FatalIfErrorf(kctx.Run())
}
