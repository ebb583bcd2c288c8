package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"

	tiledb "github.com/TileDB-Inc/TileDB-Go"
	"github.com/alitto/pond"
	"github.com/urfave/cli/v2"

	dasbf "github.com/sixy6e/go-dasbf"
)

// geometryFromFlags builds a GeometryParams from the shared CLI flag set.
func geometryFromFlags(c *cli.Context) dasbf.GeometryParams {
	return dasbf.GeometryParams{
		CenterFrequency:        c.Float64("center-frequency"),
		BandwidthLow:           c.Float64("bandwidth-low"),
		BandwidthHigh:          c.Float64("bandwidth-high"),
		AdcRatio:               c.Float64("adc-ratio"),
		Elements:               c.Int("elements"),
		ElementPitch:           c.Float64("element-pitch"),
		ElevationFocus:         c.Float64("elevation-focus"),
		FocusNumber:            c.Float64("focus-number"),
		Angles:                 c.Int("angles"),
		AngleIntervalDeg:       [2]float64{c.Float64("angle-low"), c.Float64("angle-high")},
		AxialCutoffWavelengths: c.Float64("axial-cutoff"),
		SpeedOfSound:           c.Float64("speed-of-sound"),
		MaxDepthWavelengths:    c.Float64("max-depth"),
		AttenuationCoefficient: c.Float64("attenuation-coefficient"),
		AttenuationPower:       c.Float64("attenuation-power"),
	}
}

func geometryFlags() []cli.Flag {
	return []cli.Flag{
		&cli.Float64Flag{Name: "center-frequency", Usage: "Transducer center frequency, Hz."},
		&cli.Float64Flag{Name: "bandwidth-low", Usage: "Lower -6dB bandwidth edge, Hz."},
		&cli.Float64Flag{Name: "bandwidth-high", Usage: "Upper -6dB bandwidth edge, Hz."},
		&cli.Float64Flag{Name: "adc-ratio", Usage: "ADC samples per wavelength (R).", Value: 4},
		&cli.IntFlag{Name: "elements", Usage: "Number of transducer elements."},
		&cli.Float64Flag{Name: "element-pitch", Usage: "Element pitch, metres."},
		&cli.Float64Flag{Name: "elevation-focus", Usage: "Elevation lens focal depth, metres."},
		&cli.Float64Flag{Name: "focus-number", Usage: "Explicit receive f-number; overrides elevation-focus."},
		&cli.IntFlag{Name: "angles", Usage: "Number of plane-wave transmit angles.", Value: 1},
		&cli.Float64Flag{Name: "angle-low", Usage: "Lowest plane-wave steering angle, degrees."},
		&cli.Float64Flag{Name: "angle-high", Usage: "Highest plane-wave steering angle, degrees."},
		&cli.Float64Flag{Name: "axial-cutoff", Usage: "Near-field axial cutoff, wavelengths."},
		&cli.Float64Flag{Name: "speed-of-sound", Usage: "Speed of sound in the medium, m/s.", Value: 1540},
		&cli.Float64Flag{Name: "max-depth", Usage: "Maximum imaging depth, wavelengths."},
		&cli.Float64Flag{Name: "attenuation-coefficient", Usage: "Medium attenuation coefficient, dB/cm/MHz^y."},
		&cli.Float64Flag{Name: "attenuation-power", Usage: "Medium attenuation frequency power y.", Value: 1},
	}
}

// buildTables computes and caches the delay and apodization tables for a
// geometry, writing them to a TileDB URI.
func buildTables(c *cli.Context) error {
	cfg, err := dasbf.NewGeometryConfig(geometryFromFlags(c))
	if err != nil {
		return err
	}

	log.Println("Building delay table")
	delays := dasbf.BuildDelayTable(cfg)

	log.Println("Building apodization table")
	opts := dasbf.DefaultApodizationOptions()
	if windowName := c.String("window"); windowName != "" {
		kind, err := dasbf.ParseWindowKind(windowName)
		if err != nil {
			return err
		}
		opts.Window = kind
	}
	apod := dasbf.BuildApodizationTable(cfg, opts)

	config, err := tiledb.NewConfig()
	if err != nil {
		return err
	}
	defer config.Free()
	ctx, err := tiledb.NewContext(config)
	if err != nil {
		return err
	}
	defer ctx.Free()

	outdir := c.String("outdir-uri")
	log.Println("Writing delay table cache")
	if err := dasbf.CacheDelayTable(ctx, filepath.Join(outdir, "delays.tdb"), delays); err != nil {
		return err
	}
	log.Println("Writing apodization table cache")
	if err := dasbf.CacheApodizationTable(ctx, filepath.Join(outdir, "apodization.tdb"), apod); err != nil {
		return err
	}

	diag := dasbf.Diagnose(apod)
	log.Printf("Apodization diagnostics: %+v", diag)

	return nil
}

// beamformOptions carries the per-run parameters of the DAS pipeline that
// are independent of where its input/output live, so both the single-
// container "beamform" command and the batch "process" command can drive
// the same pipeline with different container/output URIs.
type beamformOptions struct {
	shots        int
	averageShots bool
	dbRange      float64
	outputWidth  int
	outputHeight int
	topClipRows  int
	dicomOut     string
}

func beamformOptionsFromFlags(c *cli.Context) beamformOptions {
	return beamformOptions{
		shots:        c.Int("shots"),
		averageShots: c.Bool("average-shots"),
		dbRange:      c.Float64("db-range"),
		outputWidth:  c.Int("output-width"),
		outputHeight: c.Int("output-height"),
		topClipRows:  c.Int("top-clip-samples"),
		dicomOut:     c.String("dicom-out"),
	}
}

// runBeamform runs the full DAS pipeline for one acquisition container and
// writes a log-compressed frame to outURI, optionally exporting a DICOM
// object to opts.dicomOut.
func runBeamform(cfg dasbf.GeometryConfig, containerURI, outURI string, opts beamformOptions) error {
	delays := dasbf.BuildDelayTable(cfg)
	apod := dasbf.BuildApodizationTable(cfg, dasbf.DefaultApodizationOptions())

	container, err := dasbf.OpenSignalContainer(containerURI, nil)
	if err != nil {
		return err
	}
	defer container.Close()

	cube, err := container.LoadCube(cfg.Transducer.A, opts.shots, cfg.Medium.RxEchoSamples, cfg.Transducer.E, opts.averageShots)
	if err != nil {
		return err
	}

	frame, err := dasbf.BeamformReal(cube, delays, apod)
	if err != nil {
		return err
	}

	// S0 counts samples; axial rows are spaced two samples apart (Z = T/2).
	clipped := dasbf.AxialClip(frame, cfg.Transducer.S0/2, opts.topClipRows)
	logImg := dasbf.LogCompress(clipped.Data, opts.dbRange)
	logFrame := &dasbf.FrameReal{Z: clipped.Z, X: clipped.X, Data: logImg}

	resampled := logFrame
	if opts.outputWidth > 0 && opts.outputHeight > 0 {
		resampled = dasbf.BicubicResample(logFrame, opts.outputWidth, opts.outputHeight)
	}

	if _, err := dasbf.WriteJson(outURI, "", resampled); err != nil {
		return err
	}

	if opts.dicomOut != "" {
		f, err := os.Create(opts.dicomOut)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := dasbf.ExportDICOM(f, resampled, cfg.Transducer); err != nil {
			return err
		}
	}

	return nil
}

// beamform is the CLI action for beamforming a single acquisition
// container named by the --container-uri flag.
func beamform(c *cli.Context) error {
	cfg, err := dasbf.NewGeometryConfig(geometryFromFlags(c))
	if err != nil {
		return err
	}

	out := c.String("out-uri")
	if out == "" {
		out = filepath.Join(c.String("outdir-uri"), "frame.json")
	}

	return runBeamform(cfg, c.String("container-uri"), out, beamformOptionsFromFlags(c))
}

// process trawls a directory of acquisition containers and runs the DAS
// pipeline over each one across a worker pool, submitting one task per
// discovered container with its own container/output URI so concurrent
// tasks never share state.
func process(c *cli.Context) error {
	items, err := dasbf.FindAcquisitions(c.String("uri"), c.String("config-uri"))
	if err != nil {
		return err
	}
	// items holds one URI per shot array; reduce to one container root each.
	seen := make(map[string]bool)
	containers := make([]string, 0)
	for _, uri := range items {
		root := filepath.Dir(filepath.Dir(uri))
		if !seen[root] {
			seen[root] = true
			containers = append(containers, root)
		}
	}
	log.Println("Number of acquisitions to process:", len(containers))

	cfg, err := dasbf.NewGeometryConfig(geometryFromFlags(c))
	if err != nil {
		return err
	}
	opts := beamformOptionsFromFlags(c)
	outdir := c.String("outdir-uri")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	n := runtime.NumCPU() * 2
	pool := pond.New(n, 0, pond.MinWorkers(n), pond.Context(ctx))
	defer pool.StopAndWait()

	for _, containerURI := range containers {
		containerURI := containerURI
		base := filepath.Base(containerURI)
		outURI := filepath.Join(outdir, base+".json")

		itemOpts := opts
		if opts.dicomOut != "" {
			itemOpts.dicomOut = filepath.Join(filepath.Dir(opts.dicomOut), base+filepath.Ext(opts.dicomOut))
		}

		pool.Submit(func() {
			if err := runBeamform(cfg, containerURI, outURI, itemOpts); err != nil {
				log.Printf("failed processing %s: %v", containerURI, err)
			}
		})
	}

	return nil
}

func main() {
	app := &cli.App{
		Name:  "dasbf",
		Usage: "plane-wave receive delay-and-sum beamforming",
		Commands: []*cli.Command{
			{
				Name:  "build-tables",
				Usage: "Compute and cache the delay and apodization tables for a geometry.",
				Flags: append(geometryFlags(),
					&cli.StringFlag{Name: "outdir-uri", Usage: "Output directory for cached tables."},
					&cli.StringFlag{Name: "window", Usage: "Apodization window: rect, hann, blackman."},
				),
				Action: buildTables,
			},
			{
				Name:  "beamform",
				Usage: "Beamform one acquisition container into a log-compressed image.",
				Flags: append(geometryFlags(),
					&cli.StringFlag{Name: "container-uri", Usage: "URI of the signal container to beamform."},
					&cli.IntFlag{Name: "shots", Usage: "Shots per angle to average.", Value: 1},
					&cli.BoolFlag{Name: "average-shots", Usage: "Coherently average shots before beamforming."},
					&cli.Float64Flag{Name: "db-range", Usage: "Log-compression dynamic range, dB.", Value: 60},
					&cli.IntFlag{Name: "output-width", Usage: "Resampled output width in pixels (0 = no resample)."},
					&cli.IntFlag{Name: "output-height", Usage: "Resampled output height in pixels (0 = no resample)."},
					&cli.IntFlag{Name: "top-clip-samples", Usage: "Far-field axial rows to drop from the bottom of the image."},
					&cli.StringFlag{Name: "out-uri", Usage: "Output JSON frame location."},
					&cli.StringFlag{Name: "outdir-uri", Usage: "Output directory (used when out-uri is unset)."},
					&cli.StringFlag{Name: "dicom-out", Usage: "Optional path to also write a DICOM US Image Storage object."},
				),
				Action: beamform,
			},
			{
				Name:  "process",
				Usage: "Trawl a directory of signal containers and beamform each one across a worker pool.",
				Flags: append(geometryFlags(),
					&cli.StringFlag{Name: "uri", Usage: "Root URI to trawl for signal containers."},
					&cli.StringFlag{Name: "config-uri", Usage: "URI or pathname to a TileDB config file."},
					&cli.IntFlag{Name: "shots", Usage: "Shots per angle to average.", Value: 1},
					&cli.BoolFlag{Name: "average-shots", Usage: "Coherently average shots before beamforming."},
					&cli.Float64Flag{Name: "db-range", Usage: "Log-compression dynamic range, dB.", Value: 60},
					&cli.IntFlag{Name: "output-width", Usage: "Resampled output width in pixels (0 = no resample)."},
					&cli.IntFlag{Name: "output-height", Usage: "Resampled output height in pixels (0 = no resample)."},
					&cli.IntFlag{Name: "top-clip-samples", Usage: "Far-field axial rows to drop from the bottom of the image."},
					&cli.StringFlag{Name: "outdir-uri", Usage: "Output directory for per-container frames."},
				),
				Action: process,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
