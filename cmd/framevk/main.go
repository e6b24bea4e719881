// Command framevk renders frames headless: it feeds an input image through
// the ingest, draw and readback phases and writes the last frame as PNG.
package main

import (
	"flag"
	"fmt"
	"image"
	"image/png"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/andewx/framevk"
	"github.com/andewx/framevk/scene"
	"github.com/andewx/framevk/vkt"
	"github.com/pkg/errors"
	"golang.org/x/image/draw"
)

type options struct {
	config string
	list   bool
	device int
	width  uint
	height uint
	ticks  int
	fps    float64
	param  float64
	in     string
	out    string
	preset string
}

func main() {
	var opts options
	flag.StringVar(&opts.config, "config", "", "TOML config file (defaults apply when empty)")
	flag.BoolVar(&opts.list, "list", false, "list suitable rendering devices and exit")
	flag.IntVar(&opts.device, "device", -1, "rendering device index (-1 keeps the preset's)")
	flag.UintVar(&opts.width, "width", 0, "frame width, overrides the config")
	flag.UintVar(&opts.height, "height", 0, "frame height, overrides the config")
	flag.IntVar(&opts.ticks, "ticks", 1, "number of frames to render")
	flag.Float64Var(&opts.fps, "fps", 30, "project frame rate")
	flag.Float64Var(&opts.param, "param", -1, "video parameter in [0, 1] (-1 keeps the preset's)")
	flag.StringVar(&opts.in, "in", "", "input PNG, scaled to the frame size (black when empty)")
	flag.StringVar(&opts.out, "out", "frame.png", "output PNG of the last frame")
	flag.StringVar(&opts.preset, "preset", "", "parameter preset to load")
	flag.Parse()

	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "framevk: %+v\n", err)
		os.Exit(1)
	}
}

func run(opts options) error {
	if opts.fps <= 0 {
		return errors.Errorf("fps must be positive, got %g", opts.fps)
	}
	cfg := framevk.DefaultConfig()
	if opts.config != "" {
		var err error
		if cfg, err = framevk.LoadConfig(opts.config); err != nil {
			return err
		}
	}
	if opts.width > 0 {
		cfg.Width = uint32(opts.width)
	}
	if opts.height > 0 {
		cfg.Height = uint32(opts.height)
	}

	logger, closer, err := framevk.NewLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer closer.Close()

	params, err := loadParams(opts)
	if err != nil {
		return err
	}

	r := framevk.New(cfg, params, framevk.WithLogger(logger))
	defer func() {
		if err := r.Shutdown(); err != nil {
			logger.Error("shutdown", "err", err)
		}
	}()
	initErr := r.Initialize()
	if opts.list {
		return listDevices(os.Stdout, r, initErr, logger)
	}
	if initErr != nil {
		return initErr
	}

	width, height := r.FrameSize()
	input, err := loadInput(opts.in, int(width), int(height))
	if err != nil {
		return err
	}
	output := image.NewRGBA(image.Rect(0, 0, int(width), int(height)))

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(stop)

	for tick := 0; tick < opts.ticks; tick++ {
		select {
		case <-stop:
			logger.Info("interrupted", "tick", tick)
			return writePNG(opts.out, output)
		default:
		}
		timing := scene.Timing{
			ProjectTime:   float64(tick) / opts.fps,
			FrameRate:     opts.fps,
			ExternalParam: params.VideoParam(),
		}
		if err := r.LoadBitsToImage(input.Pix); err != nil {
			return err
		}
		if err := r.DrawFrame(timing); err != nil {
			return err
		}
		if err := r.TransferFrame(output.Pix); err != nil {
			return err
		}
		logger.Debug("tick", "n", tick, "time", timing.ProjectTime)
	}
	logger.Info("rendered", "ticks", opts.ticks, "width", width, "height", height, "out", opts.out)
	return writePNG(opts.out, output)
}

func loadParams(opts options) (*framevk.Params, error) {
	params := framevk.NewParams()
	if opts.preset != "" {
		f, err := os.Open(opts.preset)
		if err != nil {
			return nil, errors.Wrap(err, "open preset")
		}
		defer f.Close()
		if err := params.LoadPreset(f); err != nil {
			return nil, errors.Wrapf(err, "preset %s", opts.preset)
		}
	}
	if opts.device >= 0 {
		params.SetRenderingDevice(opts.device)
	}
	if opts.param >= 0 {
		if err := params.SetFloat(framevk.ParamVideoParam, opts.param); err != nil {
			return nil, err
		}
	}
	return params, nil
}

// listDevices prints the enumerated devices. Enumeration happens before
// device setup, so the list is printed even when setup failed.
func listDevices(w io.Writer, r *framevk.Renderer, initErr error, logger *slog.Logger) error {
	devices := r.Devices()
	if len(devices) == 0 {
		if initErr != nil {
			return initErr
		}
		return framevk.ErrNoSuitableDevice
	}
	if initErr != nil {
		logger.Warn("device setup failed, listing devices only", "err", initErr)
	}
	for i, d := range devices {
		mark := " "
		if i == r.DeviceIndex() {
			mark = "*"
		}
		fmt.Fprintf(w, "%s %d  %s  vendor=%#04x device=%#04x\n", mark, i, d, d.VendorID, d.DeviceID)
	}
	return nil
}

// loadInput decodes path and scales it to the frame. Without a path the
// input is a transparent black frame.
func loadInput(path string, width, height int) (*image.RGBA, error) {
	frame := image.NewRGBA(image.Rect(0, 0, width, height))
	if path == "" {
		return frame, nil
	}
	src, err := vkt.LoadImage(path)
	if err != nil {
		return nil, err
	}
	draw.CatmullRom.Scale(frame, frame.Bounds(), src, src.Bounds(), draw.Src, nil)
	return frame, nil
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create output")
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return errors.Wrap(err, "encode output")
	}
	return f.Close()
}
