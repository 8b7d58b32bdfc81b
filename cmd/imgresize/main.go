// Batch image resizer with JPEG conversion.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/regorov/imgresize"
	"github.com/rs/zerolog"
	"github.com/urfave/cli"
)

// EnvVarPrefix holds environment variables prefix related to application.
const (
	EnvVarPrefix = "IMGRESIZE_"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

// newApp returns the application with all flags declared and start as action.
func newApp() *cli.App {

	app := cli.NewApp()
	app.Name = "imgresize"
	app.Usage = "resize images and convert them to JPEG"
	app.ArgsUsage = "<image> [<image>...]"
	app.Version = BuildNumber
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:   "debug, d",
			Usage:  "debug mode activation",
			EnvVar: EnvVarPrefix + "DEBUG",
		},
		cli.StringFlag{
			Name:   "pl",
			Usage:  "pprof HTTP listener",
			EnvVar: EnvVarPrefix + "PPROF_LISTENER",
		},
		cli.StringFlag{
			Name:   "config, c",
			Usage:  "YAML configuration file, flags override its values",
			EnvVar: EnvVarPrefix + "CONFIG",
		},
		cli.IntFlag{
			Name:   "width, W",
			Value:  imgresize.DefaultWidth,
			Usage:  "target width in pixels",
			EnvVar: EnvVarPrefix + "WIDTH",
		},
		cli.IntFlag{
			Name:   "height, H",
			Value:  imgresize.DefaultHeight,
			Usage:  "target height in pixels",
			EnvVar: EnvVarPrefix + "HEIGHT",
		},
		cli.Float64Flag{
			Name:   "scale, s",
			Usage:  "scale factor applied to both dimensions, excludes width and height",
			EnvVar: EnvVarPrefix + "SCALE",
		},
		cli.StringFlag{
			Name:   "list, l",
			Usage:  "file with image paths, one per line",
			EnvVar: EnvVarPrefix + "LIST",
		},
		cli.StringFlag{
			Name:   "report, r",
			Usage:  "CSV report file name",
			EnvVar: EnvVarPrefix + "REPORT",
		},
		cli.StringFlag{
			Name:   "convert",
			Value:  imgresize.DefaultConvertCommand,
			Usage:  "converter executable, invoked as <convert> <src> <dst>",
			EnvVar: EnvVarPrefix + "CONVERT",
		},
		cli.DurationFlag{
			Name:   "convert-timeout",
			Usage:  "converter run time limit, 0 means no limit",
			EnvVar: EnvVarPrefix + "CONVERT_TIMEOUT",
		},
		cli.IntFlag{
			Name:   "workers, w",
			Value:  1,
			Usage:  "amount of parallel image processing goroutines",
			EnvVar: EnvVarPrefix + "WORKERS",
		},
		cli.StringFlag{
			Name:   "download-dir",
			Value:  ".",
			Usage:  "directory for images given by http(s) URL",
			EnvVar: EnvVarPrefix + "DOWNLOAD_DIR",
		},
		cli.BoolFlag{
			Name:   "strict",
			Usage:  "exit with non-zero code if any image failed",
			EnvVar: EnvVarPrefix + "STRICT",
		},
	}
	app.Action = start
	return app
}

func start(c *cli.Context) error {

	debug := c.Bool("debug")

	// 1. logger format preparation.
	zerolog.TimeFieldFormat = "20060102T150405.999Z07:00"
	zerolog.TimestampFieldName = "t"
	zerolog.MessageFieldName = "msg"
	zerolog.LevelFieldName = "lvl"

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	// stdout is reserved for progress lines.
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	logger.Info().Str("version", BuildNumber).Msg("application started")

	// 2. configuration.
	cfg, err := loadConfig(c)
	if err != nil {
		logger.Error().Str("errmsg", err.Error()).Msg("configuration failed")
		return err
	}

	logger.Info().
		Bool("debug", debug).
		Str("mode", cfg.Resize.Mode().String()).
		Str("resize", cfg.Resize.String()).
		Str("convert", cfg.ConvertCommand).
		Int("workers", cfg.Workers).
		Msg("launching params")

	// 3. runtime profiling activation.
	if c.IsSet("pl") {
		go func(listen string) {
			logger.Info().Str("pl", listen).Msg("start pprof http listener")
			if err := http.ListenAndServe(listen, nil); err != nil {
				logger.Error().Str("errmsg", err.Error()).Msg("pprof listener starting failed")
			}
		}(c.String("pl"))
	}

	// 4. SIGINT capture. Images not started yet are reported as failed.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		<-stop
		logger.Info().Msg("signal captured")
		cancel()
	}()

	// 5. inputs.
	paths := []string(c.Args())
	if c.IsSet("list") {
		input := imgresize.NewPlainTextFileInput(logger)
		if err := input.Start(ctx, c.String("list")); err != nil {
			logger.Error().Str("errmsg", err.Error()).Msg("list file open failed")
			return err
		}
		paths = append(paths, imgresize.ReadAll(input)...)
	}
	if len(paths) == 0 {
		return cli.NewExitError(imgresize.ErrNoInputs.Error(), 1)
	}

	// 6. create objects.
	outputs := []imgresize.Outputer{imgresize.NewTextOutput(os.Stdout, os.Stderr)}
	if c.IsSet("report") {
		report := imgresize.NewBufferedCSV(imgresize.DefaultBufferLen)
		if err := report.Open(c.String("report")); err != nil {
			logger.Error().Str("errmsg", err.Error()).Msg("report file open/create failed")
			return err
		}
		outputs = append(outputs, report)
	}

	pipeline := imgresize.NewPipeline(logger, cfg,
		imgresize.NewImagingCodec(),
		imgresize.NewAreaResampler(),
		imgresize.NewExecConverter(cfg.ConvertCommand, cfg.ConvertTimeout),
		outputs...)
	pipeline.SetFetcher(imgresize.NewMediaFetcher(logger, cfg.DownloadDir))

	// 7. processing.
	started := time.Now()
	outcomes := pipeline.ProcessAll(ctx, paths)

	for _, out := range outputs {
		if err := out.Close(); err != nil {
			logger.Error().Str("errmsg", err.Error()).Msg("output flush/close failed")
		}
	}

	// counters are logged by the pipeline.
	logger.Info().Str("dur", time.Since(started).String()).Msg("Completed")

	st := imgresize.NewStats(outcomes, 0)

	if c.Bool("strict") && !st.OK() {
		return cli.NewExitError(fmt.Sprintf("%d of %d images failed", st.Failed, st.Total), 1)
	}
	return nil
}

// loadConfig builds configuration from optional YAML file and flags.
// Flags set explicitly (or by environment) win over the file.
func loadConfig(c *cli.Context) (imgresize.Config, error) {

	cfg := imgresize.DefaultConfig()
	if c.IsSet("config") {
		var err error
		if cfg, err = imgresize.LoadConfig(c.String("config")); err != nil {
			return cfg, err
		}
	}

	absSet := c.IsSet("width") || c.IsSet("height")
	switch {
	case absSet && c.IsSet("scale"):
		return cfg, errors.New("--scale can not be combined with --width/--height")
	case c.IsSet("scale"):
		cfg.Resize = imgresize.Scaled(c.Float64("scale"))
	case absSet:
		w, h := imgresize.DefaultWidth, imgresize.DefaultHeight
		if cfg.Resize.Mode() == imgresize.ModeAbsolute {
			w, h = cfg.Resize.Width, cfg.Resize.Height
		}
		if c.IsSet("width") {
			w = c.Int("width")
		}
		if c.IsSet("height") {
			h = c.Int("height")
		}
		cfg.Resize = imgresize.Absolute(w, h)
	}

	if c.IsSet("convert") {
		cfg.ConvertCommand = c.String("convert")
	}
	if c.IsSet("convert-timeout") {
		cfg.ConvertTimeout = c.Duration("convert-timeout")
	}
	if c.IsSet("workers") {
		cfg.Workers = c.Int("workers")
	}
	if c.IsSet("download-dir") {
		cfg.DownloadDir = c.String("download-dir")
	}

	return cfg, cfg.Validate()
}
