// Copyright ©2022 Evolution. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// siti tool's plot subcommand implementation.

package main

import (
	"flag"
	"fmt"
	"path"
	"strings"

	"github.com/evolution-gaming/siti/internal/analysis"
	"github.com/evolution-gaming/siti/internal/logging"
	"github.com/evolution-gaming/siti/internal/siti"
)

// Make sure PlotApp implements Commander interface.
var _ Commander = (*PlotApp)(nil)

// PlotApp is plot subcommand application context that implements Commander interface.
type PlotApp struct {
	// FlagSet instance
	fs *flag.FlagSet
	// Input video file
	flInput string
	// Output file base path for generated plots
	flOutBase string
	// Frame width for raw planar input
	flWidth int
	// Frame height for raw planar input
	flHeight int
	// Luma sample range of input
	flRange string
	// Calculate metrics only for first N frames
	flNumFrames int
	// Global flags
	gf globalFlags
	// Application configuration
	cfg Config
	// Parsed luma range
	lumaRange siti.RangeMode
}

// CreatePlotCommand will create Commander instance from PlotApp.
func CreatePlotCommand() *PlotApp {
	longHelp := `Subcommand "plot" will calculate SI/TI metrics for given video file and
render multi-plot PNGs (per-frame values, histogram and CDF) for both
metrics. Input file is provided via -i flag and it is mandatory.

Examples:

  siti plot -i video.mp4 -o results/video
  siti plot -i video.yuv -width 1280 -height 720 -o results/video`

	app := &PlotApp{
		fs: flag.NewFlagSet("plot", flag.ContinueOnError),
	}
	app.gf.Register(app.fs)
	app.fs.StringVar(&app.flInput, "i", "", "Input video file (mandatory)")
	app.fs.StringVar(&app.flOutBase, "o", "", "Output base path for plot files, input file name when omitted (optional)")
	app.fs.IntVar(&app.flWidth, "width", 0, "Frame width (mandatory for raw planar input)")
	app.fs.IntVar(&app.flHeight, "height", 0, "Frame height (mandatory for raw planar input)")
	app.fs.StringVar(&app.flRange, "range", "full", "Luma sample range: full or limited")
	app.fs.IntVar(&app.flNumFrames, "n", 0, "Calculate metrics only for first N frames, 0 means all frames (optional)")
	app.fs.Usage = func() {
		printSubCommandUsage(longHelp, app.fs)
	}

	return app
}

func (a *PlotApp) Name() string {
	return a.fs.Name()
}

func (a *PlotApp) Help() {
	a.fs.Usage()
}

// init will do App state initialization.
func (a *PlotApp) init(args []string) error {
	if err := a.fs.Parse(args); err != nil {
		return &AppError{
			exitCode: 2,
			msg:      fmt.Sprintf("%s usage error", a.Name()),
		}
	}

	if a.gf.Debug {
		logging.EnableDebugLogger()
	}
	if a.gf.Quiet {
		logging.DisableWarnLogger()
	}

	if a.flInput == "" {
		a.Help()
		return &AppError{
			exitCode: 2,
			msg:      "mandatory option -i is missing",
		}
	}
	if !fileExists(a.flInput) {
		return &AppError{
			exitCode: 2,
			msg:      fmt.Sprintf("input file does not exist: %s", a.flInput),
		}
	}

	if a.flNumFrames != 0 && a.flNumFrames < 2 {
		return &AppError{
			exitCode: 2,
			msg:      fmt.Sprintf("invalid -n value %d: must be 2 or greater", a.flNumFrames),
		}
	}

	lumaRange, err := siti.ParseRangeMode(a.flRange)
	if err != nil {
		return &AppError{
			exitCode: 2,
			msg:      err.Error(),
		}
	}
	a.lumaRange = lumaRange

	if a.flOutBase == "" {
		base := path.Base(a.flInput)
		a.flOutBase = strings.TrimSuffix(base, path.Ext(base))
	}

	cfg, err := LoadConfig(a.gf.ConfFile)
	if err != nil {
		if a.gf.ConfFile != "" || !siti.IsRawInput(a.flInput) {
			return &AppError{
				exitCode: 1,
				msg:      fmt.Sprintf("configuration: %s", err),
			}
		}
		logging.Debugf("Proceeding without ffmpeg tools (raw input): %s", err)
	}
	a.cfg = cfg

	return nil
}

// Run is main entry point into PlotApp execution.
func (a *PlotApp) Run(args []string) error {
	if err := a.init(args); err != nil {
		return err
	}

	if !siti.IsRawInput(a.flInput) {
		if err := a.cfg.Verify(); err != nil {
			return &AppError{exitCode: 1, msg: fmt.Sprintf("configuration validation: %s", err)}
		}
	}

	src, err := siti.OpenSource(siti.SourceConfig{
		Input:          a.flInput,
		Width:          a.flWidth,
		Height:         a.flHeight,
		Range:          a.lumaRange,
		FfmpegPath:     a.cfg.FfmpegPath.Value(),
		FfprobePath:    a.cfg.FfprobePath.Value(),
		DecodeTemplate: a.cfg.FfmpegDecodeTemplate.Value(),
	})
	if err != nil {
		return &AppError{exitCode: 1, msg: fmt.Sprintf("opening %s: %s", a.flInput, err)}
	}

	logging.Infof("Analyzing %s", a.flInput)
	res, err := siti.Calculate(src, a.flNumFrames)
	if err != nil {
		return &AppError{exitCode: 1, msg: fmt.Sprintf("calculating %s: %s", a.flInput, err)}
	}

	title := path.Base(a.flInput)
	siPlot := a.flOutBase + "_si.png"
	tiPlot := a.flOutBase + "_ti.png"

	if err := analysis.MultiPlotMetric(res.SI, "SI", title, siPlot); err != nil {
		return &AppError{exitCode: 1, msg: fmt.Sprintf("creating SI multiplot: %s", err)}
	}
	logging.Infof("SI multi-plot done: %s", siPlot)

	if err := analysis.MultiPlotMetric(res.TI, "TI", title, tiPlot); err != nil {
		return &AppError{exitCode: 1, msg: fmt.Sprintf("creating TI multiplot: %s", err)}
	}
	logging.Infof("TI multi-plot done: %s", tiPlot)

	return nil
}
