// Copyright ©2022 Evolution. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// siti tool's run subcommand implementation.

package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"os"
	"path"

	"github.com/jszwec/csvutil"

	"github.com/evolution-gaming/siti/internal/logging"
	"github.com/evolution-gaming/siti/internal/metric"
	"github.com/evolution-gaming/siti/internal/siti"
)

// Make sure RunApp implements Commander interface.
var _ Commander = (*RunApp)(nil)

// RunApp is run subcommand application context that implements Commander interface.
type RunApp struct {
	// FlagSet instance
	fs *flag.FlagSet
	// Input video file paths (positional arguments)
	inputs []string
	// Frame width for raw planar input
	flWidth int
	// Frame height for raw planar input
	flHeight int
	// Luma sample range of input
	flRange string
	// Calculate metrics only for first N frames
	flNumFrames int
	// JSON report output file
	flOutFile string
	// Combined CSV report output file
	flCsvFile string
	// Include gradient map border samples in SI
	flFullSiMap bool
	// Global flags
	gf globalFlags
	// Application configuration
	cfg Config
	// Metric store instance to keep per-input records
	mStore *metric.Store
	// Parsed luma range
	lumaRange siti.RangeMode
}

// CreateRunCommand will create Commander instance from RunApp.
func CreateRunCommand() *RunApp {
	longHelp := `Subcommand "run" will calculate Spatial Information (SI) and Temporal
Information (TI) metrics as defined in ITU-T Rec. P.910 for given video files.

Container inputs (mp4, mkv, webm etc.) are decoded with ffmpeg. Files with
.yuv or .raw suffix are treated as headerless raw planar YUV 4:2:0 and
require -width and -height flags.

Examples:

  siti run video.mp4
  siti run -o report.json video1.mp4 video2.mp4
  siti run -width 1280 -height 720 -range limited video.yuv`

	app := &RunApp{
		fs:     flag.NewFlagSet("run", flag.ContinueOnError),
		mStore: metric.NewStore(),
	}
	app.gf.Register(app.fs)
	app.fs.IntVar(&app.flWidth, "width", 0, "Frame width (mandatory for raw planar input)")
	app.fs.IntVar(&app.flHeight, "height", 0, "Frame height (mandatory for raw planar input)")
	app.fs.StringVar(&app.flRange, "range", "full", "Luma sample range: full or limited")
	app.fs.IntVar(&app.flNumFrames, "n", 0, "Calculate metrics only for first N frames, 0 means all frames (optional)")
	app.fs.StringVar(&app.flOutFile, "o", "", "JSON report output file, stdout when omitted (optional)")
	app.fs.StringVar(&app.flCsvFile, "csv", "", "Combined CSV report output file (optional)")
	app.fs.BoolVar(&app.flFullSiMap, "full-si-map", false, "Include gradient map border samples in SI calculation (optional)")
	app.fs.Usage = func() {
		printSubCommandUsage(longHelp, app.fs)
	}

	return app
}

func (a *RunApp) Name() string {
	return a.fs.Name()
}

func (a *RunApp) Help() {
	a.fs.Usage()
}

// init will do App state initialization.
func (a *RunApp) init(args []string) error {
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

	a.inputs = a.fs.Args()
	if len(a.inputs) == 0 {
		a.Help()
		return &AppError{
			exitCode: 2,
			msg:      "at least one input file is required",
		}
	}

	for _, input := range a.inputs {
		if !fileExists(input) {
			return &AppError{
				exitCode: 2,
				msg:      fmt.Sprintf("input file does not exist: %s", input),
			}
		}
	}

	// A frame limit of 1 would make TI an empty sequence which is of no use,
	// negative limits are plain nonsense.
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

	cfg, err := LoadConfig(a.gf.ConfFile)
	if err != nil {
		// Raw planar inputs do not require external tools, so a missing
		// ffmpeg installation is fatal only when container inputs are given.
		// An explicitly provided config file is always expected to load.
		if a.gf.ConfFile != "" || !allRawInputs(a.inputs) {
			return &AppError{
				exitCode: 1,
				msg:      fmt.Sprintf("configuration: %s", err),
			}
		}
		logging.Debugf("Proceeding without ffmpeg tools (raw inputs only): %s", err)
	}
	a.cfg = cfg

	return nil
}

// allRawInputs reports if every input is a headerless raw planar file.
func allRawInputs(inputs []string) bool {
	for _, input := range inputs {
		if !siti.IsRawInput(input) {
			return false
		}
	}
	return true
}

// analyzeInput will calculate metrics for a single input file and record
// results in the metric store.
func (a *RunApp) analyzeInput(input string) (sitiReport, error) {
	var report sitiReport

	// Insert preliminary record early, final metric values are filled in
	// with an update once calculation completes.
	id := a.mStore.Insert(metric.Record{
		Name:       path.Base(input),
		SourceFile: input,
	})

	src, err := siti.OpenSource(siti.SourceConfig{
		Input:          input,
		Width:          a.flWidth,
		Height:         a.flHeight,
		Range:          a.lumaRange,
		FfmpegPath:     a.cfg.FfmpegPath.Value(),
		FfprobePath:    a.cfg.FfprobePath.Value(),
		DecodeTemplate: a.cfg.FfmpegDecodeTemplate.Value(),
	})
	if err != nil {
		return report, fmt.Errorf("opening %s: %w", input, err)
	}

	eng := siti.NewEngineOpts(siti.EngineOpts{CropBorder: !a.flFullSiMap})
	res, err := siti.CalculateWith(eng, src, a.flNumFrames)
	if err != nil {
		return report, fmt.Errorf("calculating %s: %w", input, err)
	}

	sum := res.Summarize()
	err = a.mStore.Update(id, metric.Record{
		Name:       path.Base(input),
		SourceFile: input,
		Width:      res.Width,
		Height:     res.Height,
		FrameCount: res.FrameCount,
		SIMean:     sum.SI.Mean,
		SIMin:      sum.SI.Min,
		SIMax:      sum.SI.Max,
		SIStDev:    sum.SI.StDev,
		TIMean:     sum.TI.Mean,
		TIMin:      sum.TI.Min,
		TIMax:      sum.TI.Max,
		TIStDev:    sum.TI.StDev,
	})
	if err != nil {
		return report, fmt.Errorf("updating metric store record: %w", err)
	}

	return newSitiReport(input, res), nil
}

// saveCsvReport writes recorded metrics to CSV report file.
func (a *RunApp) saveCsvReport() error {
	ids := a.mStore.GetIDs()
	report := make([]metric.Record, 0, len(ids))
	for _, id := range ids {
		r, err := a.mStore.Get(id)
		if err != nil {
			return fmt.Errorf("getting record (id=%v) from metric store: %w", id, err)
		}
		report = append(report, r)
	}

	reportOut, err := os.Create(a.flCsvFile)
	if err != nil {
		return fmt.Errorf("creating CSV report file: %w", err)
	}
	defer reportOut.Close()

	w := csv.NewWriter(reportOut)
	if err := csvutil.NewEncoder(w).Encode(report); err != nil {
		return fmt.Errorf("writing CSV report: %w", err)
	}
	w.Flush()

	return w.Error()
}

// Run is main entry point into RunApp execution.
func (a *RunApp) Run(args []string) error {
	if err := a.init(args); err != nil {
		return err
	}

	logging.Debugf("Application configuration: %#v", a.cfg)

	// Container inputs need working ffmpeg and ffprobe.
	if !allRawInputs(a.inputs) {
		if err := a.cfg.Verify(); err != nil {
			return &AppError{exitCode: 1, msg: fmt.Sprintf("configuration validation: %s", err)}
		}
	}

	reports := make([]sitiReport, 0, len(a.inputs))
	for _, input := range a.inputs {
		logging.Infof("Analyzing %s", input)
		report, err := a.analyzeInput(input)
		if err != nil {
			return &AppError{exitCode: 1, msg: err.Error()}
		}
		logging.Infof("Frames: %d, avg SI: %.3f, avg TI: %.3f",
			report.NumFrames, report.AvgSI, report.AvgTI)
		reports = append(reports, report)
	}

	out := os.Stdout
	if a.flOutFile != "" {
		fd, err := os.Create(a.flOutFile)
		if err != nil {
			return &AppError{exitCode: 1, msg: fmt.Sprintf("creating report file: %s", err)}
		}
		defer fd.Close()
		out = fd
	}
	if err := writeJSONReport(out, reports); err != nil {
		return &AppError{exitCode: 1, msg: fmt.Sprintf("writing JSON report: %s", err)}
	}

	if a.flCsvFile != "" {
		if err := a.saveCsvReport(); err != nil {
			return &AppError{exitCode: 1, msg: err.Error()}
		}
		logging.Infof("CSV report done: %s", a.flCsvFile)
	}

	return nil
}
