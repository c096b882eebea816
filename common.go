// Copyright ©2022 Evolution. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Reusable parts of siti application and subcommand infrastructure.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/evolution-gaming/siti/internal/siti"
)

// Commander interface should be implemented by commands and sub-commands.
type Commander interface {
	Run([]string) error
	Name() string
	Help()
}

// AppError a custom error returned from CLI application.
//
// AppError is handy error type envisioned to be used in CLI's main.
// ExitCode() should be used as argument for os.Exit().
type AppError struct {
	msg      string
	exitCode int
}

// Error implements error interface for AppError.
func (e *AppError) Error() string {
	return e.msg
}

// ExitCode returns CLI application's exit code.
func (e *AppError) ExitCode() int {
	return e.exitCode
}

// printSubCommandUsage helper to format ad print subcommand's usage.
func printSubCommandUsage(longHelp string, fs *flag.FlagSet) {
	fmt.Fprintf(fs.Output(), "Usage of sub-command %s:\n\n", fs.Name())
	fmt.Fprintf(fs.Output(), "%s\n\n", longHelp)
	fs.PrintDefaults()
}

// fileExists is a simple helper to check if file exists.
func fileExists(f string) bool {
	fi, err := os.Stat(f)
	if err != nil {
		return false
	}
	return fi.Mode().IsRegular()
}

// sitiReport is the JSON document written for one analyzed input.
//
// Field names follow the de facto siti output convention. TI has
// frame_count-1 elements: the undefined first-frame value is omitted.
type sitiReport struct {
	Filename  string    `json:"filename"`
	SI        []float64 `json:"SI"`
	TI        []float64 `json:"TI"`
	AvgSI     float64   `json:"avgSI"`
	AvgTI     float64   `json:"avgTI"`
	MinSI     float64   `json:"minSI"`
	MaxSI     float64   `json:"maxSI"`
	MinTI     float64   `json:"minTI"`
	MaxTI     float64   `json:"maxTI"`
	StdSI     float64   `json:"stdSI"`
	StdTI     float64   `json:"stdTI"`
	NumFrames int       `json:"numFrames"`
}

// newSitiReport assembles report document from calculation result.
func newSitiReport(fileName string, res siti.Result) sitiReport {
	sum := res.Summarize()
	return sitiReport{
		Filename:  fileName,
		SI:        res.SI,
		TI:        res.TI,
		AvgSI:     sum.SI.Mean,
		AvgTI:     sum.TI.Mean,
		MinSI:     sum.SI.Min,
		MaxSI:     sum.SI.Max,
		MinTI:     sum.TI.Min,
		MaxTI:     sum.TI.Max,
		StdSI:     sum.SI.StDev,
		StdTI:     sum.TI.StDev,
		NumFrames: res.FrameCount,
	}
}

// writeJSONReport writes report document(s) as indented JSON. A single
// report is written as an object for compatibility with classic siti
// output, multiple reports as an array.
func writeJSONReport(w io.Writer, reports []sitiReport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if len(reports) == 1 {
		return enc.Encode(reports[0])
	}
	return enc.Encode(reports)
}
