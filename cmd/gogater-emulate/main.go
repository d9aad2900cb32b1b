/*
DESCRIPTION
  gogater-emulate drives a Gater directly against either a synthetic
  sinusoidal signal or a directory of pre-recorded TIFF frames, without
  a network round trip, for offline testing and the S1 scenario of
  SPEC_FULL.md §11.

AUTHORS
  gogater contributors

LICENSE
  Copyright (C) 2026 the gogater contributors. All Rights Reserved.
*/

package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/pkg/errors"

	"github.com/ausocean/utils/logging"

	"github.com/cardiogate/gogater/align"
	"github.com/cardiogate/gogater/device"
	"github.com/cardiogate/gogater/device/sim"
	"github.com/cardiogate/gogater/device/tiffdir"
	"github.com/cardiogate/gogater/gater"
	"github.com/cardiogate/gogater/gater/config"
	"github.com/cardiogate/gogater/observe"
	"github.com/cardiogate/gogater/sink"
)

const version = "v0.1.0"

func main() {
	frameRate := flag.Float64("rate", 80, "frame rate (fps)")
	numFrames := flag.Int("frames", 1000, "number of frames to generate (sinusoid mode only)")
	freq := flag.Float64("freq", 1.6, "sinusoid frequency (Hz, sinusoid mode only)")
	tiffDir := flag.String("dir", "", "replay TIFF files from this directory instead of generating a sinusoid")
	plotPath := flag.String("plot", "", "save a phase-trace PNG to this path (empty disables plotting)")
	showVersion := flag.Bool("version", false, "show version")
	flag.Parse()

	if *showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	log := logging.New(logging.Info, os.Stderr, false)

	var src device.Source
	if *tiffDir != "" {
		src = tiffdir.New(*tiffDir, *frameRate)
	} else {
		src = sim.New(*frameRate, *freq, *numFrames, 100, 128)
	}

	cfg := config.New(*frameRate, log)
	oracle := align.New(cfg.AlignmentAxisLength)
	rec := observe.NewRecorder()
	tsink := sink.LogSink{Logger: log}

	g, err := gater.New(cfg, tsink, oracle, rec, nil)
	if err != nil {
		log.Fatal("could not create gater", "error", errors.Wrap(err, "constructing gater").Error())
	}

	if err := src.Start(); err != nil {
		log.Fatal("could not start source", "error", errors.Wrap(err, "starting frame source").Error())
	}

	triggers := 0
	for f := range src.Frames() {
		out, err := g.Process(f)
		if err != nil {
			log.Error("gater error", "error", err.Error())
			continue
		}
		if g.NeedsUserSelection() {
			// Accept the auto-picked target/barrier as-is; an
			// interactive caller would inspect the reference cycle
			// before confirming.
			g.SelectTargetFrame(int(g.Config().ReferenceFrame))
		}
		if out.Meta.HasSync && out.Meta.Sync.SendTrigger {
			triggers++
		}
	}

	log.Info("emulation complete", "triggers", triggers, "rate", rec.Rate.Rate())

	if *plotPath != "" {
		if err := rec.Plot.Save(*plotPath, 8*72, 4*72); err != nil {
			log.Error("could not save plot", "error", errors.Wrap(err, "saving phase-trace plot").Error())
		}
	}
}
