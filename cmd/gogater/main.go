/*
DESCRIPTION
  gogater is a WebSocket server hosting the prospective optical gating
  core: it accepts a client connection streaming brightfield frames and
  replies with synchronisation decisions, per SPEC_FULL.md §6.

AUTHORS
  gogater contributors

LICENSE
  Copyright (C) 2026 the gogater contributors. All Rights Reserved.
*/

package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/ausocean/utils/logging"

	"github.com/cardiogate/gogater/align"
	"github.com/cardiogate/gogater/device"
	"github.com/cardiogate/gogater/device/camera"
	"github.com/cardiogate/gogater/gater"
	"github.com/cardiogate/gogater/gater/config"
	"github.com/cardiogate/gogater/observe"
	"github.com/cardiogate/gogater/server"
	"github.com/cardiogate/gogater/sink"
	"github.com/cardiogate/gogater/store"
	"github.com/cardiogate/gogater/wire"
)

const version = "v0.1.0"

// Logging configuration, mirroring the teacher's file-logger setup.
const (
	logPath      = "gogater.log"
	logMaxSize   = 100 // MB
	logMaxBackup = 5
	logMaxAge    = 28 // days
	logVerbosity = logging.Info
	logSuppress  = false
)

func main() {
	addr := flag.String("addr", ":8088", "listen address")
	frameRate := flag.Float64("rate", 80, "nominal acquisition frame rate (fps)")
	codecName := flag.String("codec", "cbor", "wire codec: cbor or json")
	refDir := flag.String("refdir", "", "directory to persist reference cycles to (empty disables persistence)")
	cameraInput := flag.String("camera", "", "v4l2 device path to capture frames from directly via ffmpeg, bypassing the WebSocket ingest (empty disables)")
	cameraWidth := flag.Int("camera-width", 640, "camera frame width in pixels")
	cameraHeight := flag.Int("camera-height", 480, "camera frame height in pixels")
	showVersion := flag.Bool("version", false, "show version")
	flag.Parse()

	if *showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	fileLog := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    logMaxSize,
		MaxBackups: logMaxBackup,
		MaxAge:     logMaxAge,
	}
	log := logging.New(logVerbosity, fileLog, logSuppress)
	log.Info("starting gogater", "version", version)

	codec := wire.CBOR
	if *codecName == "json" {
		codec = wire.JSON
	}

	cfg := config.New(*frameRate, log)
	cfg.PeriodDir = *refDir

	var st *store.Store
	if *refDir != "" {
		var err error
		st, err = store.New(*refDir, log)
		if err != nil {
			log.Fatal("could not open reference store", "error", errors.Wrap(err, "opening reference store").Error())
		}
	}

	tsink := sink.LogSink{Logger: log}
	oracle := align.New(cfg.AlignmentAxisLength)
	rec := observe.NewRecorder()

	g, err := gater.New(cfg, tsink, oracle, rec, st)
	if err != nil {
		log.Fatal("could not create gater", "error", errors.Wrap(err, "constructing gater").Error())
	}

	if *cameraInput != "" {
		cam := camera.New(*frameRate, log, camera.WithInputPath(*cameraInput), camera.WithSize(*cameraWidth, *cameraHeight))
		if err := cam.Start(); err != nil {
			log.Fatal("could not start camera", "error", errors.Wrap(err, "starting camera capture").Error())
		}
		go runSource(g, cam, log)
	}

	srv := server.New(g, codec, log)
	http.Handle("/gate", srv)

	log.Info("listening", "addr", *addr)
	if err := http.ListenAndServe(*addr, nil); err != nil {
		log.Fatal("server exited", "error", errors.Wrap(err, "serving HTTP").Error())
	}
}

// runSource feeds frames from a directly-attached acquisition Source
// (e.g. a live camera) through the gater, bypassing the WebSocket
// ingest path used by remote clients.
func runSource(g *gater.Gater, src device.Source, log logging.Logger) {
	for f := range src.Frames() {
		out, err := g.Process(f)
		if err != nil {
			log.Error("gater error", "source", src.Name(), "error", err.Error())
			continue
		}
		if g.NeedsUserSelection() {
			g.SelectTargetFrame(int(g.Config().ReferenceFrame))
		}
		if out.Meta.HasSync && out.Meta.Sync.SendTrigger {
			log.Info("trigger fired", "timestamp", f.Timestamp)
		}
	}
}
