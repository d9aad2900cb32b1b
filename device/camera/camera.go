// Package camera provides a device.Source that reads raw grayscale frames
// from a live camera via an ffmpeg subprocess, for online acquisition of
// microscopy video as an alternative to the synthetic and TIFF-replay
// sources.
package camera

import (
	"bufio"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"os/exec"
	"time"

	"github.com/ausocean/utils/logging"

	"github.com/cardiogate/gogater/device"
	"github.com/cardiogate/gogater/frame"
)

// Configuration defaults.
const (
	defaultInputPath = "/dev/video0"
	defaultFrameRate = 80
	defaultWidth     = 64
	defaultHeight    = 64
)

// Camera streams rawvideo gray16le frames from a V4L2-style device using an
// ffmpeg subprocess, decoding each frame into a frame.Frame and publishing it
// on a channel.
type Camera struct {
	log       logging.Logger
	inputPath string
	width     int
	height    int
	frameRate float64

	cmd       *exec.Cmd
	cancel    context.CancelFunc
	out       chan frame.Frame
	isRunning bool
}

// Option configures a Camera.
type Option func(*Camera)

// WithInputPath sets the capture device path. Default "/dev/video0".
func WithInputPath(path string) Option {
	return func(c *Camera) { c.inputPath = path }
}

// WithSize sets the raw frame dimensions in pixels.
func WithSize(width, height int) Option {
	return func(c *Camera) { c.width, c.height = width, height }
}

// New returns a Camera capturing at frameRate frames per second.
func New(frameRate float64, log logging.Logger, opts ...Option) *Camera {
	c := &Camera{
		log:       log,
		inputPath: defaultInputPath,
		width:     defaultWidth,
		height:    defaultHeight,
		frameRate: frameRate,
		out:       make(chan frame.Frame, 4),
	}
	if c.frameRate <= 0 {
		c.frameRate = defaultFrameRate
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Camera) Name() string { return "Camera(" + c.inputPath + ")" }

// Start launches ffmpeg to capture gray16le rawvideo and begins decoding
// frames in the background.
func (c *Camera) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel

	args := []string{
		"-f", "v4l2",
		"-video_size", fmt.Sprintf("%dx%d", c.width, c.height),
		"-framerate", fmt.Sprint(c.frameRate),
		"-i", c.inputPath,
		"-pix_fmt", "gray16le",
		"-f", "rawvideo",
		"-",
	}
	c.log.Info("camera: starting ffmpeg", "args", args)
	c.cmd = exec.CommandContext(ctx, "ffmpeg", args...)

	stdout, err := c.cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("camera: could not pipe stdout: %w", err)
	}
	stderr, err := c.cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("camera: could not pipe stderr: %w", err)
	}
	if err := c.cmd.Start(); err != nil {
		return fmt.Errorf("camera: could not start ffmpeg: %w", err)
	}
	c.isRunning = true

	go c.logStderr(stderr)
	go c.readFrames(stdout)

	return nil
}

func (c *Camera) logStderr(r io.Reader) {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		c.log.Debug("camera: ffmpeg", "line", sc.Text())
	}
}

// readFrames decodes fixed-size gray16le frames from r until it closes.
func (c *Camera) readFrames(r io.Reader) {
	defer close(c.out)

	frameBytes := c.width * c.height * 2
	buf := make([]byte, frameBytes)
	start := time.Now()
	n := 0
	for {
		if _, err := io.ReadFull(r, buf); err != nil {
			if err != io.EOF && err != io.ErrUnexpectedEOF {
				c.log.Error("camera: read error", "error", err)
			}
			return
		}
		values := make([]uint16, c.width*c.height)
		for i := range values {
			values[i] = binary.LittleEndian.Uint16(buf[2*i : 2*i+2])
		}
		ts := time.Since(start).Seconds()
		c.out <- frame.Frame{
			Pixels:    frame.NewPixels16(c.height, c.width, values),
			Timestamp: ts,
		}
		n++
	}
}

func (c *Camera) Stop() error {
	if !c.isRunning {
		return nil
	}
	c.isRunning = false
	c.cancel()
	return c.cmd.Wait()
}

func (c *Camera) IsRunning() bool { return c.isRunning }

func (c *Camera) Frames() <-chan frame.Frame { return c.out }

var _ device.Source = (*Camera)(nil)
