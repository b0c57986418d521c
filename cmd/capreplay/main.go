package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/urfave/cli"

	"github.com/valerio/go-capreplay/capreplay/app"
	"github.com/valerio/go-capreplay/capreplay/decode"
	"github.com/valerio/go-capreplay/capreplay/platform"
	"github.com/valerio/go-capreplay/capreplay/platform/headless"
	"github.com/valerio/go-capreplay/capreplay/platform/term"
	"github.com/valerio/go-capreplay/capreplay/timing"
)

func main() {
	cliApp := cli.NewApp()
	cliApp.Name = "capreplay"
	cliApp.Description = "A graphics-capture replay tool"
	cliApp.Usage = "capreplay [options] <capture file>"
	cliApp.Version = "1.0.0"
	cliApp.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "name",
			Usage: "Display name for the replay session",
			Value: "capreplay",
		},
		cli.BoolFlag{
			Name:  "headless",
			Usage: "Replay without a terminal interface",
		},
		cli.UintFlag{
			Name:  "frames",
			Usage: "Stop after this many frames in headless mode (0 = replay the whole capture)",
		},
		cli.UintFlag{
			Name:  "pause-frame",
			Usage: "Pause replay after the given frame (0 = disabled)",
		},
		cli.StringFlag{
			Name:  "measurement-frame-range",
			Usage: "Compute replay FPS over the frame range <start>-<end> (end exclusive)",
		},
		cli.BoolFlag{
			Name:  "quit-after-measurement-range",
			Usage: "Stop replay once the measurement range end frame is reached",
		},
		cli.BoolFlag{
			Name:  "flush-measurement-range",
			Usage: "Wait for replay to go idle before sampling measurement timestamps",
		},
		cli.Float64Flag{
			Name:  "speed-fps",
			Usage: "Pace replay at the given frame rate (0 = as fast as possible)",
		},
	}
	cliApp.Action = runReplay

	if err := cliApp.Run(os.Args); err != nil {
		slog.Error("Error running replay", "error", err)
		os.Exit(1)
	}
}

func runReplay(c *cli.Context) error {
	if c.NArg() < 1 {
		cli.ShowAppHelp(c)
		return errors.New("no capture file provided")
	}
	capturePath := c.Args().Get(0)

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))

	cfg := app.DefaultRunConfig()
	if rangeArg := c.String("measurement-frame-range"); rangeArg != "" {
		start, end, err := parseFrameRange(rangeArg)
		if err != nil {
			return err
		}
		cfg.MeasurementStartFrame = start
		cfg.MeasurementEndFrame = end
	}
	cfg.QuitAfterRange = c.Bool("quit-after-measurement-range")
	cfg.FlushRange = c.Bool("flush-measurement-range")

	var limiter timing.Limiter
	if fps := c.Float64("speed-fps"); fps > 0 {
		limiter = timing.NewAdaptiveLimiter(fps)
	}

	processor, err := decode.Open(capturePath, limiter)
	if err != nil {
		return err
	}
	defer processor.Close()

	var plat platform.Platform
	if c.Bool("headless") {
		plat = headless.New(uint32(c.Uint("frames")))
	} else {
		plat = term.New()
	}

	a := app.New(c.String("name"), plat)
	defer a.Close()

	if frame := uint32(c.Uint("pause-frame")); frame > 0 {
		a.SetPauseFrame(frame)
	}

	if err := a.Initialize(processor); err != nil {
		return err
	}
	defer plat.Cleanup()

	slog.Info("Starting replay session",
		"session", uuid.NewString(),
		"capture", capturePath,
		"headless", c.Bool("headless"))

	err = a.Run(cfg)

	slog.Info("Replay finished",
		"frames", processor.CurrentFrameNumber(),
		"commands", processor.CommandCount())

	return err
}

// parseFrameRange parses a "<start>-<end>" measurement range argument.
func parseFrameRange(arg string) (start, end uint32, err error) {
	parts := strings.Split(arg, "-")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid measurement frame range %q, expected <start>-<end>", arg)
	}

	s, err := strconv.ParseUint(parts[0], 10, 32)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid measurement range start frame %q", parts[0])
	}
	e, err := strconv.ParseUint(parts[1], 10, 32)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid measurement range end frame %q", parts[1])
	}

	return uint32(s), uint32(e), nil
}
