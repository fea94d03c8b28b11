package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli"

	"github.com/valerio/go-dotmatrix/dotmatrix"
	"github.com/valerio/go-dotmatrix/dotmatrix/render"
)

func main() {
	app := cli.NewApp()
	app.Name = "dotmatrix"
	app.Description = "A Game Boy (DMG) emulator core"
	app.Usage = "dotmatrix [options] <ROM file>"
	app.Version = "1.0.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "rom",
			Usage: "Path to the ROM file",
		},
		cli.StringFlag{
			Name:  "boot-rom",
			Usage: "Path to a 256-byte DMG boot ROM (omit to start post-boot)",
		},
		cli.BoolFlag{
			Name:  "headless",
			Usage: "Run without a terminal interface",
		},
		cli.IntFlag{
			Name:  "frames",
			Usage: "Number of frames to run in headless mode",
			Value: 0,
		},
		cli.StringFlag{
			Name:  "load-state",
			Usage: "Load a save state before running",
		},
		cli.StringFlag{
			Name:  "dump-state",
			Usage: "Write a save state to this path when the run ends",
		},
		cli.BoolFlag{
			Name:  "snapshot",
			Usage: "Print the final frame as text in headless mode",
		},
		cli.BoolFlag{
			Name:  "debug",
			Usage: "Enable debug logging",
		},
	}
	app.Action = runEmulator

	if err := app.Run(os.Args); err != nil {
		slog.Error("error running emulator", "error", err)
		os.Exit(1)
	}
}

func runEmulator(c *cli.Context) error {
	level := slog.LevelInfo
	if c.Bool("debug") {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	romPath := c.String("rom")
	if romPath == "" {
		if c.NArg() > 0 {
			romPath = c.Args().Get(0)
		} else {
			cli.ShowAppHelp(c)
			return errors.New("no ROM path provided")
		}
	}

	emu, err := buildEmulator(romPath, c.String("boot-rom"), c.String("load-state"))
	if err != nil {
		return err
	}

	if c.Bool("headless") {
		if err := runHeadless(emu, c.Int("frames"), c.Bool("snapshot")); err != nil {
			return err
		}
	} else {
		renderer, err := render.NewTerminalRenderer(emu)
		if err != nil {
			return err
		}
		if err := renderer.Run(); err != nil {
			return err
		}
	}

	if statePath := c.String("dump-state"); statePath != "" {
		state, err := emu.DumpSaveState()
		if err != nil {
			return fmt.Errorf("dumping save state: %w", err)
		}
		if err := os.WriteFile(statePath, state, 0644); err != nil {
			return err
		}
		slog.Info("save state written", "path", statePath, "size", len(state))
	}
	return nil
}

func buildEmulator(romPath, bootROMPath, statePath string) (*dotmatrix.Emulator, error) {
	if statePath != "" {
		rom, err := os.ReadFile(romPath)
		if err != nil {
			return nil, err
		}
		state, err := os.ReadFile(statePath)
		if err != nil {
			return nil, err
		}
		slog.Info("resuming from save state", "path", statePath)
		return dotmatrix.LoadSaveState(rom, state)
	}
	return dotmatrix.NewFromFile(romPath, bootROMPath)
}

func runHeadless(emu *dotmatrix.Emulator, frames int, snapshot bool) error {
	if frames <= 0 {
		return errors.New("headless mode requires --frames with a positive value")
	}
	for i := 0; i < frames; i++ {
		emu.RunFrame()
		if (i+1)%60 == 0 {
			slog.Info("frame progress", "completed", i+1, "total", frames)
		}
	}
	if snapshot {
		for _, line := range render.FrameToText(emu.ResolveDisplay()) {
			fmt.Println(line)
		}
	}
	slog.Info("headless execution completed", "frames", frames)
	return nil
}
