package render

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/valerio/go-dotmatrix/dotmatrix"
	"github.com/valerio/go-dotmatrix/dotmatrix/memory"
	"github.com/valerio/go-dotmatrix/dotmatrix/video"
)

const frameTime = time.Second / 60

// colorPalette maps LCD colors to terminal colors for the half-block cells.
var colorPalette = [4]tcell.Color{
	tcell.NewRGBColor(0xFF, 0xFF, 0xFF),
	tcell.NewRGBColor(0x98, 0x98, 0x98),
	tcell.NewRGBColor(0x4C, 0x4C, 0x4C),
	tcell.NewRGBColor(0x00, 0x00, 0x00),
}

// TerminalRenderer runs an emulator at 60 Hz and draws the display into the
// terminal, two pixel rows per text row.
type TerminalRenderer struct {
	screen   tcell.Screen
	emulator *dotmatrix.Emulator
	running  bool

	pressed memory.ButtonSet
}

// NewTerminalRenderer initializes the terminal screen.
func NewTerminalRenderer(emu *dotmatrix.Emulator) (*TerminalRenderer, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize terminal: %w", err)
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize terminal: %w", err)
	}
	return &TerminalRenderer{
		screen:   screen,
		emulator: emu,
		running:  true,
	}, nil
}

// Run drives the emulator frame loop until the user quits or the process is
// signalled.
func (t *TerminalRenderer) Run() error {
	defer t.screen.Fini()

	t.screen.SetStyle(tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite))
	t.screen.Clear()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP, syscall.SIGQUIT)

	events := make(chan tcell.Event, 16)
	go func() {
		for {
			events <- t.screen.PollEvent()
		}
	}()

	ticker := time.NewTicker(frameTime)
	defer ticker.Stop()

	for t.running {
		select {
		case <-ticker.C:
			t.emulator.SetPressedButtons(t.pressed)
			// buttons act as taps; held keys re-press on the next event
			t.pressed = 0
			t.emulator.RunFrame()
			t.render()
			t.screen.Show()
		case ev := <-events:
			t.handleEvent(ev)
		case <-signals:
			slog.Info("received signal, stopping")
			t.running = false
		}
	}
	return nil
}

func (t *TerminalRenderer) handleEvent(ev tcell.Event) {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			t.running = false
		case tcell.KeyEnter:
			t.pressed = t.pressed.Add(memory.ButtonStart)
		case tcell.KeyRight:
			t.pressed = t.pressed.Add(memory.ButtonRight)
		case tcell.KeyLeft:
			t.pressed = t.pressed.Add(memory.ButtonLeft)
		case tcell.KeyUp:
			t.pressed = t.pressed.Add(memory.ButtonUp)
		case tcell.KeyDown:
			t.pressed = t.pressed.Add(memory.ButtonDown)
		case tcell.KeyRune:
			switch ev.Rune() {
			case 'a':
				t.pressed = t.pressed.Add(memory.ButtonA)
			case 's':
				t.pressed = t.pressed.Add(memory.ButtonB)
			case 'q':
				t.pressed = t.pressed.Add(memory.ButtonSelect)
			}
		}
	case *tcell.EventResize:
		t.screen.Sync()
	}
}

func (t *TerminalRenderer) render() {
	cells := FrameToHalfBlockCells(t.emulator.ResolveDisplay())
	for y := range cells {
		for x := 0; x < video.FrameWidth; x++ {
			cell := cells[y][x]
			style := tcell.StyleDefault.
				Foreground(colorPalette[cell.Top&0x03]).
				Background(colorPalette[cell.Bottom&0x03])
			t.screen.SetContent(x, y, '▀', nil, style)
		}
	}
}
