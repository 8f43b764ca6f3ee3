package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"

	animotion "github.com/lixenwraith/animotion"
	"github.com/lixenwraith/animotion/clip"
	"github.com/lixenwraith/animotion/clip/category"
	"github.com/lixenwraith/animotion/clock"
	"github.com/lixenwraith/animotion/host"
	"github.com/lixenwraith/animotion/sched/events"
)

const renderTick = 33 * time.Millisecond

// debugger owns the screen, the audio cue, and the fold state built by
// draining a Root's event queue directly (Root.Events() also exposes a
// Router for handler-based consumers; this tool is a single consumer
// and reads the queue itself instead).
type debugger struct {
	screen tcell.Screen
	state  *State

	audioInit bool
}

func newDebugger() (*debugger, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := screen.Init(); err != nil {
		return nil, err
	}

	d := &debugger{
		screen: screen,
		state:  NewState(),
	}
	if err := d.initAudio(); err != nil {
		log.Printf("animotion-debugger: audio init failed, running muted: %v", err)
	}
	return d, nil
}

func (d *debugger) initAudio() error {
	rate := beep.SampleRate(44100)
	if err := speaker.Init(rate, rate.N(time.Second/10)); err != nil {
		return err
	}
	d.audioInit = true
	return nil
}

// playStallCue sounds a short tone whenever the state fold reports a
// RoadblockStalled event (spec.md "roadblock" clips waiting on an
// unresolved promise).
func (d *debugger) playStallCue() {
	if !d.audioInit {
		return
	}
	rate := beep.SampleRate(44100)
	tone, err := generators.SineTone(rate, 220)
	if err != nil {
		return
	}
	speaker.Play(beep.Take(rate.N(120*time.Millisecond), tone))
}

// drain pulls every pending event off q and folds it into state.
func (d *debugger) drain(q *events.Queue) {
	for _, ev := range q.Consume() {
		if d.state.Apply(ev) {
			d.playStallCue()
		}
	}
}

func (d *debugger) draw() {
	d.screen.Clear()
	width, height := d.screen.Size()

	drawLine(d.screen, 0, 0, width, d.state.summaryLine(), tcell.StyleDefault.Bold(true))

	start := 0
	if n := len(d.state.Lines); n > height-2 {
		start = n - (height - 2)
	}
	row := 2
	for _, line := range d.state.Lines[start:] {
		drawLine(d.screen, 0, row, width, line, tcell.StyleDefault)
		row++
	}

	d.screen.Show()
}

func drawLine(screen tcell.Screen, x, y, width int, s string, style tcell.Style) {
	for i, r := range s {
		if x+i >= width {
			return
		}
		screen.SetContent(x+i, y, r, nil, style)
	}
}

func (d *debugger) handleInput(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC ||
			(ev.Key() == tcell.KeyRune && ev.Rune() == 'q') {
			return false
		}
	}
	return true
}

func (d *debugger) run(q *events.Queue) {
	ticker := time.NewTicker(renderTick)
	defer ticker.Stop()

	eventChan := make(chan tcell.Event, 100)
	go func() {
		for {
			eventChan <- d.screen.PollEvent()
		}
	}()

	for {
		select {
		case ev := <-eventChan:
			if !d.handleInput(ev) {
				return
			}
		case <-ticker.C:
			d.drain(q)
			d.draw()
		}
	}
}

func (d *debugger) cleanup() {
	if d.audioInit {
		speaker.Close()
	}
	d.screen.Fini()
}

// demoRoot builds a small self-contained animotion.Root with one
// registered pulse effect, the way cmd/tui-demo exercises the terminal
// package against synthetic state rather than a real game session.
func demoRoot() (*animotion.Root, host.Element) {
	root := animotion.New(animotion.Config{})
	root.Bank().Register(category.Emphasis, "pulse", clip.BankEntry{
		Shape: clip.ShapeKeyframes,
		Keyframes: func(*clip.Clip, []any) ([]host.Keyframe, []host.Keyframe) {
			return []host.Keyframe{
				{Properties: map[string]any{"transform": "scale(1)"}},
				{Properties: map[string]any{"transform": "scale(1.2)"}},
			}, nil
		},
	})
	el := host.NewSimElement(clock.NewRealSource(), "<div class=demo>")
	return root, el
}

// runDemo alternately plays and rewinds a demo clip so the visualizer
// has a continuous stream of ClipStarted/ClipFinished events to show.
func runDemo(root *animotion.Root, el host.Element) {
	forward := true
	for {
		time.Sleep(900 * time.Millisecond)
		c, err := root.NewEmphasis(el, "pulse", nil, clip.Config{})
		if err != nil {
			continue
		}
		if forward {
			c.Play()
		} else {
			c.Rewind()
		}
		forward = !forward
	}
}

func main() {
	root, el := demoRoot()
	queue, _ := root.Events()

	d, err := newDebugger()
	if err != nil {
		fmt.Fprintln(os.Stderr, "animotion-debugger:", err)
		os.Exit(1)
	}
	defer d.cleanup()

	go runDemo(root, el)

	d.run(queue)
}
