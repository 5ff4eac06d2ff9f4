// Package terminal shows counters on a tcell screen.
package terminal

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/matt-g-everett/ledcount/anim"
)

const barWidth = 20

// Display draws one line per counter.
type Display struct {
	screen tcell.Screen

	mu        sync.Mutex
	names     []string
	snapshots map[string]anim.Snapshot
}

// NewDisplay wraps an initialised screen.
func NewDisplay(screen tcell.Screen) *Display {
	d := new(Display)
	d.screen = screen
	d.snapshots = make(map[string]anim.Snapshot)
	return d
}

// Update records the latest snapshot of a counter.
func (d *Display) Update(s anim.Snapshot) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, found := d.snapshots[s.Name]; !found {
		d.names = append(d.names, s.Name)
	}
	d.snapshots[s.Name] = s
}

// Line formats a snapshot as "name: text [####......]".
func Line(s anim.Snapshot) string {
	lit := int(math.Floor(s.Progress * barWidth))
	if lit > barWidth {
		lit = barWidth
	}
	if lit < 0 {
		lit = 0
	}
	return fmt.Sprintf("%s: %s [%s%s]", s.Name, s.Text, strings.Repeat("#", lit), strings.Repeat(".", barWidth-lit))
}

func styleFor(state anim.State) tcell.Style {
	switch state {
	case anim.Running:
		return tcell.StyleDefault.Foreground(tcell.ColorYellow)
	case anim.Completed:
		return tcell.StyleDefault.Foreground(tcell.ColorGreen)
	case anim.Cancelled:
		return tcell.StyleDefault.Foreground(tcell.ColorRed)
	default:
		return tcell.StyleDefault
	}
}

// Draw renders every known counter and shows the screen.
func (d *Display) Draw() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.screen.Clear()
	width, height := d.screen.Size()
	for y, name := range d.names {
		if y >= height {
			break
		}

		s := d.snapshots[name]
		style := styleFor(s.State)
		x := 0
		for _, r := range Line(s) {
			if x >= width {
				break
			}
			d.screen.SetContent(x, y, r, nil, style)
			x++
		}
	}
	d.screen.Show()
}

// Run polls screen events until a quit key is pressed or ctx is done.
func (d *Display) Run(ctx context.Context) error {
	eventChan := make(chan tcell.Event, 16)
	go pollEvents(ctx, d.screen, eventChan)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-eventChan:
			if !ok {
				return nil
			}
			if quit(ev) {
				return nil
			}
			if _, resized := ev.(*tcell.EventResize); resized {
				d.screen.Sync()
				d.Draw()
			}
		}
	}
}

// pollEvents forwards screen events to out until the screen is finalised or
// ctx is done. out is closed on return.
func pollEvents(ctx context.Context, screen tcell.Screen, out chan<- tcell.Event) {
	defer close(out)
	for {
		ev := screen.PollEvent()
		if ev == nil {
			return
		}
		select {
		case out <- ev:
		case <-ctx.Done():
			return
		}
	}
}

func quit(ev tcell.Event) bool {
	key, ok := ev.(*tcell.EventKey)
	if !ok {
		return false
	}
	return key.Key() == tcell.KeyEscape || key.Key() == tcell.KeyCtrlC ||
		(key.Key() == tcell.KeyRune && key.Rune() == 'q')
}
