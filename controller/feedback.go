package controller

import (
	"time"

	"github.com/CrowderSoup/taskdesk/dom"
)

// Feedback colors.
const (
	ColorError   = "red"
	ColorSuccess = "green"
)

const fadeClass = "fade-in"

// Feedback shows transient messages on an element and clears them after a
// delay. A newer message on the same element replaces the pending reset.
type Feedback struct {
	loop     Scheduler
	duration time.Duration
	resets   map[*dom.Element]*time.Timer
}

func NewFeedback(loop Scheduler, duration time.Duration) *Feedback {
	return &Feedback{
		loop:     loop,
		duration: duration,
		resets:   make(map[*dom.Element]*time.Timer),
	}
}

// Show writes text in color on el for the default duration.
func (f *Feedback) Show(el *dom.Element, text, color string) {
	f.ShowFor(el, text, color, f.duration)
}

// ShowFor writes text in color on el and clears it after d. A nil element is
// ignored.
func (f *Feedback) ShowFor(el *dom.Element, text, color string, d time.Duration) {
	if el == nil {
		return
	}
	if d <= 0 {
		d = f.duration
	}

	el.Text = text
	el.Color = color
	el.AddClass(fadeClass)

	if t, ok := f.resets[el]; ok {
		t.Stop()
	}
	var timer *time.Timer
	timer = f.loop.AfterFunc(d, func() {
		if f.resets[el] != timer {
			return
		}
		delete(f.resets, el)
		el.Text = ""
		el.RemoveClass(fadeClass)
	})
	f.resets[el] = timer
}
