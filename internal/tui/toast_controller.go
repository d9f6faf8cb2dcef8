package tui

import (
	"time"

	"github.com/colonyops/tabula/internal/core/notify"
)

const (
	defaultMaxToasts  = 4
	toastTickInterval = 100 * time.Millisecond
	toastWidth        = 48
)

// ttlFor returns how long a toast of the given level stays on screen. Errors
// linger so a failed load is not missed while the table redraws.
func ttlFor(level notify.Level) time.Duration {
	switch level {
	case notify.LevelError:
		return 8 * time.Second
	case notify.LevelWarning:
		return 6 * time.Second
	default:
		return 4 * time.Second
	}
}

type toast struct {
	notification notify.Notification
	remaining    time.Duration
	repeats      int
}

// ToastController manages the stack of active toast notifications. A
// notification equal to the newest toast folds into it instead of stacking,
// which keeps repeated reloads of a watched file from flooding the screen.
type ToastController struct {
	toasts []toast
}

func NewToastController() *ToastController {
	return &ToastController{}
}

// Push adds a notification to the stack, evicting the oldest toast past
// defaultMaxToasts.
func (c *ToastController) Push(n notify.Notification) {
	if last := len(c.toasts) - 1; last >= 0 {
		top := &c.toasts[last]
		if top.notification.Level == n.Level && top.notification.Message == n.Message {
			top.repeats++
			top.remaining = ttlFor(n.Level)
			return
		}
	}

	c.toasts = append(c.toasts, toast{notification: n, remaining: ttlFor(n.Level)})
	if len(c.toasts) > defaultMaxToasts {
		c.toasts = c.toasts[len(c.toasts)-defaultMaxToasts:]
	}
}

// Tick counts every toast down by d and drops the expired ones.
func (c *ToastController) Tick(d time.Duration) {
	alive := c.toasts[:0]
	for _, t := range c.toasts {
		t.remaining -= d
		if t.remaining > 0 {
			alive = append(alive, t)
		}
	}
	c.toasts = alive
}

// Dismiss removes the newest toast.
func (c *ToastController) Dismiss() {
	if len(c.toasts) > 0 {
		c.toasts = c.toasts[:len(c.toasts)-1]
	}
}

func (c *ToastController) HasToasts() bool {
	return len(c.toasts) > 0
}

// Toasts returns the active toasts, oldest first.
func (c *ToastController) Toasts() []toast {
	return c.toasts
}
