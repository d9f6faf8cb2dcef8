// Package scroll turns a continuous scroll position into debounced row offset
// requests.
package scroll

import (
	"math"
	"sync"
	"time"
)

// DefaultDelay is the quiet period after the last position change before an
// offset request is delivered.
const DefaultDelay = 50 * time.Millisecond

// Request asks the store to move the window to Offset. Seq identifies the
// position change that produced it.
type Request struct {
	Offset   int
	Position int
	Seq      uint64
}

// MapOffset maps position within [0, maxPosition] onto [0, total-window].
// An empty scroll range or a dataset that fits in one window maps to 0.
func MapOffset(position, maxPosition, total, window int) int {
	if maxPosition <= 0 || total <= window {
		return 0
	}

	position = min(max(position, 0), maxPosition)
	ratio := float64(position) / float64(maxPosition)
	return int(math.Round(ratio * float64(total-window)))
}

// Mapper debounces position updates. Each Update restarts the timer; only the
// last position of a burst produces a Request, mapped with the range and total
// current when the timer fires. Mapper has no dependency on any UI toolkit.
type Mapper struct {
	delay  time.Duration
	window int

	mu     sync.Mutex
	maxPos int
	total  int
	pos    int
	seq    uint64
	timer  *time.Timer
	out    chan Request
	closed bool
}

// NewMapper creates a mapper for a window of the given size.
func NewMapper(delay time.Duration, window int) *Mapper {
	if delay < 0 {
		delay = DefaultDelay
	}
	return &Mapper{
		delay:  delay,
		window: window,
		out:    make(chan Request, 1),
	}
}

// Requests returns the channel debounced requests are delivered on. It holds
// at most one undelivered request and is closed by Stop.
func (m *Mapper) Requests() <-chan Request { return m.out }

// SetRange sets the maximum scroll position.
func (m *Mapper) SetRange(maxPosition int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.maxPos = max(maxPosition, 0)
}

// SetTotal sets the dataset row count used for mapping.
func (m *Mapper) SetTotal(total int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.total = max(total, 0)
}

// Position returns the last raw position passed to Update.
func (m *Mapper) Position() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pos
}

// MaxPosition returns the current scroll range.
func (m *Mapper) MaxPosition() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.maxPos
}

// Update records a raw position change. Any pending request, including one
// already queued but not yet received, is cancelled.
func (m *Mapper) Update(position int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return
	}

	m.pos = position
	m.seq++
	seq := m.seq

	select {
	case <-m.out:
	default:
	}

	if m.timer != nil {
		m.timer.Stop()
	}
	m.timer = time.AfterFunc(m.delay, func() { m.fire(seq) })
}

// Cancel drops any pending or queued request without recording a new
// position. Call it whenever the window is moved by something other than
// the scrollbar.
func (m *Mapper) Cancel() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return
	}

	m.seq++
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}

	select {
	case <-m.out:
	default:
	}
}

// IsCurrent reports whether a request is still the latest one. A request
// received after a newer Update is stale and should be ignored.
func (m *Mapper) IsCurrent(req Request) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return req.Seq == m.seq
}

// Stop cancels any pending request and closes the requests channel.
func (m *Mapper) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return
	}
	m.closed = true

	if m.timer != nil {
		m.timer.Stop()
	}
	close(m.out)
}

func (m *Mapper) fire(seq uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed || seq != m.seq {
		return
	}

	req := Request{
		Offset:   MapOffset(m.pos, m.maxPos, m.total, m.window),
		Position: m.pos,
		Seq:      seq,
	}

	select {
	case <-m.out:
	default:
	}
	select {
	case m.out <- req:
	default:
	}
}
