package material

import (
	"sync"
	"time"
)

const DefaultDebounce = 300 * time.Millisecond

// Debouncer collapses a burst of keystrokes into one search. Every Touch
// returns a sequence number; after the window the caller fires with that
// number and only the latest one yields the text to search for.
type Debouncer struct {
	mu     sync.Mutex
	window time.Duration
	seq    uint64
	text   string
	fired  string
}

func NewDebouncer(window time.Duration) *Debouncer {
	if window <= 0 {
		window = DefaultDebounce
	}

	return &Debouncer{window: window}
}

func (d *Debouncer) Window() time.Duration {
	return d.window
}

// Touch records the current input and returns its sequence number.
func (d *Debouncer) Touch(text string) uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.seq++
	d.text = text

	return d.seq
}

// Fire reports the text to search for when seq is still the latest input and
// differs from the last fired text.
func (d *Debouncer) Fire(seq uint64) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if seq != d.seq || d.text == d.fired {
		return "", false
	}

	d.fired = d.text

	return d.text, true
}
