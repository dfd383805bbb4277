package strip

import (
	"fmt"
	"io"
	"sync"

	"github.com/coreman2200/wordclock/internal/palette"
)

// Recorder keeps the last shown frame in memory, useful for headless runs and tests.
// When Out is set every Show prints a compact summary of the frame.
type Recorder struct {
	Count  int
	Out    io.Writer
	Frames int
	// ShowErr is returned by Show when set.
	ShowErr error

	mu     sync.Mutex
	staged Buffer
	last   Buffer
	sets   int
	clears int
}

func (r *Recorder) init() {
	if r.staged == nil {
		r.staged = NewBuffer(r.Count)
	}
}

func (r *Recorder) SetPixel(i int, c palette.Color) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.init()
	r.staged.SetPixel(i, c)
	r.sets++
}

func (r *Recorder) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.init()
	r.staged.Clear()
	r.clears++
}

func (r *Recorder) Show() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ShowErr != nil {
		return r.ShowErr
	}
	r.init()
	r.Frames++
	r.last = append(r.last[:0], r.staged...)
	if r.Out != nil {
		lit := 0
		first := -1
		for i, c := range r.last {
			if !c.IsOff() {
				lit++
				if first < 0 {
					first = i
				}
			}
		}
		fmt.Fprintf(r.Out, "[frame %04d] lit=%d first=%d\n", r.Frames, lit, first)
	}
	return nil
}

func (r *Recorder) Signature() string { return "recorder" }
func (r *Recorder) Close() error      { return nil }

// Last returns a copy of the last shown frame.
func (r *Recorder) Last() Buffer {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append(Buffer(nil), r.last...)
}

// Calls returns how many SetPixel and Clear calls were staged.
func (r *Recorder) Calls() (sets, clears int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sets, r.clears
}
