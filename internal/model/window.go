package model

import (
	"fmt"
	"time"
)

// Window is a closed timestamp interval [Start, End] in epoch seconds.
// Both endpoints are inclusive.
type Window struct {
	Start int64
	End   int64
}

// Named window shorthands resolved against "now" at query time.
var namedWindows = map[string]time.Duration{
	"1h": time.Hour,
	"6h": 6 * time.Hour,
	"1d": 24 * time.Hour,
	"1w": 7 * 24 * time.Hour,
}

// NamedWindow resolves a shorthand ("1h", "6h", "1d", "1w") to a window
// ending at now.
func NamedWindow(name string, now time.Time) (Window, error) {
	d, ok := namedWindows[name]
	if !ok {
		return Window{}, &ValidationError{Field: "window", Reason: fmt.Sprintf("unknown window shorthand %q", name)}
	}
	end := now.Unix()
	return Window{Start: end - int64(d.Seconds()), End: end}, nil
}

// Contains reports whether ts falls inside the window, endpoints included.
func (w Window) Contains(ts int64) bool {
	return ts >= w.Start && ts <= w.End
}

// Validate rejects inverted windows.
func (w Window) Validate() error {
	if w.Start > w.End {
		return &ValidationError{Field: "window", Reason: fmt.Sprintf("start %d after end %d", w.Start, w.End)}
	}
	return nil
}
