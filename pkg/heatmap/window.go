package heatmap

import (
	"iter"
	"time"
)

// Window is one fixed-width aggregation interval, bounds inclusive.
type Window struct {
	Start time.Time
	Stop  time.Time
}

// Windows returns a lazy, restartable sequence of count windows walking
// backward from latest. Each window is exactly step wide and consecutive
// windows are separated by a one-second gap so they never touch.
func Windows(latest time.Time, step time.Duration, count int) iter.Seq[Window] {
	return func(yield func(Window) bool) {
		stop := latest

		for i := 0; i < count; i++ {
			w := Window{Start: stop.Add(-step), Stop: stop}
			if !yield(w) {
				return
			}

			stop = w.Start.Add(-time.Second)
		}
	}
}
