package renderer

import (
	"time"
)

// FrameStats accumulates CPU-side frame durations, measured from the start
// of acquisition to the end of the idle wait.
type FrameStats struct {
	Frames uint64
	Last   time.Duration
	Max    time.Duration
	Total  time.Duration
}

func (s *FrameStats) record(d time.Duration) {
	s.Frames++
	s.Last = d
	s.Total += d
	if d > s.Max {
		s.Max = d
	}
}

func (s FrameStats) Average() time.Duration {
	if s.Frames == 0 {
		return 0
	}
	return s.Total / time.Duration(s.Frames)
}
