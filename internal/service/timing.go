package service

import (
	"fmt"

	"github.com/presentation-quality-server/internal/domain"
	"github.com/presentation-quality-server/internal/knowledge"
)

// EstimateTiming sums the per-type speaking time. Unknown types take the
// default entry.
func EstimateTiming(slides []domain.Slide) domain.Timing {
	perSlide := make([]int, len(slides))
	total := 0
	for i, s := range slides {
		secs, ok := knowledge.SlideTiming[s.Type]
		if !ok {
			secs = knowledge.SlideTiming["default"]
		}
		perSlide[i] = secs
		total += secs
	}
	return newTiming(total, perSlide)
}

func newTiming(total int, perSlide []int) domain.Timing {
	minutes, seconds := total/60, total%60
	return domain.Timing{
		TotalSeconds: total,
		Minutes:      minutes,
		Seconds:      seconds,
		Formatted:    fmt.Sprintf("%d:%02d", minutes, seconds),
		PerSlide:     perSlide,
	}
}
