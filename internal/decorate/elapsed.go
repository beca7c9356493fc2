package decorate

import (
	"fmt"
	"time"
)

// Tier boundaries for FormatElapsed.
const (
	millisTierLimit  = 5000.0
	secondsTierLimit = 60.0
)

// FormatElapsed renders time since the stream origin with a precision that
// shrinks as the value grows:
//
//	< 5s       "120ms"
//	5s .. 60s  "12.34s56ms"  (seconds with two decimals, then the residual ms)
//	> 60s      "3m45s120ms"
func FormatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	ms := float64(d) / float64(time.Millisecond)
	if ms < millisTierLimit {
		return fmt.Sprintf("%.0fms", ms)
	}

	residual := d.Milliseconds() % 1000
	secs := ms / 1000
	if secs <= secondsTierLimit {
		return fmt.Sprintf("%.2fs%dms", secs, residual)
	}

	whole := int64(secs)
	return fmt.Sprintf("%dm%ds%dms", whole/60, whole%60, residual)
}
