package connection

import "time"

const (
	initialBackoff = time.Second
	backoffCap     = 32 * time.Second
	maxBackoff     = 60 * time.Second
)

// nextBackoff doubles cur (or returns initialBackoff from the zero value),
// producing the monotone sequence 1,2,4,8,16,32,60,60,... of §8: once
// doubling would exceed backoffCap the result is clamped straight to
// maxBackoff rather than continuing to double.
func nextBackoff(cur time.Duration) time.Duration {
	if cur <= 0 {
		return initialBackoff
	}
	next := cur * 2
	if next > backoffCap {
		return maxBackoff
	}
	return next
}
