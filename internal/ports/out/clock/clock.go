package clock

import "time"

// Clock stamps idempotency records and decides when they expire.
type Clock interface {
	Now() time.Time
}
