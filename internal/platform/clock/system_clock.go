package clock

import "time"

// SystemClock is the wall clock in UTC, truncated to the microsecond precision Postgres
// keeps for timestamptz so stored and in-memory timestamps compare equal.
type SystemClock struct{}

func NewSystemClock() SystemClock { return SystemClock{} }

func (SystemClock) Now() time.Time { return time.Now().UTC().Truncate(time.Microsecond) }
