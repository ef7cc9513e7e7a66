package services

import "time"

// Clock abstracts "now" so workflow timestamps (ApprovedAt, PaidAt, ReadAt)
// are controllable in tests.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func SystemClock() Clock { return systemClock{} }
