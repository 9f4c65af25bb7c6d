// Package clock abstracts time operations for testability. Production code
// injects Real(); tests inject NewFake() with deterministic time control.
//
// Every function in this repository that would call time.Now or
// time.NewTicker accepts a Clock (or is a method on a struct with a Clock
// field) instead of calling the time package directly.
package clock

import "time"

// Clock provides the current time and periodic tickers.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// NewTicker returns a Ticker that delivers ticks on its channel at
	// the specified interval. Panics if d <= 0.
	NewTicker(d time.Duration) Ticker
}

// Ticker delivers periodic ticks. Call Stop to release resources; Stop
// does not close the channel.
type Ticker interface {
	// C returns the tick channel.
	C() <-chan time.Time

	// Stop turns off the ticker. No more ticks are sent after Stop.
	Stop()
}
