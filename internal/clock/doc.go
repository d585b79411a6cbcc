// Package clock abstracts wall-clock time and timers so that periodic work
// can be driven by the real clock in production and advanced by hand in tests.
//
// Usage:
//
//	c := clock.NewManual(time.Now())
//	t := c.NewTimer(time.Minute)
//	c.BlockUntil(1)       // wait until some goroutine armed a timer
//	c.Advance(time.Minute) // fires t
//	<-t.C()
package clock
