// Package system provides a real clock implementation.
package system

import "time"

// Clock implements news.Clock using time.Now in a fixed location. The crawl
// pipeline measures recency and midnight expiry in the site's timezone, so
// the location lives on the clock rather than being threaded through callers.
type Clock struct {
	loc *time.Location
}

// New creates a Clock pinned to loc, falling back to time.Local when nil.
func New(loc *time.Location) *Clock {
	if loc == nil {
		loc = time.Local
	}
	return &Clock{loc: loc}
}

// Now returns the current time in the clock's location.
func (c *Clock) Now() time.Time {
	return time.Now().In(c.loc)
}

// Location returns the clock's location.
func (c *Clock) Location() *time.Location {
	return c.loc
}
