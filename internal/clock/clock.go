// Package clock abstracts wall-clock access so tests can fake time.
package clock

import "time"

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}
