package platform

import "time"

// AppName is the application name reported to the host notification center.
const AppName = "Retouch"

// Urgency ranks a notice for notification centers that support it.
type Urgency byte

const (
	UrgencyLow Urgency = iota
	UrgencyNormal
	UrgencyCritical
)

// Options configures how a notice is displayed on the host platform.
type Options struct {
	// IconPath points to an image shown next to the notice when supported.
	IconPath string
	Urgency  Urgency
	// Timeout is how long the notice stays up. Zero uses DefaultTimeout.
	Timeout time.Duration
}

// DefaultTimeout is used when Options.Timeout is zero.
const DefaultTimeout = 5 * time.Second

func (o Options) timeout() time.Duration {
	if o.Timeout <= 0 {
		return DefaultTimeout
	}
	return o.Timeout
}
