package runtime

// ConnState is the lifecycle of a live connection.
//
//	Connecting -> Authenticated -> Subscribed -> Closed
//	Connecting -> Closed (authentication failed)
type ConnState int

const (
	Connecting ConnState = iota
	Authenticated
	Subscribed
	Closed
)

func (s ConnState) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Authenticated:
		return "authenticated"
	case Subscribed:
		return "subscribed"
	default:
		return "closed"
	}
}

// CanTransition reports whether the lifecycle allows moving from s to next.
// Any state may close, a closed connection never reopens.
func (s ConnState) CanTransition(next ConnState) bool {
	switch {
	case s == Closed:
		return false
	case next == Closed:
		return true
	default:
		return next == s+1
	}
}
