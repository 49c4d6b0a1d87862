package models

// Status is the lifecycle state of an Auction.
type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusActive    Status = "active"
	StatusEnded     Status = "ended"
	StatusCancelled Status = "cancelled"
)

// ParseStatus returns the Status named by s and whether it is a known status.
func ParseStatus(s string) (Status, bool) {
	st := Status(s)
	switch st {
	case StatusScheduled, StatusActive, StatusEnded, StatusCancelled:
		return st, true
	default:
		return "", false
	}
}

// IsTerminal reports whether no further bids or transitions are accepted.
func (s Status) IsTerminal() bool {
	return s == StatusEnded || s == StatusCancelled
}

func (s Status) String() string { return string(s) }
