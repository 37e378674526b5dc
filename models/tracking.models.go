package models

import "fmt"

// TrackingStatus is the shipment progress of an order.
type TrackingStatus string

const (
	StatusPending        TrackingStatus = "Pending"
	StatusInTransit      TrackingStatus = "In Transit"
	StatusOutForDelivery TrackingStatus = "Out for Delivery"
	StatusDelivered      TrackingStatus = "Delivered"
	StatusDelayed        TrackingStatus = "Delayed"
	StatusCancelled      TrackingStatus = "Cancelled"
)

// TrackingStatuses in display order.
var TrackingStatuses = []TrackingStatus{
	StatusPending,
	StatusInTransit,
	StatusOutForDelivery,
	StatusDelivered,
	StatusDelayed,
	StatusCancelled,
}

// Older clients send the hyphenated spelling.
var statusAliases = map[string]TrackingStatus{
	"In-Transit": StatusInTransit,
}

// ParseTrackingStatus matches s case-sensitively against the known statuses.
func ParseTrackingStatus(s string) (TrackingStatus, error) {
	for _, st := range TrackingStatuses {
		if string(st) == s {
			return st, nil
		}
	}
	if st, ok := statusAliases[s]; ok {
		return st, nil
	}
	return "", fmt.Errorf("unknown tracking status %q", s)
}

// transitions lists, for every status, the statuses it may move to.
// Every pair is currently allowed, regressions and moves out of
// Delivered or Cancelled included.
var transitions = func() map[TrackingStatus]map[TrackingStatus]bool {
	t := make(map[TrackingStatus]map[TrackingStatus]bool, len(TrackingStatuses))
	for _, from := range TrackingStatuses {
		t[from] = make(map[TrackingStatus]bool, len(TrackingStatuses))
		for _, to := range TrackingStatuses {
			t[from][to] = true
		}
	}
	return t
}()

// CanTransition reports whether an order may move from one tracking status to another.
func CanTransition(from, to TrackingStatus) bool {
	return transitions[from][to]
}
