// Package tracking derives the read-only fulfillment timeline shown to the
// customer. It never performs transitions; status changes come from the
// kitchen side and are only observed here.
package tracking

import "github.com/elonmasai7/bistro-backend/internal/order"

var stages = []order.Status{
	order.StatusReceived,
	order.StatusPreparing,
	order.StatusReady,
	order.StatusDelivered,
}

// estimates is a fixed placeholder heuristic, not a computed ETA from kitchen
// load.
var estimates = map[order.Status]int{
	order.StatusReceived:  15,
	order.StatusPreparing: 10,
	order.StatusReady:     5,
	order.StatusDelivered: 0,
}

// Stages returns the fixed fulfillment sequence in order.
func Stages() []order.Status {
	return append([]order.Status(nil), stages...)
}

// StageIndex returns the 0-based timeline position of a status, or -1 when
// the value is not recognized (a stale client may see statuses it does not
// know; that renders as "position unknown", it never fails).
func StageIndex(s order.Status) int {
	for i, st := range stages {
		if st == s {
			return i
		}
	}
	return -1
}

// EstimatedMinutesRemaining looks up the placeholder estimate for a status.
// Unknown statuses report 0.
func EstimatedMinutesRemaining(s order.Status) int {
	return estimates[s]
}

// Stage is one row of the rendered timeline.
type Stage struct {
	Status    order.Status `json:"status"`
	Completed bool         `json:"completed"`
	Current   bool         `json:"current"`
}

// View is the full tracking snapshot for one order.
type View struct {
	Status           order.Status `json:"status"`
	StageIndex       int          `json:"stage_index"` // -1 when unknown
	EstimatedMinutes int          `json:"estimated_minutes_remaining"`
	Stages           []Stage      `json:"stages"`
}

// Timeline renders the stage list against the order's current status. With an
// unrecognized status every stage reads as pending.
func Timeline(s order.Status) View {
	idx := StageIndex(s)
	v := View{
		Status:           s,
		StageIndex:       idx,
		EstimatedMinutes: EstimatedMinutesRemaining(s),
		Stages:           make([]Stage, 0, len(stages)),
	}
	for i, st := range stages {
		v.Stages = append(v.Stages, Stage{
			Status:    st,
			Completed: idx >= 0 && i < idx,
			Current:   idx >= 0 && i == idx,
		})
	}
	return v
}
