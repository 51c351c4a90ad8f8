package event

import "context"

// Store reads the persisted event log.
type Store interface {
	Events(ctx context.Context, opts ListOpts) ([]*Event, error)
}

// ListOpts filters an event log query. Results are ordered by Sequence.
type ListOpts struct {
	// After skips events with Sequence <= After.
	After uint64
	Kind  Kind
	Limit int
}

// Match reports whether e passes the Kind filter.
func (o ListOpts) Match(e *Event) bool {
	return o.Kind == "" || e.Kind == o.Kind
}

// Filter applies After, Kind and Limit to an ordered slice.
func (o ListOpts) Filter(events []*Event) []*Event {
	out := make([]*Event, 0, len(events))
	for _, e := range events {
		if e.Sequence <= o.After || !o.Match(e) {
			continue
		}
		out = append(out, e)
		if o.Limit > 0 && len(out) == o.Limit {
			break
		}
	}
	return out
}
