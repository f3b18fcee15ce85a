// Package audit records configuration store mutations and RIB diff runs as
// JSON lines.
package audit

import (
	"fmt"
	"time"
)

// Audited operations.
const (
	OpConfigCreate = "config.create"
	OpConfigUpdate = "config.update"
	OpConfigDelete = "config.delete"
	OpRIBDiff      = "rib.diff"
)

// Event is one audited action. Config names the IXP configuration document
// and RouteServer the route server a RIB diff ran against.
type Event struct {
	ID          string            `json:"id"`
	Timestamp   time.Time         `json:"timestamp"`
	User        string            `json:"user"`
	Operation   string            `json:"operation"`
	Config      string            `json:"config,omitempty"`
	RouteServer string            `json:"route_server,omitempty"`
	Details     map[string]string `json:"details,omitempty"`
	Success     bool              `json:"success"`
	Error       string            `json:"error,omitempty"`
	Duration    time.Duration     `json:"duration"`
}

// Filter selects events; zero fields match everything.
type Filter struct {
	User        string
	Operation   string
	Config      string
	RouteServer string
	StartTime   time.Time
	EndTime     time.Time
	SuccessOnly bool
	FailureOnly bool
	Limit       int
	Offset      int
}

// NewEvent starts an event stamped with the current time.
func NewEvent(user, operation string) *Event {
	return &Event{
		ID:        generateID(),
		Timestamp: time.Now(),
		User:      user,
		Operation: operation,
	}
}

func (e *Event) WithConfig(name string) *Event {
	e.Config = name
	return e
}

func (e *Event) WithRouteServer(name string) *Event {
	e.RouteServer = name
	return e
}

// WithDetail adds a key/value detail, e.g. a diff count.
func (e *Event) WithDetail(key, value string) *Event {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

func (e *Event) WithSuccess() *Event {
	e.Success = true
	return e
}

// WithError marks the event as failed; err may be nil.
func (e *Event) WithError(err error) *Event {
	e.Success = false
	if err != nil {
		e.Error = err.Error()
	}
	return e
}

// Finish marks the event with the outcome of an operation that started at
// start.
func (e *Event) Finish(start time.Time, err error) *Event {
	e.Duration = time.Since(start)
	if err != nil {
		return e.WithError(err)
	}
	return e.WithSuccess()
}

func (e *Event) WithDuration(d time.Duration) *Event {
	e.Duration = d
	return e
}

func generateID() string {
	return fmt.Sprintf("%d", time.Now().UnixNano())
}

func (f Filter) matches(e *Event) bool {
	switch {
	case f.User != "" && e.User != f.User:
		return false
	case f.Operation != "" && e.Operation != f.Operation:
		return false
	case f.Config != "" && e.Config != f.Config:
		return false
	case f.RouteServer != "" && e.RouteServer != f.RouteServer:
		return false
	case !f.StartTime.IsZero() && e.Timestamp.Before(f.StartTime):
		return false
	case !f.EndTime.IsZero() && e.Timestamp.After(f.EndTime):
		return false
	case f.SuccessOnly && !e.Success:
		return false
	case f.FailureOnly && e.Success:
		return false
	}
	return true
}

// page applies Offset and Limit.
func (f Filter) page(events []*Event) []*Event {
	if f.Offset > 0 {
		if f.Offset >= len(events) {
			return nil
		}
		events = events[f.Offset:]
	}
	if f.Limit > 0 && f.Limit < len(events) {
		events = events[:f.Limit]
	}
	return events
}
