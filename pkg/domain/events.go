package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventTransition EventType = "transition"
	EventRejected   EventType = "rejected"
	EventSubmission EventType = "submission"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
}

// TransitionEvent is emitted when a controller changes phase.
type TransitionEvent struct {
	EventBase
	From    Phase   `json:"from"`
	To      Phase   `json:"to"`
	Trigger Trigger `json:"trigger"`
}

// RejectionEvent is emitted when a trigger is refused.
type RejectionEvent struct {
	EventBase
	Phase   Phase   `json:"phase"`
	Trigger Trigger `json:"trigger"`
	Err     error   `json:"-"`
}

// SubmissionEvent is emitted after every gateway call.
type SubmissionEvent struct {
	EventBase
	LanternID string        `json:"lantern_id,omitempty"`
	Duration  time.Duration `json:"duration"`
	Err       error         `json:"-"`
}

// LifecycleHooks defines callbacks for controller observability.
type LifecycleHooks struct {
	OnTransition func(context.Context, *TransitionEvent)
	OnRejected   func(context.Context, *RejectionEvent)
	OnSubmission func(context.Context, *SubmissionEvent)
}

// Merge returns hooks that call h first, then other.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnTransition: chain(h.OnTransition, other.OnTransition),
		OnRejected:   chain(h.OnRejected, other.OnRejected),
		OnSubmission: chain(h.OnSubmission, other.OnSubmission),
	}
}

func chain[E any](a, b func(context.Context, E)) func(context.Context, E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}
