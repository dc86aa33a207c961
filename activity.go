package walletauth

import (
	"context"
	"time"
)

// ActivityEventType enumerates supported activity categories.
type ActivityEventType string

const (
	ActivityEventEmailAuthInitiated ActivityEventType = "auth.email.initiated"
	ActivityEventEmailAuthCompleted ActivityEventType = "auth.email.completed"
	ActivityEventPasskeyLogin       ActivityEventType = "auth.passkey.login"
	ActivityEventPasskeySignup      ActivityEventType = "auth.passkey.signup"
	ActivityEventWalletLogin        ActivityEventType = "auth.wallet.login"
	ActivityEventWalletSignup       ActivityEventType = "auth.wallet.signup"
	ActivityEventLogout             ActivityEventType = "auth.logout"
	ActivityEventAuthFailure        ActivityEventType = "auth.failure"
	// ActivityEventPartialFailure marks flows that need out-of-band
	// reconciliation, e.g. an orphaned sub-organization after a failed
	// directory write.
	ActivityEventPartialFailure ActivityEventType = "auth.partial_failure"
)

// ActorRef identifies who/what triggered an event.
type ActorRef struct {
	ID   string
	Type string
}

// ActivityEvent captures audit-friendly information about an auth action.
type ActivityEvent struct {
	EventType      ActivityEventType
	Actor          ActorRef
	UserID         string
	OrganizationID string
	Metadata       map[string]any
	OccurredAt     time.Time
}

// ActivitySink consumes activity events for auditing/telemetry purposes.
type ActivitySink interface {
	Record(ctx context.Context, event ActivityEvent) error
}

// ActivitySinkFunc adapts a function to the ActivitySink interface.
type ActivitySinkFunc func(ctx context.Context, event ActivityEvent) error

// Record implements ActivitySink.
func (f ActivitySinkFunc) Record(ctx context.Context, event ActivityEvent) error {
	if f == nil {
		return nil
	}
	return f(ctx, event)
}

type noopActivitySink struct{}

func (noopActivitySink) Record(context.Context, ActivityEvent) error {
	return nil
}

func normalizeActivitySink(s ActivitySink) ActivitySink {
	if s == nil {
		return noopActivitySink{}
	}
	return s
}
