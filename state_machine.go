package walletauth

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

const textCodeInvalidFlowTransition = "INVALID_FLOW_TRANSITION"

// ErrInvalidFlowTransition is returned when a requested flow status change is
// not allowed.
var ErrInvalidFlowTransition = goerrors.New("invalid auth flow transition", goerrors.CategoryValidation).
	WithTextCode(textCodeInvalidFlowTransition).
	WithCode(goerrors.CodeBadRequest)

// FlowStatus is the orchestrator's flow position.
type FlowStatus string

const (
	// FlowIdle is the rest state; error states return here on the next user
	// action.
	FlowIdle FlowStatus = "idle"
	// FlowLoading marks an operation in flight.
	FlowLoading FlowStatus = "loading"
	// FlowAwaitingEmail marks a sent magic link pending confirmation.
	FlowAwaitingEmail FlowStatus = "awaiting_email"
	// FlowAuthenticated is terminal for the session; only logout leaves it.
	FlowAuthenticated FlowStatus = "authenticated"
	// FlowError holds the last failure until the next user action.
	FlowError FlowStatus = "error"
)

// FlowState is the single mutable record UI surfaces render from.
type FlowState struct {
	Status  FlowStatus `json:"status"`
	Loading bool       `json:"loading"`
	Error   string     `json:"error"`
	User    *User      `json:"user,omitempty"`
}

// FlowTransitionContext is passed into hooks.
type FlowTransitionContext struct {
	From  FlowStatus
	To    FlowStatus
	State FlowState
}

// FlowHook runs after a successful transition. Hook errors are logged, never
// propagated; the flow has already moved.
type FlowHook func(ctx context.Context, tc FlowTransitionContext)

// FlowStateMachine centralizes the transition graph for auth flow states.
type FlowStateMachine interface {
	Transition(ctx context.Context, state *FlowState, target FlowStatus) error
	Can(from, to FlowStatus) bool
}

// FlowOption customizes flow state machine construction.
type FlowOption func(*flowStateMachine)

// WithFlowHook registers a hook invoked after every transition.
func WithFlowHook(h FlowHook) FlowOption {
	return func(sm *flowStateMachine) {
		if h != nil {
			sm.hooks = append(sm.hooks, h)
		}
	}
}

// WithFlowLogger overrides the logger used for hook failures.
func WithFlowLogger(logger Logger) FlowOption {
	return func(sm *flowStateMachine) {
		if logger != nil {
			sm.logger = logger
		}
	}
}

// WithFlowClock injects a custom clock (useful for tests).
func WithFlowClock(clock func() time.Time) FlowOption {
	return func(sm *flowStateMachine) {
		if clock != nil {
			sm.now = clock
		}
	}
}

// NewFlowStateMachine returns the default implementation.
//
// The graph encodes the contract from the flow lifecycle: idle -> loading ->
// {authenticated, error, awaiting_email}; error returns to idle or directly
// into the next attempt; authenticated only exits through logout.
func NewFlowStateMachine(opts ...FlowOption) FlowStateMachine {
	sm := &flowStateMachine{
		transitions: map[FlowStatus]map[FlowStatus]struct{}{
			FlowIdle: {
				FlowLoading: {},
			},
			FlowLoading: {
				FlowAuthenticated: {},
				FlowAwaitingEmail: {},
				FlowError:         {},
				FlowIdle:          {},
			},
			FlowAwaitingEmail: {
				FlowLoading: {},
				FlowError:   {},
				FlowIdle:    {},
			},
			FlowError: {
				FlowIdle:    {},
				FlowLoading: {},
			},
			FlowAuthenticated: {
				FlowIdle: {},
			},
		},
		now:    time.Now,
		logger: defLogger{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(sm)
		}
	}

	return sm
}

type flowStateMachine struct {
	transitions map[FlowStatus]map[FlowStatus]struct{}
	hooks       []FlowHook
	now         func() time.Time
	logger      Logger
}

func (sm *flowStateMachine) Can(from, to FlowStatus) bool {
	if from == "" {
		from = FlowIdle
	}

	targets, ok := sm.transitions[from]
	if !ok {
		return false
	}

	_, ok = targets[to]
	return ok
}

func (sm *flowStateMachine) Transition(ctx context.Context, state *FlowState, target FlowStatus) error {
	if state == nil {
		return ErrInvalidFlowTransition.WithMetadata(map[string]any{
			"reason": "state is nil",
		})
	}

	from := state.Status
	if from == "" {
		from = FlowIdle
	}

	if from == target {
		return nil
	}

	if !sm.Can(from, target) {
		return ErrInvalidFlowTransition.WithMetadata(map[string]any{
			"from": from,
			"to":   target,
		})
	}

	state.Status = target
	state.Loading = target == FlowLoading

	switch target {
	case FlowIdle, FlowLoading, FlowAuthenticated, FlowAwaitingEmail:
		state.Error = ""
	}

	tc := FlowTransitionContext{From: from, To: target, State: *state}
	for _, hook := range sm.hooks {
		sm.runHook(ctx, hook, tc)
	}

	return nil
}

func (sm *flowStateMachine) runHook(ctx context.Context, hook FlowHook, tc FlowTransitionContext) {
	defer func() {
		if r := recover(); r != nil {
			sm.logger.Warn("flow hook panic", "from", tc.From, "to", tc.To, "panic", r)
		}
	}()
	hook(ctx, tc)
}
