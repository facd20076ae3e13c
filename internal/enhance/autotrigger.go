package enhance

import (
	"context"

	"notesync-core/internal/ongoing"
	"notesync-core/pkg/events"
)

// AutoEnhancer fires the pipeline when a recording ends. Edge-
// triggered: exactly one enhancement per running_active → inactive
// transition, and never again while the status stays inactive.
type AutoEnhancer struct {
	pipeline *Pipeline
	state    *ongoing.State
	userId   string
}

func NewAutoEnhancer(pipeline *Pipeline, state *ongoing.State, userId string) *AutoEnhancer {
	return &AutoEnhancer{
		pipeline: pipeline,
		state:    state,
		userId:   userId,
	}
}

// Start subscribes to ongoing-session transitions. The returned func
// detaches the trigger.
func (a *AutoEnhancer) Start(ctx context.Context) func() {
	return a.state.Subscribe(func(prev, curr ongoing.Status) {
		if prev != ongoing.StatusRunningActive || curr != ongoing.StatusInactive {
			return
		}

		sessionId := a.state.SessionId()
		if sessionId == "" {
			return
		}
		if a.pipeline.Status(sessionId) == StatusPending {
			return
		}

		a.pipeline.emit(events.NewAutoEnhanceTriggered(a.userId, sessionId))

		go func() {
			// Error surfacing happens inside the pipeline; auto
			// triggers have no caller to report to.
			_ = a.pipeline.Enhance(ctx, sessionId)
		}()
	})
}
