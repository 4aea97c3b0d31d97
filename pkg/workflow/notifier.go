package workflow

import (
	"context"

	"market-sim-orchestrator/internal/dto"
	"market-sim-orchestrator/internal/pkg/logger"
)

// StateThinking is the only state value workflow pushes carry.
const StateThinking = "thinking"

// statePusher is the slice of the assistant client the notifier needs.
type statePusher interface {
	PushState(ctx context.Context, orgId string, req *dto.PushStateRequest) error
}

// stageEventStages maps pipeline side-channel event names to UI stages.
var stageEventStages = map[string]Stage{
	"questionnaire": StageQuestionnaire,
	"insights":      StageInsights,
}

// WorkflowNotifier pushes the current workflow state to the assistant at most
// once per distinct navigation path. Dispatch is fire-and-forget: failures
// are logged and never retried, and the path is consumed either way.
type WorkflowNotifier struct {
	resolver *StageResolver
	pusher   statePusher
	log      logger.ILogger
}

func NewWorkflowNotifier(resolver *StageResolver, pusher statePusher, log logger.ILogger) *WorkflowNotifier {
	return &WorkflowNotifier{
		resolver: resolver,
		pusher:   pusher,
		log:      log,
	}
}

// Notify pushes state for one resolved navigation event. No-op unless the
// org context is valid and the path has not been processed before. A stage
// with no backend mapping still consumes the path, permanently suppressing
// any retry for it.
func (n *WorkflowNotifier) Notify(ctx context.Context, org OrgContext, path string, res Resolution) {
	if !org.Valid() {
		return
	}
	if !res.PathChanged {
		return
	}

	n.resolver.MarkProcessed(path)

	enum, ok := BackendStage(res.Stage)
	if !ok {
		return
	}

	req := &dto.PushStateRequest{
		State:           StateThinking,
		Stage:           enum,
		CompletedStages: backendEnums(n.resolver.CompletedStages()),
		Context: dto.StateContext{
			Page:        string(res.Stage),
			Route:       path,
			Description: res.Description,
		},
	}

	if err := n.pusher.PushState(ctx, org.Id, req); err != nil {
		n.log.Warn("workflow-notifier", "state push failed", map[string]interface{}{
			"error": err.Error(),
			"route": path,
			"stage": enum,
		})
	}
}

// NotifyStageEvent pushes state for a pipeline side-channel event. These are
// not tied to a navigation path, so no path bookkeeping applies.
func (n *WorkflowNotifier) NotifyStageEvent(ctx context.Context, org OrgContext, stageEvent string) {
	if !org.Valid() {
		return
	}
	stage, ok := stageEventStages[stageEvent]
	if !ok {
		n.log.Debug("workflow-notifier", "unknown stage event", map[string]interface{}{
			"stage_event": stageEvent,
		})
		return
	}
	enum, ok := BackendStage(stage)
	if !ok {
		return
	}

	req := &dto.PushStateRequest{
		State:           StateThinking,
		Stage:           enum,
		CompletedStages: backendEnums(n.resolver.CompletedStages()),
		Context: dto.StateContext{
			Page:        string(stage),
			Route:       "",
			Description: "Workflow advanced by the simulation pipeline",
		},
	}

	if err := n.pusher.PushState(ctx, org.Id, req); err != nil {
		n.log.Warn("workflow-notifier", "stage event push failed", map[string]interface{}{
			"error":       err.Error(),
			"stage_event": stageEvent,
		})
	}
}
