package workflow

import (
	"context"
	"sync"

	"market-sim-orchestrator/internal/dto"
	"market-sim-orchestrator/internal/pkg/logger"
)

// IntentCreateWorkspace is the user intent sent with workspace-setup
// guidance.
const IntentCreateWorkspace = "create_workspace"

type guidanceRequester interface {
	RequestGuidance(ctx context.Context, orgId string, req *dto.GuidanceRequest) error
}

// GuidanceTrigger requests proactive guidance whenever the stage becomes
// Workspace Setup under a valid org. It deliberately re-fires on every
// re-entry into the stage; repeated guidance on return visits is product
// behavior, not a bug.
type GuidanceTrigger struct {
	requester guidanceRequester
	log       logger.ILogger

	mu        sync.Mutex
	lastStage Stage
}

func NewGuidanceTrigger(requester guidanceRequester, log logger.ILogger) *GuidanceTrigger {
	return &GuidanceTrigger{
		requester: requester,
		log:       log,
		lastStage: StageDashboard,
	}
}

// Observe watches the (stage, org) pair. Fires only on the transition into
// Workspace Setup; re-evaluations of the same stage do not fire.
func (g *GuidanceTrigger) Observe(ctx context.Context, stage Stage, org OrgContext) {
	g.mu.Lock()
	entered := stage != g.lastStage
	g.lastStage = stage
	g.mu.Unlock()

	if !entered || stage != StageWorkspaceSetup || !org.Valid() {
		return
	}

	req := &dto.GuidanceRequest{
		Stage: BackendOrganizationSetup,
		UserInput: dto.GuidanceInput{
			Intent: IntentCreateWorkspace,
		},
	}
	if err := g.requester.RequestGuidance(ctx, org.Id, req); err != nil {
		g.log.Warn("guidance-trigger", "guidance request failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
}
