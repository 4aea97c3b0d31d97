package workflow

import (
	"context"
	"testing"

	"market-sim-orchestrator/internal/dto"
	"market-sim-orchestrator/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingGuidance struct {
	calls []dto.GuidanceRequest
}

func (g *recordingGuidance) RequestGuidance(_ context.Context, _ string, req *dto.GuidanceRequest) error {
	g.calls = append(g.calls, *req)
	return nil
}

func TestGuidanceFiresOnWorkspaceSetupEntry(t *testing.T) {
	rec := &recordingGuidance{}
	g := NewGuidanceTrigger(rec, logger.NopLogger{})
	ctx := context.Background()
	org := OrgContext{Id: "org-1"}

	g.Observe(ctx, StageWorkspaceSetup, org)

	require.Len(t, rec.calls, 1)
	assert.Equal(t, BackendOrganizationSetup, rec.calls[0].Stage)
	assert.Equal(t, IntentCreateWorkspace, rec.calls[0].UserInput.Intent)
}

func TestGuidanceRefiresOnReentry(t *testing.T) {
	// Leave-and-return must fire twice: no de-duplication across visits.
	rec := &recordingGuidance{}
	g := NewGuidanceTrigger(rec, logger.NopLogger{})
	ctx := context.Background()
	org := OrgContext{Id: "org-1"}

	g.Observe(ctx, StageWorkspaceSetup, org)
	g.Observe(ctx, StageWorkspaceList, org)
	g.Observe(ctx, StageWorkspaceSetup, org)

	assert.Len(t, rec.calls, 2)
}

func TestGuidanceIgnoresRepeatedEvaluations(t *testing.T) {
	rec := &recordingGuidance{}
	g := NewGuidanceTrigger(rec, logger.NopLogger{})
	ctx := context.Background()
	org := OrgContext{Id: "org-1"}

	g.Observe(ctx, StageWorkspaceSetup, org)
	g.Observe(ctx, StageWorkspaceSetup, org)

	assert.Len(t, rec.calls, 1, "same-stage re-evaluation is not a re-entry")
}

func TestGuidanceRequiresValidOrg(t *testing.T) {
	rec := &recordingGuidance{}
	g := NewGuidanceTrigger(rec, logger.NopLogger{})
	ctx := context.Background()

	g.Observe(ctx, StageWorkspaceSetup, OrgContext{Id: OrgUnset})
	g.Observe(ctx, StageWorkspaceSetup, OrgContext{Id: ""})

	assert.Empty(t, rec.calls)
}

func TestGuidanceIgnoresOtherStages(t *testing.T) {
	rec := &recordingGuidance{}
	g := NewGuidanceTrigger(rec, logger.NopLogger{})
	ctx := context.Background()
	org := OrgContext{Id: "org-1"}

	for _, s := range []Stage{StageDashboard, StageOrganization, StagePersona, StageChat, StageInsights} {
		g.Observe(ctx, s, org)
	}

	assert.Empty(t, rec.calls)
}

func TestResolveOrgPicksFirstUsableSource(t *testing.T) {
	assert.Equal(t, "org-2", ResolveOrg("", OrgUnset, "org-2", "org-3").Id)
	assert.False(t, ResolveOrg("", OrgUnset).Valid())
}
