package workflow

import (
	"testing"
)

func TestResolveStageFromPath(t *testing.T) {
	tests := []struct {
		name      string
		path      string
		wantStage Stage
	}{
		{"dashboard default", "/", StageDashboard},
		{"unknown path falls back to dashboard", "/settings/profile", StageDashboard},
		{"organization", "/organization", StageOrganization},
		{"workspace list", "/organization/workspaces", StageWorkspaceList},
		{"workspace setup beats workspace list", "/organization/workspace-setup", StageWorkspaceSetup},
		{"manage users beats workspace setup", "/organization/workspace-setup/manage-users", StageManageWorkspaceUsers},
		{"workspace list under workspaces prefix", "/workspaces/w-1", StageWorkspaceList},
		{"research objective", "/workspaces/w-1/explorations/e-1/research-objective", StageResearchObjective},
		{"research objective beats workspaces prefix", "/workspaces/w-1/research-objective", StageResearchObjective},
		{"persona", "/workspaces/w-1/explorations/e-1/persona-builder", StagePersona},
		{"persona beats workspaces prefix", "/workspaces/w-1/persona", StagePersona},
		{"questionnaire", "/workspaces/w-1/explorations/e-1/questionnaire", StageQuestionnaire},
		{"survey results", "/workspaces/w-1/explorations/e-1/survey-results", StageQuestionnaire},
		{"rebuttal chat", "/workspaces/w-1/explorations/e-1/rebuttal", StageChat},
		{"insights", "/workspaces/w-1/explorations/e-1/insights", StageInsights},
		{"insights beats workspaces prefix", "/workspaces/w-1/insights", StageInsights},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewStageResolver()
			res := r.Resolve(tt.path)
			if res.Stage != tt.wantStage {
				t.Errorf("Resolve(%q).Stage = %q, want %q", tt.path, res.Stage, tt.wantStage)
			}
		})
	}
}

func TestCompletedSetGrowsOnStageChange(t *testing.T) {
	r := NewStageResolver()

	r.Resolve("/workspaces/w-1/explorations/e-1/research-objective")
	if got := r.CompletedStages(); len(got) != 0 {
		t.Fatalf("leaving Dashboard should not complete it, got %v", got)
	}

	r.Resolve("/organization/workspace-setup")
	got := r.CompletedStages()
	if len(got) != 1 || got[0] != StageResearchObjective {
		t.Fatalf("CompletedStages = %v, want [Research Objective]", got)
	}
}

func TestCompletedSetNeverShrinks(t *testing.T) {
	r := NewStageResolver()
	paths := []string{
		"/organization",
		"/organization/workspaces",
		"/organization/workspace-setup",
		"/workspaces/w-1/explorations/e-1/research-objective",
		"/workspaces/w-1/explorations/e-1/persona-builder",
		"/organization", // revisit
		"/workspaces/w-1/explorations/e-1/persona-builder",
	}

	prev := 0
	for _, p := range paths {
		r.Resolve(p)
		n := len(r.CompletedStages())
		if n < prev {
			t.Fatalf("completed set shrank from %d to %d at %q", prev, n, p)
		}
		prev = n
	}
}

func TestCompletedSetDeduplicates(t *testing.T) {
	r := NewStageResolver()
	// Bounce between two stages; each should be recorded once.
	for i := 0; i < 3; i++ {
		r.Resolve("/organization")
		r.Resolve("/workspaces/w-1/explorations/e-1/persona-builder")
	}

	got := r.CompletedStages()
	counts := make(map[Stage]int)
	for _, s := range got {
		counts[s]++
	}
	for s, n := range counts {
		if n > 1 {
			t.Errorf("stage %q recorded %d times", s, n)
		}
	}
}

func TestSamePathStaysIneligibleUntilProcessed(t *testing.T) {
	r := NewStageResolver()

	res := r.Resolve("/organization")
	if !res.PathChanged {
		t.Fatal("first evaluation of a path should be eligible")
	}

	r.MarkProcessed("/organization")
	res = r.Resolve("/organization")
	if res.PathChanged {
		t.Fatal("processed path should not be eligible again")
	}
	if res.Stage != StageOrganization {
		t.Fatalf("stage recomputation should still occur, got %q", res.Stage)
	}
}

func TestResetClearsCarriedState(t *testing.T) {
	r := NewStageResolver()
	r.Resolve("/organization")
	r.Resolve("/organization/workspace-setup")
	r.MarkProcessed("/organization/workspace-setup")

	r.Reset()

	if got := r.CompletedStages(); len(got) != 0 {
		t.Errorf("CompletedStages after reset = %v, want empty", got)
	}
	if got := r.LastProcessedPath(); got != "" {
		t.Errorf("LastProcessedPath after reset = %q, want empty", got)
	}
}

func TestBackendEnumsDeduplicate(t *testing.T) {
	got := backendEnums([]Stage{StageOrganization, StageWorkspaceList, StageResearchObjective, StageDashboard})
	want := []string{BackendOrganizationSetup, BackendResearchObjectives}
	if len(got) != len(want) {
		t.Fatalf("backendEnums = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("backendEnums = %v, want %v", got, want)
		}
	}
}
