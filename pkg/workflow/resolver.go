package workflow

import (
	"strings"
	"sync"
)

// Resolution is the outcome of evaluating one navigation path.
type Resolution struct {
	Stage       Stage
	Description string
	Previous    Stage
	Changed     bool
	// PathChanged is true until the notifier marks the path processed; a
	// path is eligible for downstream notification once per distinct value.
	PathChanged bool
}

// rule maps a path predicate to a stage. Rules are evaluated in order,
// first match wins, so more specific fragments must precede general ones.
type rule struct {
	match       func(path string) bool
	stage       Stage
	description string
}

// StageResolver derives the semantic workflow stage from the navigation path
// and carries the only two pieces of session state the stage layer owns: the
// last processed path and the completed-stage set. The completed set only
// grows; nothing short of Reset shrinks it.
type StageResolver struct {
	mu                sync.Mutex
	rules             []rule
	lastProcessedPath string
	prevStage         Stage
	completed         []Stage
	completedSet      map[Stage]struct{}
}

func contains(fragment string) func(string) bool {
	return func(path string) bool {
		return strings.Contains(path, fragment)
	}
}

// defaultRules covers the product's route table, most specific fragment
// first. Exploration-stage fragments precede "workspaces": every exploration
// route nests under /workspaces/{w}/, so the workspace-list rule only catches
// paths with no deeper stage fragment. Likewise "workspaces" precedes
// "organization" for /organization/workspaces.
func defaultRules() []rule {
	return []rule{
		{contains("manage-users"), StageManageWorkspaceUsers, "Managing workspace membership and roles"},
		{contains("workspace-setup"), StageWorkspaceSetup, "Configuring a new workspace"},
		{contains("research-objective"), StageResearchObjective, "Defining the research objective for this exploration"},
		{contains("persona"), StagePersona, "Building personas and the simulated population"},
		{contains("questionnaire"), StageQuestionnaire, "Building the questionnaire and running survey simulations"},
		{contains("survey"), StageQuestionnaire, "Building the questionnaire and running survey simulations"},
		{contains("rebuttal"), StageChat, "Probing individual survey answers in conversation"},
		{contains("chat"), StageChat, "Probing individual survey answers in conversation"},
		{contains("insights"), StageInsights, "Reviewing compiled research insights"},
		{contains("workspaces"), StageWorkspaceList, "Browsing workspaces in the organization"},
		{contains("organization"), StageOrganization, "Reviewing organization settings"},
	}
}

func NewStageResolver() *StageResolver {
	return &StageResolver{
		rules:        defaultRules(),
		prevStage:    StageDashboard,
		completedSet: make(map[Stage]struct{}),
	}
}

// Resolve evaluates one path. If the stage changed and the previous stage was
// not Dashboard, the previous stage joins the completed set. Re-evaluating
// the same path recomputes the stage but stays ineligible for notification.
func (r *StageResolver) Resolve(path string) Resolution {
	r.mu.Lock()
	defer r.mu.Unlock()

	stage, description := r.matchStage(path)
	prev := r.prevStage
	changed := stage != prev
	if changed && prev != StageDashboard {
		r.addCompleted(prev)
	}
	r.prevStage = stage

	return Resolution{
		Stage:       stage,
		Description: description,
		Previous:    prev,
		Changed:     changed,
		PathChanged: path != r.lastProcessedPath,
	}
}

func (r *StageResolver) matchStage(path string) (Stage, string) {
	for _, rl := range r.rules {
		if rl.match(path) {
			return rl.stage, rl.description
		}
	}
	return StageDashboard, "Overview of workspaces and recent activity"
}

func (r *StageResolver) addCompleted(s Stage) {
	if _, ok := r.completedSet[s]; ok {
		return
	}
	r.completedSet[s] = struct{}{}
	r.completed = append(r.completed, s)
}

// MarkProcessed consumes the path for notification purposes. Called by the
// notifier regardless of dispatch outcome.
func (r *StageResolver) MarkProcessed(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastProcessedPath = path
}

func (r *StageResolver) LastProcessedPath() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastProcessedPath
}

// CompletedStages returns a snapshot of the completed set in insertion order.
func (r *StageResolver) CompletedStages() []Stage {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Stage, len(r.completed))
	copy(out, r.completed)
	return out
}

// Reset clears all carried state. Only a full session reset calls this.
func (r *StageResolver) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastProcessedPath = ""
	r.prevStage = StageDashboard
	r.completed = nil
	r.completedSet = make(map[Stage]struct{})
}
