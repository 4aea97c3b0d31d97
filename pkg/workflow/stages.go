package workflow

// Stage is the UI-facing label for the current point in the research
// workflow. Derived from the navigation path; never persisted.
type Stage string

const (
	StageDashboard            Stage = "Dashboard"
	StageOrganization         Stage = "Organization"
	StageWorkspaceList        Stage = "Workspace List"
	StageWorkspaceSetup       Stage = "Workspace Setup"
	StageManageWorkspaceUsers Stage = "Manage Workspace Users"
	StageResearchObjective    Stage = "Research Objective"
	StagePersona              Stage = "Persona"
	StageQuestionnaire        Stage = "Questionnaire"
	StageChat                 Stage = "Chat"
	StageInsights             Stage = "Insights"
)

// Backend stage enums understood by the assistant service.
const (
	BackendOrganizationSetup  = "organization_setup"
	BackendWorkspaceSetup     = "workspace_setup"
	BackendResearchObjectives = "research_objectives"
	BackendPersonaBuilder     = "persona_builder"
	BackendSurveyBuilder      = "survey_builder"
	BackendRebuttalMode       = "rebuttal_mode"
	BackendInsights           = "insights"
)

// backendStages is the wire contract with the assistant service. Dashboard is
// intentionally absent: it has no backend equivalent and pushes for it are
// skipped.
var backendStages = map[Stage]string{
	StageOrganization:         BackendOrganizationSetup,
	StageWorkspaceList:        BackendOrganizationSetup,
	StageWorkspaceSetup:       BackendWorkspaceSetup,
	StageManageWorkspaceUsers: BackendWorkspaceSetup,
	StageResearchObjective:    BackendResearchObjectives,
	StagePersona:              BackendPersonaBuilder,
	StageQuestionnaire:        BackendSurveyBuilder,
	StageChat:                 BackendRebuttalMode,
	StageInsights:             BackendInsights,
}

// BackendStage maps a UI stage to its assistant-service enum. The second
// return is false for stages with no backend equivalent.
func BackendStage(s Stage) (string, bool) {
	enum, ok := backendStages[s]
	return enum, ok
}

// backendEnums maps a stage list to its deduplicated backend enum list,
// preserving first-seen order. Organization and Workspace List collapse to
// the same enum, so dedup matters.
func backendEnums(stages []Stage) []string {
	seen := make(map[string]struct{}, len(stages))
	out := make([]string, 0, len(stages))
	for _, s := range stages {
		enum, ok := backendStages[s]
		if !ok {
			continue
		}
		if _, dup := seen[enum]; dup {
			continue
		}
		seen[enum] = struct{}{}
		out = append(out, enum)
	}
	return out
}
