package dto

// SimulatePopulationRequest is the body of
// POST /workspaces/{w}/explorations/{e}/population/simulate.
type SimulatePopulationRequest struct {
	ExplorationId      string         `json:"exploration_id" validate:"required"`
	PersonaIds         []string       `json:"persona_ids" validate:"required,min=1"`
	SampleDistribution map[string]int `json:"sample_distribution" validate:"required,dive,min=1"`
}

// GenerateQuestionnaireRequest is the body of
// POST /workspaces/{w}/explorations/{e}/questionnaire/generate.
// SimulationId must be the id returned by the population simulate call.
type GenerateQuestionnaireRequest struct {
	ExplorationId string   `json:"exploration_id" validate:"required"`
	PersonaIds    []string `json:"persona_id" validate:"required,min=1"`
	SimulationId  string   `json:"simulation_id" validate:"required"`
}

// SimulateSurveyRequest is the body of
// POST /workspaces/{w}/explorations/{e}/questionnaire/simulate.
type SimulateSurveyRequest struct {
	ExplorationId string           `json:"exploration_id" validate:"required"`
	PersonaIds    []string         `json:"persona_id" validate:"required,min=1"`
	SimulationId  string           `json:"simulation_id" validate:"required"`
	Questions     []SurveyQuestion `json:"questions"`
}

// SurveyQuestion is the flattened questionnaire entry submitted with a
// survey simulation.
type SurveyQuestion struct {
	Id      string   `json:"id"`
	Text    string   `json:"text"`
	Options []string `json:"options,omitempty"`
}

// SurveyPreview is the JSON preview of a compiled survey report.
type SurveyPreview struct {
	SimulationId string                 `json:"simulation_id"`
	Title        string                 `json:"title"`
	Body         map[string]interface{} `json:"body,omitempty"`
}
