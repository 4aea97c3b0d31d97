package model

// SurveySimulationResult is the raw server output of a survey simulation run.
// Results maps question text to per-option statistics.
type SurveySimulationResult struct {
	SimulationId string                  `json:"simulation_id"`
	Sections     []SurveyResultSection   `json:"sections"`
	Narrative    SurveyNarrative         `json:"narrative"`
	Results      map[string][]OptionStat `json:"results"`
}

type SurveyNarrative struct {
	Summary string `json:"summary"`
}

type SurveyResultSection struct {
	Title     string                 `json:"title"`
	Questions []SurveyQuestionResult `json:"questions"`
}

type SurveyQuestionResult struct {
	QuestionId string       `json:"question_id"`
	Text       string       `json:"text"`
	Options    []OptionStat `json:"options"`
}

// OptionStat is the simulated response share for one answer option.
type OptionStat struct {
	Option     string  `json:"option"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}
