package model

// Questionnaire is an ordered list of sections scoped to one simulation id.
// An uploaded document replaces the generated questionnaire wholesale.
type Questionnaire struct {
	SimulationId string                 `json:"simulation_id"`
	Sections     []QuestionnaireSection `json:"sections"`
}

type QuestionnaireSection struct {
	Title     string     `json:"title"`
	Questions []Question `json:"questions"`
}

type Question struct {
	Id      string   `json:"id"`
	Text    string   `json:"text"`
	Options []string `json:"options"`
}

// Flatten returns all questions in section order. Survey simulation and the
// rebuttal question catalog both consume the flat form.
func (q *Questionnaire) Flatten() []Question {
	var out []Question
	for _, section := range q.Sections {
		out = append(out, section.Questions...)
	}
	return out
}
