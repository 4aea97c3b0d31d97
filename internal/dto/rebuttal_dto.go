package dto

// StartRebuttalRequest is the body of
// POST /workspaces/{w}/explorations/{e}/rebuttal/start.
type StartRebuttalRequest struct {
	PersonaId    string `json:"persona_id" validate:"required"`
	SimulationId string `json:"simulation_id" validate:"required"`
	QuestionId   string `json:"question_id" validate:"required"`
}

// RebuttalReplyRequest is the body of
// POST /workspaces/{w}/explorations/{e}/rebuttal/reply.
type RebuttalReplyRequest struct {
	SessionId   string `json:"session_id" validate:"required"`
	UserMessage string `json:"user_message" validate:"required"`
}

// RebuttalReplyResponse carries the assistant's answer to one reply.
// Explainers is optional insight metadata attached to the message.
type RebuttalReplyResponse struct {
	SessionId  string                 `json:"session_id"`
	Message    string                 `json:"message"`
	Explainers map[string]interface{} `json:"explainers,omitempty"`
}

// RebuttalQuestionsRequest scopes the question catalog read.
type RebuttalQuestionsRequest struct {
	SimulationId       string `json:"simulation_id" validate:"required"`
	SurveySimulationId string `json:"survey_simulation_id" validate:"required"`
}
