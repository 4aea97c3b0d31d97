package dto

// PushStateRequest is the body of PUT /organizations/{orgId}/omi/state.
// State is always "thinking" for workflow pushes; the assistant uses it to
// decide whether to surface a typing indicator.
type PushStateRequest struct {
	State           string       `json:"state" validate:"required"`
	Stage           string       `json:"stage" validate:"required"`
	CompletedStages []string     `json:"completed_stages"`
	Context         StateContext `json:"context"`
}

// StateContext carries the page-level detail the assistant shows alongside
// its guidance.
type StateContext struct {
	Page        string `json:"page"`
	Route       string `json:"route"`
	Description string `json:"description"`
}

// GuidanceRequest is the body of POST /organizations/{orgId}/omi/guidance.
type GuidanceRequest struct {
	Stage     string        `json:"stage" validate:"required"`
	UserInput GuidanceInput `json:"user_input"`
}

type GuidanceInput struct {
	Intent string `json:"intent" validate:"required"`
}

type AssistantChatRequest struct {
	Message string `json:"message" validate:"required"`
}

type AssistantChatResponse struct {
	Reply string `json:"reply"`
}

type AssistantValidateRequest struct {
	Stage   string                 `json:"stage" validate:"required"`
	Payload map[string]interface{} `json:"payload,omitempty"`
}

type AssistantValidateResponse struct {
	Valid  bool     `json:"valid"`
	Issues []string `json:"issues,omitempty"`
}
