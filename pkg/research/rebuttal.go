package research

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"market-sim-orchestrator/internal/dto"
	"market-sim-orchestrator/internal/model"

	"go.opentelemetry.io/otel/attribute"
)

// ListRebuttalQuestions issues GET .../rebuttal/questions scoped to a
// simulation and its survey simulation, returning the flattened question
// catalog eligible for rebuttal.
func (c *Client) ListRebuttalQuestions(ctx context.Context, scope Scope, req *dto.RebuttalQuestionsRequest) ([]model.Question, error) {
	ctx, span := c.tracer.Start(ctx, "rebuttal.questions")
	defer span.End()

	if err := c.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("validate rebuttal questions request: %w", err)
	}
	span.SetAttributes(attribute.String("simulation_id", req.SimulationId))

	params := url.Values{}
	params.Set("simulation_id", req.SimulationId)
	params.Set("survey_simulation_id", req.SurveySimulationId)

	var questions []model.Question
	u := c.scopeURL(scope, "rebuttal/questions") + "?" + params.Encode()
	if err := c.getJSON(ctx, u, &questions); err != nil {
		return nil, err
	}
	return questions, nil
}

// StartRebuttal issues POST .../rebuttal/start and returns the new session,
// including its server-issued id and starter message.
func (c *Client) StartRebuttal(ctx context.Context, scope Scope, req *dto.StartRebuttalRequest) (*model.RebuttalSession, error) {
	ctx, span := c.tracer.Start(ctx, "rebuttal.start")
	defer span.End()

	if err := c.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("validate rebuttal start request: %w", err)
	}
	span.SetAttributes(
		attribute.String("simulation_id", req.SimulationId),
		attribute.String("question_id", req.QuestionId),
	)

	var session model.RebuttalSession
	if err := c.postJSON(ctx, c.scopeURL(scope, "rebuttal/start"), req, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// SendRebuttalReply issues POST .../rebuttal/reply for an active session.
func (c *Client) SendRebuttalReply(ctx context.Context, scope Scope, req *dto.RebuttalReplyRequest) (*dto.RebuttalReplyResponse, error) {
	ctx, span := c.tracer.Start(ctx, "rebuttal.reply")
	defer span.End()

	if err := c.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("validate rebuttal reply request: %w", err)
	}
	span.SetAttributes(attribute.String("session_id", req.SessionId))

	var resp dto.RebuttalReplyResponse
	if err := c.postJSON(ctx, c.scopeURL(scope, "rebuttal/reply"), req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetRebuttalSession issues GET .../rebuttal/session/{id} and returns the
// server-authoritative session detail.
func (c *Client) GetRebuttalSession(ctx context.Context, scope Scope, sessionId string) (*model.RebuttalSession, error) {
	ctx, span := c.tracer.Start(ctx, "rebuttal.session")
	defer span.End()
	span.SetAttributes(attribute.String("session_id", sessionId))

	var session model.RebuttalSession
	if err := c.getJSON(ctx, c.scopeURL(scope, "rebuttal/session/"+sessionId), &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// ListRebuttalSessions issues GET .../rebuttal/sessions for the exploration.
func (c *Client) ListRebuttalSessions(ctx context.Context, scope Scope) ([]model.RebuttalSession, error) {
	ctx, span := c.tracer.Start(ctx, "rebuttal.sessions")
	defer span.End()

	var sessions []model.RebuttalSession
	if err := c.getJSON(ctx, c.scopeURL(scope, "rebuttal/sessions"), &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

// EndExploration issues POST .../end. Best-effort by contract: callers log
// failures and proceed with navigation regardless.
func (c *Client) EndExploration(ctx context.Context, scope Scope) error {
	ctx, span := c.tracer.Start(ctx, "exploration.end")
	defer span.End()

	u := c.scopeURL(scope, "end")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	return c.do(req, nil)
}
