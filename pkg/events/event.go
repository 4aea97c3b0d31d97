package events

import "time"

// Topic names for the in-process bus.
const (
	TopicNavigation = "NAVIGATION_EVENTS"
	TopicStage      = "WORKFLOW_STAGE_EVENTS"
)

// NavigationEvent is emitted by the hosting application whenever the active
// route changes. The stage components derive everything else from it.
type NavigationEvent struct {
	Path       string    `json:"path"`
	OrgId      string    `json:"org_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// StageEvent is the pipeline's side-channel to the notifier: a workflow step
// completed out-of-band of navigation (e.g. "questionnaire" once a population
// is confirmed).
type StageEvent struct {
	Stage      string    `json:"stage"`
	OrgId      string    `json:"org_id"`
	OccurredAt time.Time `json:"occurred_at"`
}
