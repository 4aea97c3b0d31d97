package survey

import (
	"errors"

	"market-sim-orchestrator/internal/model"
)

// ErrMissingConfig is a routing precondition failure, not a fault: the host
// redirects back to the population step instead of surfacing an error.
var ErrMissingConfig = errors.New("survey config missing; population must be confirmed first")

// Config is the fully-formed hand-off from a confirmed simulation pipeline.
// The executor refuses to run without one.
type Config struct {
	ExplorationId      string
	PersonaIds         []string
	PersonaNames       []string
	SimulationId       string
	SampleDistribution model.SampleDistribution
	TotalSampleSize    int
	QuestionnaireData  *model.Questionnaire
}

// Complete reports whether the config carries everything a survey run needs.
func (c *Config) Complete() bool {
	return c != nil &&
		c.ExplorationId != "" &&
		c.SimulationId != "" &&
		len(c.PersonaIds) > 0 &&
		c.QuestionnaireData != nil
}
