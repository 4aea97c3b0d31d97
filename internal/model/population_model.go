package model

// PopulationSimulation is the server's record of a simulated population.
// Id is the simulation id: the pivot value threaded unchanged through
// questionnaire generation, survey simulation and rebuttal sessions for
// one workflow run.
type PopulationSimulation struct {
	Id            string  `json:"id"`
	WeightedScore float64 `json:"weighted_score"`
	Status        string  `json:"status,omitempty"`
}
