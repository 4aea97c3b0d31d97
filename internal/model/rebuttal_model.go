package model

import (
	"time"

	"github.com/google/uuid"
)

// Message senders. Server history only ever carries these two.
const (
	SenderUser      = "user"
	SenderAssistant = "assistant"
)

// RebuttalSession is a persisted conversational thread probing one survey
// answer. Exactly one session may exist per (persona, question) pair.
type RebuttalSession struct {
	Id             string        `json:"id"`
	QuestionId     string        `json:"question_id"`
	PersonaId      string        `json:"persona_id"`
	SimulationId   string        `json:"simulation_id"`
	StarterMessage string        `json:"starter_message"`
	Messages       []ChatMessage `json:"messages"`
}

// ChatMessage is a single entry in a rebuttal conversation. Ids are client
// generated for optimistic entries and server issued for hydrated history;
// both are stable, so reconciliation merges by id rather than by text.
type ChatMessage struct {
	Id        uuid.UUID              `json:"id"`
	Sender    string                 `json:"sender"`
	Text      string                 `json:"text"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}
