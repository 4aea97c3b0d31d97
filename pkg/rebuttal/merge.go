package rebuttal

import (
	"market-sim-orchestrator/internal/model"

	"github.com/google/uuid"
)

// starterMessageId derives a stable id for a session's synthesized starter
// message, so repeated hydrations merge instead of duplicating it.
func starterMessageId(sessionId string) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte("rebuttal-starter/"+sessionId))
}

// mergeMessages reconciles the local message list against a
// server-authoritative snapshot. Server order wins for acknowledged
// messages; local messages the server has not echoed yet survive at the
// tail. A local optimistic message counts as acknowledged once the server
// snapshot carries a message with the same id, or the same sender and text
// (the server assigns its own ids to echoed user messages). Each server
// message acknowledges at most one local message, so a repeated identical
// text ("yes" sent twice) only drops as many copies as the server echoed.
func mergeMessages(local, server []model.ChatMessage) []model.ChatMessage {
	serverIds := make(map[uuid.UUID]struct{}, len(server))
	serverTexts := make(map[string]int, len(server))
	for _, msg := range server {
		serverIds[msg.Id] = struct{}{}
		serverTexts[msg.Sender+"\x00"+msg.Text]++
	}

	merged := make([]model.ChatMessage, 0, len(server)+len(local))
	merged = append(merged, server...)

	for _, msg := range local {
		key := msg.Sender + "\x00" + msg.Text
		if _, ok := serverIds[msg.Id]; ok {
			serverTexts[key]--
			continue
		}
		if serverTexts[key] > 0 {
			serverTexts[key]--
			continue
		}
		merged = append(merged, msg)
	}
	return merged
}

// hydrateMessages builds the authoritative message list for a session,
// prepending the synthesized starter message unless the server history
// already opens with it.
func hydrateMessages(session *model.RebuttalSession) []model.ChatMessage {
	msgs := make([]model.ChatMessage, 0, len(session.Messages)+1)

	if session.StarterMessage != "" && !containsText(session.Messages, session.StarterMessage) {
		msgs = append(msgs, model.ChatMessage{
			Id:     starterMessageId(session.Id),
			Sender: model.SenderAssistant,
			Text:   session.StarterMessage,
		})
	}
	msgs = append(msgs, session.Messages...)
	return msgs
}

func containsText(msgs []model.ChatMessage, text string) bool {
	for _, m := range msgs {
		if m.Text == text {
			return true
		}
	}
	return false
}
