package feed

import (
	"context"

	"github.com/okian/pitwall/internal/domain/speech"
)

// HubSpeaker hands utterances to connected clients, which own the synthesizer.
type HubSpeaker struct {
	hub *Hub
}

var _ speech.Speaker = (*HubSpeaker)(nil)

// NewHubSpeaker creates a speaker broadcasting on hub.
func NewHubSpeaker(hub *Hub) *HubSpeaker {
	return &HubSpeaker{hub: hub}
}

// Cancel tells clients to stop the utterance in flight.
func (s *HubSpeaker) Cancel(_ context.Context) error {
	return s.hub.Broadcast(TypeCancel, nil)
}

// Speak tells clients to say u.
func (s *HubSpeaker) Speak(_ context.Context, u speech.Utterance) error {
	return s.hub.Broadcast(TypeSpeak, u)
}
