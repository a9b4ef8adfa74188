package speech

import (
	"context"

	"github.com/okian/pitwall/pkg/logger"
)

// LogSpeaker writes utterances to the log instead of a synthesizer.
type LogSpeaker struct {
	log logger.Logger
}

// NewLogSpeaker returns a speaker logging through l.
func NewLogSpeaker(l logger.Logger) *LogSpeaker {
	if l == nil {
		l = logger.Nop()
	}
	return &LogSpeaker{log: l}
}

func (s *LogSpeaker) Cancel(ctx context.Context) error {
	s.log.Debug(ctx, "speech cancelled")
	return nil
}

func (s *LogSpeaker) Speak(ctx context.Context, u Utterance) error {
	s.log.Info(ctx, "speaking",
		logger.String("agent", string(u.Agent)),
		logger.String("text", u.Text),
		logger.String("voice", u.Voice),
		logger.Float64("rate", u.Rate),
		logger.Float64("pitch", u.Pitch))
	return nil
}

// Multi fans every call out to each speaker and returns the first error.
type Multi []Speaker

func (m Multi) Cancel(ctx context.Context) error {
	var first error
	for _, s := range m {
		if err := s.Cancel(ctx); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (m Multi) Speak(ctx context.Context, u Utterance) error {
	var first error
	for _, s := range m {
		if err := s.Speak(ctx, u); err != nil && first == nil {
			first = err
		}
	}
	return first
}
