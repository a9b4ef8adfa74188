package service

import (
	"time"

	"github.com/okian/pitwall/internal/config"
	"github.com/okian/pitwall/internal/domain/backend"
	"github.com/okian/pitwall/internal/domain/pedagogy"
	"github.com/okian/pitwall/internal/domain/speech"
	"github.com/okian/pitwall/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithConfig sets timers, capacities, models and speech settings.
func WithConfig(cfg *config.Config) Option {
	return func(s *Service) {
		if cfg != nil {
			s.cfg = *cfg
		}
	}
}

// WithBackend enables live coaching and debriefs.
func WithBackend(b backend.Backend) Option {
	return func(s *Service) { s.backend = b }
}

// WithSpeaker sets the synthesizer the announcer drives.
func WithSpeaker(sp speech.Speaker) Option {
	return func(s *Service) { s.speaker = sp }
}

// WithBroadcaster sets where frames, advisories and debriefs are pushed.
func WithBroadcaster(b Broadcaster) Option {
	return func(s *Service) {
		if b != nil {
			s.feed = b
		}
	}
}

// WithPedagogy replaces the built-in knowledge base.
func WithPedagogy(p *pedagogy.Base) Option {
	return func(s *Service) {
		if p != nil {
			s.pedagogy = p
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
