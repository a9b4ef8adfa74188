package telemetry

import (
	"time"
)

// Replay loops over a fixed frame sequence.
type Replay struct {
	frames []Frame
	index  int
}

// NewReplay copies frames into a replay positioned at index 0.
func NewReplay(frames []Frame) (*Replay, error) {
	if len(frames) == 0 {
		return nil, ErrEmptyReplay
	}
	cp := make([]Frame, len(frames))
	copy(cp, frames)
	return &Replay{frames: cp}, nil
}

// Next returns the frame at the current index and advances modulo length.
func (r *Replay) Next() Frame {
	f := r.frames[r.index]
	r.index = (r.index + 1) % len(r.frames)
	return f
}

// Len returns the number of frames.
func (r *Replay) Len() int { return len(r.frames) }

// Index returns the position of the next frame.
func (r *Replay) Index() int { return r.index }

// Stream produces exactly one frame per tick from either an installed replay
// or the synthetic generator, never both.
type Stream struct {
	synthetic *Synthetic
	replay    *Replay
}

// NewStream returns a stream in synthetic mode.
func NewStream(synthetic *Synthetic) *Stream {
	if synthetic == nil {
		synthetic = NewSynthetic(nil)
	}
	return &Stream{synthetic: synthetic}
}

// Next produces the frame for this tick.
func (s *Stream) Next(now time.Time) Frame {
	if s.replay != nil {
		return s.replay.Next()
	}
	return s.synthetic.Frame(now)
}

// Load installs a replay of frames. On error the current mode is untouched.
func (s *Stream) Load(frames []Frame) error {
	r, err := NewReplay(frames)
	if err != nil {
		return err
	}
	s.replay = r
	return nil
}

// Eject drops the replay and returns to synthetic mode.
func (s *Stream) Eject() {
	s.replay = nil
}

// Mode reports the active production mode.
func (s *Stream) Mode() Mode {
	if s.replay != nil {
		return ModeReplay
	}
	return ModeSynthetic
}

// ReplayLen returns the replay length, or 0 in synthetic mode.
func (s *Stream) ReplayLen() int {
	if s.replay == nil {
		return 0
	}
	return s.replay.Len()
}

// ReplayIndex returns the replay cursor, or 0 in synthetic mode.
func (s *Stream) ReplayIndex() int {
	if s.replay == nil {
		return 0
	}
	return s.replay.Index()
}
