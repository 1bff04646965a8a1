package listen

import (
	"time"

	"github.com/earshot-app/earshot/capture"
)

// Session tracks one in-flight utterance. The audio itself accumulates in
// the capture device; the session owns only the start timestamp and the
// finalize-once handover. At most one session exists at a time, enforced by
// the controller's state machine.
type Session struct {
	startedAt time.Time
	finalized bool
}

func newSession(now time.Time) *Session {
	return &Session{startedAt: now}
}

// StartedAt returns the moment recording began.
func (s *Session) StartedAt() time.Time {
	return s.startedAt
}

// Elapsed returns how long the session has been recording.
func (s *Session) Elapsed(now time.Time) time.Duration {
	return now.Sub(s.startedAt)
}

// finalize transfers ownership of the captured clip exactly once. The
// second and later calls return an empty clip and false.
func (s *Session) finalize(clip capture.Clip) (capture.Clip, bool) {
	if s.finalized {
		return capture.Clip{}, false
	}
	s.finalized = true
	return clip, true
}
