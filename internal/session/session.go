// Package session implements one play-through of a quiz as a small state
// machine with a countdown timer.
//
// A Session is not safe for concurrent use. One goroutine owns it and feeds
// it user events and the ticks received from Ticks.
package session

import (
	"fmt"
	"time"

	"quizmaster/internal/domain"
)

// State is the lifecycle position of a session.
type State int

const (
	Intro State = iota
	Playing
	Finished
)

func (s State) String() string {
	switch s {
	case Intro:
		return "intro"
	case Playing:
		return "playing"
	case Finished:
		return "finished"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// UnlimitedTime is the remaining-time value of a quiz without a time limit.
const UnlimitedTime = -1

const tickInterval = time.Second

// Option configures a Session.
type Option func(*Session)

// WithClock replaces the wall clock used for the countdown.
func WithClock(c Clock) Option {
	return func(s *Session) { s.clock = c }
}

// Session is one play-through of a quiz.
type Session struct {
	quiz      domain.Quiz
	clock     Clock
	opts      []Option
	state     State
	current   int
	answers   []domain.Answer
	remaining int
	ticker    Ticker
	result    Result
	revealed  bool
}

// New returns a session in the Intro state. The quiz is treated as immutable.
func New(quiz domain.Quiz, opts ...Option) *Session {
	s := &Session{
		quiz:  quiz,
		clock: SystemClock{},
		opts:  opts,
		state: Intro,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start enters Playing. A quiz without questions finishes immediately with 0/0.
func (s *Session) Start() error {
	if s.state != Intro {
		return s.invalid("start")
	}
	s.answers = make([]domain.Answer, len(s.quiz.Questions))
	s.current = 0
	if s.quiz.TimeLimitMinutes > 0 {
		s.remaining = s.quiz.TimeLimitMinutes * 60
	} else {
		s.remaining = UnlimitedTime
	}
	s.state = Playing
	if len(s.quiz.Questions) == 0 {
		s.finish()
		return nil
	}
	if s.remaining != UnlimitedTime {
		s.ticker = s.clock.NewTicker(tickInterval)
	}
	return nil
}

// RecordAnswer overwrites the slot of the current question. It does not advance.
func (s *Session) RecordAnswer(a domain.Answer) error {
	if s.state != Playing {
		return s.invalid("record answer")
	}
	s.answers[s.current] = a
	return nil
}

// CanAdvance reports whether the current slot holds an answer. Callers must
// check it before Advance; the session itself does not enforce it.
func (s *Session) CanAdvance() bool {
	return s.state == Playing && s.answers[s.current].Given()
}

// Advance moves to the next question, or finishes on the last one.
func (s *Session) Advance() error {
	if s.state != Playing {
		return s.invalid("advance")
	}
	if s.current >= len(s.quiz.Questions)-1 {
		s.finish()
		return nil
	}
	s.current++
	return nil
}

// Retreat moves to the previous question. It is a no-op on the first one.
func (s *Session) Retreat() error {
	if s.state != Playing {
		return s.invalid("retreat")
	}
	if s.current > 0 {
		s.current--
	}
	return nil
}

// Ticks delivers one value per elapsed second while a countdown runs. It is
// nil otherwise, so a select on it blocks.
func (s *Session) Ticks() <-chan time.Time {
	if s.ticker == nil {
		return nil
	}
	return s.ticker.C()
}

// Tick consumes one second of the countdown and finishes the session when
// the time runs out. It is ignored outside Playing and without a time limit.
func (s *Session) Tick() {
	if s.state != Playing || s.remaining == UnlimitedTime {
		return
	}
	if s.remaining > 0 {
		s.remaining--
	}
	if s.remaining == 0 {
		s.finish()
	}
}

func (s *Session) finish() {
	s.stopTimer()
	s.result = Score(s.quiz.Questions, s.answers)
	s.state = Finished
}

// Close cancels the countdown. It is called when the player leaves the
// session and is safe to call more than once.
func (s *Session) Close() {
	s.stopTimer()
}

func (s *Session) stopTimer() {
	if s.ticker != nil {
		s.ticker.Stop()
		s.ticker = nil
	}
}

// RevealReview marks the detailed review as shown.
func (s *Session) RevealReview() error {
	if s.state != Finished {
		return s.invalid("reveal review")
	}
	s.revealed = true
	return nil
}

// Restart returns a fresh Intro session for the same quiz. The finished
// session is left untouched.
func (s *Session) Restart() (*Session, error) {
	if s.state != Finished {
		return nil, s.invalid("restart")
	}
	return New(s.quiz, s.opts...), nil
}

// State returns the lifecycle position.
func (s *Session) State() State { return s.state }

// Quiz returns the quiz being played.
func (s *Session) Quiz() domain.Quiz { return s.quiz }

// CurrentIndex returns the zero-based position of the current question.
func (s *Session) CurrentIndex() int { return s.current }

// CurrentQuestion returns the question being played.
func (s *Session) CurrentQuestion() (domain.Question, bool) {
	if s.state != Playing {
		return domain.Question{}, false
	}
	return s.quiz.Questions[s.current], true
}

// Answers returns a copy of the recorded slots.
func (s *Session) Answers() []domain.Answer {
	out := make([]domain.Answer, len(s.answers))
	copy(out, s.answers)
	return out
}

// Remaining returns the seconds left and whether the quiz is unlimited.
func (s *Session) Remaining() (int, bool) {
	return s.remaining, s.remaining == UnlimitedTime
}

// Result returns the final score once the session has finished.
func (s *Session) Result() (Result, bool) {
	if s.state != Finished {
		return Result{}, false
	}
	return s.result, true
}

// Review returns the answer review once the session has finished.
func (s *Session) Review() ([]ReviewItem, bool) {
	if s.state != Finished {
		return nil, false
	}
	return BuildReview(s.quiz.Questions, s.answers), true
}

// Revealed reports whether the detailed review was requested.
func (s *Session) Revealed() bool { return s.revealed }

func (s *Session) invalid(op string) error {
	return fmt.Errorf("%w: cannot %s while %s", domain.ErrInvalidState, op, s.state)
}
