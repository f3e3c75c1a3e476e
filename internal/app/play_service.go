package app

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"quizmaster/internal/domain"
	"quizmaster/internal/session"
)

// QuizRepository loads quiz content (from cache/backing store).
type QuizRepository interface {
	GetQuiz(ctx context.Context, quizID int64) (domain.Quiz, error)
}

// SessionRepository abstracts where open play sessions are kept.
type SessionRepository interface {
	Put(id string, s *session.Session)
	Get(id string) (*session.Session, bool)
	Delete(id string)
}

// SessionToucher is implemented by session stores that expire idle markers.
type SessionToucher interface {
	Touch(ctx context.Context, id string) error
}

// PlayService loads quizzes and hands out play sessions.
type PlayService struct {
	quizzes  QuizRepository
	sessions SessionRepository
	logger   *slog.Logger
	opts     []session.Option
	newID    func() string
}

func NewPlayService(quizzes QuizRepository, sessions SessionRepository, logger *slog.Logger, opts ...session.Option) *PlayService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PlayService{
		quizzes:  quizzes,
		sessions: sessions,
		logger:   logger,
		opts:     opts,
		newID:    uuid.NewString,
	}
}

// Load fetches a quiz and checks every question can be played. Any failure is
// reported as a *domain.LoadError.
func (s *PlayService) Load(ctx context.Context, quizID int64) (domain.Quiz, error) {
	quiz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		s.logger.Warn("quiz load failed", "quiz_id", quizID, "err", err)
		return domain.Quiz{}, &domain.LoadError{QuizID: quizID, Err: err}
	}
	questions := make([]domain.Question, len(quiz.Questions))
	for i, q := range quiz.Questions {
		q.Normalize()
		if err := q.Validate(); err != nil {
			s.logger.Warn("quiz has an unplayable question", "quiz_id", quizID, "question_id", q.ID, "err", err)
			return domain.Quiz{}, &domain.LoadError{QuizID: quizID, Err: err}
		}
		questions[i] = q
	}
	quiz.Questions = questions
	return quiz, nil
}

// Open loads a quiz and registers a new session for it in the Intro state.
func (s *PlayService) Open(ctx context.Context, quizID int64) (string, *session.Session, error) {
	quiz, err := s.Load(ctx, quizID)
	if err != nil {
		return "", nil, err
	}
	id := s.newID()
	sess := session.New(quiz, s.opts...)
	s.sessions.Put(id, sess)
	s.logger.Info("session opened", "session_id", id, "quiz_id", quizID, "questions", len(quiz.Questions))
	return id, sess, nil
}

// Session returns an open session.
func (s *PlayService) Session(id string) (*session.Session, error) {
	sess, ok := s.sessions.Get(id)
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return sess, nil
}

// Restart swaps a finished session for a fresh one under the same id.
func (s *PlayService) Restart(id string) (*session.Session, error) {
	current, ok := s.sessions.Get(id)
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	fresh, err := current.Restart()
	if err != nil {
		return nil, err
	}
	current.Close()
	s.sessions.Put(id, fresh)
	return fresh, nil
}

// Touch records activity on an open session so stores that track liveness
// keep it alive.
func (s *PlayService) Touch(ctx context.Context, id string) {
	toucher, ok := s.sessions.(SessionToucher)
	if !ok {
		return
	}
	if err := toucher.Touch(ctx, id); err != nil {
		s.logger.Warn("session touch failed", "session_id", id, "err", err)
	}
}

// Close tears a session down and cancels its countdown.
func (s *PlayService) Close(id string) {
	sess, ok := s.sessions.Get(id)
	if !ok {
		return
	}
	sess.Close()
	s.sessions.Delete(id)
	s.logger.Info("session closed", "session_id", id, "state", sess.State().String())
}
