package app

import (
	"context"
	"log/slog"

	"quizmaster/internal/domain"
)

// QuizWriter submits new quizzes to the quiz API.
type QuizWriter interface {
	CreateQuiz(ctx context.Context, draft domain.QuizDraft) (domain.QuizSummary, error)
}

// AuthoringService validates drafts before they are published.
type AuthoringService struct {
	writer QuizWriter
	logger *slog.Logger
}

func NewAuthoringService(writer QuizWriter, logger *slog.Logger) *AuthoringService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthoringService{writer: writer, logger: logger}
}

// Publish normalizes and validates the draft, then submits it.
func (s *AuthoringService) Publish(ctx context.Context, draft domain.QuizDraft) (domain.QuizSummary, error) {
	normalized := draft.Normalized()
	if err := normalized.Validate(); err != nil {
		return domain.QuizSummary{}, err
	}
	created, err := s.writer.CreateQuiz(ctx, normalized)
	if err != nil {
		return domain.QuizSummary{}, err
	}
	s.logger.Info("quiz published", "quiz_id", created.ID, "questions", len(normalized.Questions))
	return created, nil
}
