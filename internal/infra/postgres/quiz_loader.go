package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"quizmaster/internal/domain"
)

// QuizLoader reads quizzes from the Postgres mirror.
type QuizLoader struct {
	pool *pgxpool.Pool
}

func NewQuizLoader(pool *pgxpool.Pool) *QuizLoader {
	return &QuizLoader{pool: pool}
}

const selectQuiz = `
SELECT id, title, description, category, difficulty, author, rating, plays, time_limit, is_public, created_at
FROM quizzes WHERE id=$1`

const selectQuestions = `
SELECT id, quiz_id, question_text, question_type, options, correct_answer, explanation, points
FROM questions WHERE quiz_id=$1 ORDER BY position, id`

func (l *QuizLoader) LoadQuiz(ctx context.Context, quizID int64) (domain.Quiz, error) {
	var quiz domain.Quiz
	err := l.pool.QueryRow(ctx, selectQuiz, quizID).Scan(
		&quiz.ID, &quiz.Title, &quiz.Description, &quiz.Category, &quiz.Difficulty, &quiz.Author,
		&quiz.Rating, &quiz.Plays, &quiz.TimeLimitMinutes, &quiz.IsPublic, &quiz.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("load quiz: %w", err)
	}

	rows, err := l.pool.Query(ctx, selectQuestions, quizID)
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("load questions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			q       domain.Question
			kind    string
			options []byte
		)
		if err := rows.Scan(&q.ID, &q.QuizID, &q.Text, &kind, &options, &q.CorrectAnswer, &q.Explanation, &q.Points); err != nil {
			return domain.Quiz{}, fmt.Errorf("scan question: %w", err)
		}
		q.Kind = domain.QuestionKind(kind)
		if q.Kind == domain.KindMultipleChoice && len(options) > 0 {
			if err := json.Unmarshal(options, &q.Options); err != nil {
				return domain.Quiz{}, fmt.Errorf("unmarshal options of question %d: %w", q.ID, err)
			}
		}
		quiz.Questions = append(quiz.Questions, q)
	}
	if err := rows.Err(); err != nil {
		return domain.Quiz{}, fmt.Errorf("load questions: %w", err)
	}
	return quiz, nil
}
