package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"quizmaster/internal/domain"
)

type quizResponse struct {
	ID             int64    `json:"id"`
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	Author         string   `json:"author"`
	Category       string   `json:"category"`
	Difficulty     string   `json:"difficulty"`
	IsPublic       bool     `json:"is_public"`
	TimeLimit      int      `json:"time_limit"`
	CreatedAt      string   `json:"created_at"`
	Plays          int      `json:"plays"`
	QuestionsCount int      `json:"questions_count"`
	Rating         *float64 `json:"rating,omitempty"`
}

type questionResponse struct {
	ID            int64      `json:"id"`
	Quiz          int64      `json:"quiz"`
	QuestionText  string     `json:"question_text"`
	QuestionType  string     `json:"question_type"`
	Options       []string   `json:"options"`
	CorrectAnswer flexString `json:"correct_answer"`
	Explanation   string     `json:"explanation"`
	Points        int        `json:"points"`
}

type createQuestionRequest struct {
	QuestionText  string   `json:"question_text"`
	QuestionType  string   `json:"question_type"`
	Options       []string `json:"options"`
	CorrectAnswer any      `json:"correct_answer"`
	Points        int      `json:"points"`
	Explanation   string   `json:"explanation,omitempty"`
}

type createQuizRequest struct {
	Title              string                  `json:"title"`
	Description        string                  `json:"description"`
	Difficulty         string                  `json:"difficulty"`
	Category           string                  `json:"category"`
	IsPublic           bool                    `json:"is_public"`
	AllowRetakes       bool                    `json:"allow_retakes"`
	ShowCorrectAnswers bool                    `json:"show_correct_answers"`
	TimeLimit          int                     `json:"time_limit"`
	Questions          []createQuestionRequest `json:"questions"`
}

// flexString accepts JSON strings, numbers and booleans. The API stores
// correct answers as text but older rows may carry raw numbers.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	*f = flexString(b)
	return nil
}

// FetchQuizMetadata returns a quiz without its questions.
func (c *Client) FetchQuizMetadata(ctx context.Context, quizID int64) (domain.Quiz, error) {
	var payload quizResponse
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/quizzes/%d/", quizID), nil, &payload); err != nil {
		return domain.Quiz{}, err
	}
	return payload.toDomain(), nil
}

// FetchQuizQuestions returns the questions of a quiz in server order.
func (c *Client) FetchQuizQuestions(ctx context.Context, quizID int64) ([]domain.Question, error) {
	var payload []questionResponse
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/quizzes/%d/questions/", quizID), nil, &payload); err != nil {
		return nil, err
	}
	questions := make([]domain.Question, 0, len(payload))
	for _, item := range payload {
		questions = append(questions, item.toDomain(quizID))
	}
	return questions, nil
}

// LoadQuiz fetches metadata and questions concurrently. It satisfies the
// repository loader interfaces.
func (c *Client) LoadQuiz(ctx context.Context, quizID int64) (domain.Quiz, error) {
	var (
		quiz      domain.Quiz
		questions []domain.Question
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		quiz, err = c.FetchQuizMetadata(gctx, quizID)
		return err
	})
	g.Go(func() error {
		var err error
		questions, err = c.FetchQuizQuestions(gctx, quizID)
		return err
	})
	if err := g.Wait(); err != nil {
		return domain.Quiz{}, err
	}
	quiz.Questions = questions
	return quiz, nil
}

// ListPopular returns the most played quizzes.
func (c *Client) ListPopular(ctx context.Context) ([]domain.QuizSummary, error) {
	var payload []quizResponse
	if err := c.doJSON(ctx, http.MethodGet, "/quizzes/popular/", nil, &payload); err != nil {
		return nil, err
	}
	out := make([]domain.QuizSummary, 0, len(payload))
	for _, item := range payload {
		out = append(out, item.toSummary())
	}
	return out, nil
}

// CreateQuiz submits a draft. It requires credentials.
func (c *Client) CreateQuiz(ctx context.Context, draft domain.QuizDraft) (domain.QuizSummary, error) {
	request := createQuizRequest{
		Title:              draft.Title,
		Description:        draft.Description,
		Difficulty:         draft.Difficulty,
		Category:           draft.Category,
		IsPublic:           draft.IsPublic,
		AllowRetakes:       draft.AllowRetakes,
		ShowCorrectAnswers: draft.ShowCorrectAnswers,
		TimeLimit:          draft.TimeLimitMinutes,
		Questions:          make([]createQuestionRequest, 0, len(draft.Questions)),
	}
	for _, q := range draft.Questions {
		item := createQuestionRequest{
			QuestionText:  q.Text,
			QuestionType:  string(q.Kind),
			CorrectAnswer: q.CorrectAnswer,
			Points:        q.Points,
			Explanation:   q.Explanation,
		}
		if q.Kind == domain.KindMultipleChoice {
			item.Options = q.Options
			if idx, err := strconv.Atoi(q.CorrectAnswer); err == nil {
				item.CorrectAnswer = idx
			}
		}
		request.Questions = append(request.Questions, item)
	}

	var payload quizResponse
	if err := c.doJSON(ctx, http.MethodPost, "/quizzes/", request, &payload); err != nil {
		return domain.QuizSummary{}, err
	}
	summary := payload.toSummary()
	if summary.QuestionsCount == 0 {
		summary.QuestionsCount = len(draft.Questions)
	}
	return summary, nil
}

func (r quizResponse) toDomain() domain.Quiz {
	quiz := domain.Quiz{
		ID:               r.ID,
		Title:            r.Title,
		Description:      r.Description,
		Category:         r.Category,
		Difficulty:       r.Difficulty,
		Author:           r.Author,
		Plays:            r.Plays,
		TimeLimitMinutes: r.TimeLimit,
		IsPublic:         r.IsPublic,
	}
	if quiz.TimeLimitMinutes < 0 {
		quiz.TimeLimitMinutes = 0
	}
	if r.Rating != nil {
		quiz.Rating = *r.Rating
	}
	if createdAt, err := time.Parse(time.RFC3339Nano, r.CreatedAt); err == nil {
		quiz.CreatedAt = createdAt
	}
	return quiz
}

func (r quizResponse) toSummary() domain.QuizSummary {
	return domain.QuizSummary{
		ID:             r.ID,
		Title:          r.Title,
		Author:         r.Author,
		Difficulty:     r.Difficulty,
		Category:       r.Category,
		Plays:          r.Plays,
		QuestionsCount: r.QuestionsCount,
	}
}

func (r questionResponse) toDomain(quizID int64) domain.Question {
	q := domain.Question{
		ID:            r.ID,
		QuizID:        r.Quiz,
		Text:          r.QuestionText,
		Kind:          domain.QuestionKind(r.QuestionType),
		CorrectAnswer: string(r.CorrectAnswer),
		Explanation:   r.Explanation,
		Points:        r.Points,
	}
	if q.QuizID == 0 {
		q.QuizID = quizID
	}
	if q.Kind == domain.KindMultipleChoice {
		q.Options = r.Options
	}
	return q
}
