package session

import (
	"strings"

	"quizmaster/internal/domain"
)

const (
	noAnswerLabel = "No answer"
	trueLabel     = "True"
	falseLabel    = "False"
)

// ReviewItem is one row of the detailed answer review.
type ReviewItem struct {
	Question      string              `json:"question"`
	Kind          domain.QuestionKind `json:"kind"`
	YourAnswer    string              `json:"yourAnswer"`
	CorrectAnswer string              `json:"correctAnswer"`
	Correct       bool                `json:"correct"`
	Explanation   string              `json:"explanation,omitempty"`
}

// BuildReview renders each answer in its question's display form.
func BuildReview(questions []domain.Question, answers []domain.Answer) []ReviewItem {
	items := make([]ReviewItem, 0, len(questions))
	for i, q := range questions {
		var a domain.Answer
		if i < len(answers) {
			a = answers[i]
		}
		items = append(items, ReviewItem{
			Question:      q.Text,
			Kind:          q.Kind,
			YourAnswer:    displayAnswer(q, a),
			CorrectAnswer: displayAnswer(q, domain.TextAnswer(q.CorrectAnswer)),
			Correct:       IsCorrect(q, a),
			Explanation:   strings.TrimSpace(q.Explanation),
		})
	}
	return items
}

func displayAnswer(q domain.Question, a domain.Answer) string {
	if !a.Given() {
		return noAnswerLabel
	}
	switch q.Kind {
	case domain.KindMultipleChoice:
		idx, ok := a.Index()
		if !ok || idx < 0 || idx >= len(q.Options) || q.Options[idx] == "" {
			return noAnswerLabel
		}
		return q.Options[idx]
	case domain.KindTrueFalse:
		switch strings.ToLower(a.Text()) {
		case "true":
			return trueLabel
		case "false":
			return falseLabel
		}
		return noAnswerLabel
	default:
		return a.Text()
	}
}
