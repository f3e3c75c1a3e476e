package session

import (
	"math"
	"strings"

	"quizmaster/internal/domain"
)

// Result is the final score of a finished session.
type Result struct {
	Score         int    `json:"score"`
	TotalPossible int    `json:"totalPossible"`
	Percentage    int    `json:"percentage"`
	CorrectCount  int    `json:"correctCount"`
	Correct       []bool `json:"correct"`
}

// IsCorrect compares a recorded answer with the question's correct answer.
// Multiple-choice answers are compared as numbers; every other kind uses
// case-insensitive string equality. Unanswered slots are never correct.
func IsCorrect(q domain.Question, a domain.Answer) bool {
	if !a.Given() {
		return false
	}
	if q.Kind == domain.KindMultipleChoice {
		got, ok := a.Number()
		if !ok {
			return false
		}
		want, ok := domain.TextAnswer(q.CorrectAnswer).Number()
		return ok && got == want
	}
	return strings.EqualFold(a.Text(), q.CorrectAnswer)
}

// Score grades answers slot by slot. Missing trailing slots count as unanswered.
func Score(questions []domain.Question, answers []domain.Answer) Result {
	res := Result{Correct: make([]bool, len(questions))}
	for i, q := range questions {
		res.TotalPossible += q.Points
		var a domain.Answer
		if i < len(answers) {
			a = answers[i]
		}
		if IsCorrect(q, a) {
			res.Correct[i] = true
			res.CorrectCount++
			res.Score += q.Points
		}
	}
	res.Percentage = Percentage(res.Score, res.TotalPossible)
	return res
}

// Percentage returns round(score/total*100), or 0 when total is 0.
func Percentage(score, total int) int {
	if total <= 0 {
		return 0
	}
	p := int(math.Round(float64(score) / float64(total) * 100))
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
