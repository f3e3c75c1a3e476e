package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// QuestionKind selects how a question is answered and compared.
type QuestionKind string

const (
	KindMultipleChoice QuestionKind = "multiple-choice"
	KindTrueFalse      QuestionKind = "true-false"
	KindShortAnswer    QuestionKind = "short-answer"
)

// Valid reports whether k is one of the known kinds.
func (k QuestionKind) Valid() bool {
	switch k {
	case KindMultipleChoice, KindTrueFalse, KindShortAnswer:
		return true
	}
	return false
}

// Question is one playable question of a quiz.
type Question struct {
	ID     int64        `json:"id"`
	QuizID int64        `json:"quizId"`
	Text   string       `json:"text"`
	Kind   QuestionKind `json:"kind"`
	// Options is only meaningful for multiple-choice questions.
	Options []string `json:"options,omitempty"`
	// CorrectAnswer holds the option index for multiple-choice, "true"/"false"
	// for true-false and free text for short-answer.
	CorrectAnswer string `json:"correctAnswer"`
	Explanation   string `json:"explanation,omitempty"`
	Points        int    `json:"points"` // defaults to 1 if zero
}

// CorrectIndex returns the correct option index of a multiple-choice question.
func (q Question) CorrectIndex() (int, bool) {
	if q.Kind != KindMultipleChoice {
		return -1, false
	}
	idx, err := strconv.Atoi(strings.TrimSpace(q.CorrectAnswer))
	if err != nil || idx < 0 || idx >= len(q.Options) {
		return -1, false
	}
	return idx, true
}

// Normalize applies store defaults.
func (q *Question) Normalize() {
	if q.Points == 0 {
		q.Points = 1
	}
}

// Validate checks the invariants a question must satisfy to be played.
func (q Question) Validate() error {
	if q.Points < 1 {
		return fmt.Errorf("%w: question %d has %d points", ErrInvalidQuestion, q.ID, q.Points)
	}
	if q.Kind != KindMultipleChoice {
		return nil
	}
	nonEmpty := 0
	for _, opt := range q.Options {
		if strings.TrimSpace(opt) != "" {
			nonEmpty++
		}
	}
	if nonEmpty < 2 {
		return fmt.Errorf("%w: question %d needs at least 2 options", ErrInvalidQuestion, q.ID)
	}
	idx, ok := q.CorrectIndex()
	if !ok {
		return fmt.Errorf("%w: question %d correct answer %q is not an option index", ErrInvalidQuestion, q.ID, q.CorrectAnswer)
	}
	if strings.TrimSpace(q.Options[idx]) == "" {
		return fmt.Errorf("%w: question %d correct answer points at a blank option", ErrInvalidQuestion, q.ID)
	}
	return nil
}

// Quiz is the metadata of a quiz plus its ordered questions.
type Quiz struct {
	ID               int64      `json:"id"`
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	Category         string     `json:"category,omitempty"`
	Difficulty       string     `json:"difficulty"`
	Author           string     `json:"author"`
	Rating           float64    `json:"rating"`
	Plays            int        `json:"plays"`
	TimeLimitMinutes int        `json:"timeLimitMinutes"` // 0 means unlimited
	IsPublic         bool       `json:"isPublic"`
	CreatedAt        time.Time  `json:"createdAt"`
	Questions        []Question `json:"questions"`
}

// TotalPoints sums the point value of every question.
func (q Quiz) TotalPoints() int {
	total := 0
	for _, question := range q.Questions {
		total += question.Points
	}
	return total
}

// QuizSummary is the list form of a quiz returned by the API.
type QuizSummary struct {
	ID             int64  `json:"id"`
	Title          string `json:"title"`
	Author         string `json:"author"`
	Difficulty     string `json:"difficulty"`
	Category       string `json:"category"`
	Plays          int    `json:"plays"`
	QuestionsCount int    `json:"questionsCount"`
}

// Answer is the value recorded in one slot. The zero value is unanswered.
type Answer struct {
	text  string
	given bool
}

// Unanswered returns the empty slot value.
func Unanswered() Answer {
	return Answer{}
}

// ChoiceAnswer records a multiple-choice option index.
func ChoiceAnswer(index int) Answer {
	return Answer{text: strconv.Itoa(index), given: true}
}

// BoolAnswer records a true-false answer.
func BoolAnswer(v bool) Answer {
	return Answer{text: strconv.FormatBool(v), given: true}
}

// TextAnswer records a raw answer. An empty string leaves the slot unanswered.
func TextAnswer(s string) Answer {
	if s == "" {
		return Answer{}
	}
	return Answer{text: s, given: true}
}

// Given reports whether the slot holds an answer.
func (a Answer) Given() bool { return a.given }

// Text returns the raw recorded value.
func (a Answer) Text() string { return a.text }

// Number coerces the answer to a number. Non-numeric answers report false.
func (a Answer) Number() (float64, bool) {
	if !a.given {
		return 0, false
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(a.text), 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Index returns the answer as an option index.
func (a Answer) Index() (int, bool) {
	n, ok := a.Number()
	if !ok || n != float64(int(n)) {
		return -1, false
	}
	return int(n), true
}

func (a Answer) MarshalText() ([]byte, error) {
	return []byte(a.text), nil
}

func (a *Answer) UnmarshalText(b []byte) error {
	*a = TextAnswer(string(b))
	return nil
}
