package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// QuestionDraft is one question of a quiz being authored.
type QuestionDraft struct {
	Text          string       `yaml:"question"`
	Kind          QuestionKind `yaml:"type"`
	Options       []string     `yaml:"options"`
	CorrectAnswer string       `yaml:"correct_answer"`
	Explanation   string       `yaml:"explanation"`
	Points        int          `yaml:"points"`
}

// QuizDraft is the authoring payload submitted to create a quiz.
type QuizDraft struct {
	Title              string          `yaml:"title"`
	Description        string          `yaml:"description"`
	Category           string          `yaml:"category"`
	Difficulty         string          `yaml:"difficulty"`
	TimeLimitMinutes   int             `yaml:"time_limit"`
	IsPublic           bool            `yaml:"is_public"`
	AllowRetakes       bool            `yaml:"allow_retakes"`
	ShowCorrectAnswers bool            `yaml:"show_correct_answers"`
	Questions          []QuestionDraft `yaml:"questions"`
}

// Normalized returns a copy ready for submission: blank multiple-choice options
// are dropped, other kinds carry no options and missing points default to 1.
func (d QuizDraft) Normalized() QuizDraft {
	out := d
	out.Questions = make([]QuestionDraft, len(d.Questions))
	for i, q := range d.Questions {
		if q.Kind == KindMultipleChoice {
			opts := make([]string, 0, len(q.Options))
			for _, opt := range q.Options {
				if strings.TrimSpace(opt) != "" {
					opts = append(opts, opt)
				}
			}
			q.Options = opts
		} else {
			q.Options = nil
		}
		if q.Points == 0 {
			q.Points = 1
		}
		out.Questions[i] = q
	}
	return out
}

// Validate reports the first problem that would make the quiz unplayable.
func (d QuizDraft) Validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidDraft)
	}
	if d.TimeLimitMinutes < 0 {
		return fmt.Errorf("%w: time limit must not be negative", ErrInvalidDraft)
	}
	if len(d.Questions) == 0 {
		return fmt.Errorf("%w: at least one question is required", ErrInvalidDraft)
	}
	for i, q := range d.Questions {
		if err := q.validate(); err != nil {
			return fmt.Errorf("%w: question %d: %v", ErrInvalidDraft, i+1, err)
		}
	}
	return nil
}

func (q QuestionDraft) validate() error {
	if strings.TrimSpace(q.Text) == "" {
		return fmt.Errorf("text is required")
	}
	if q.Points < 1 {
		return fmt.Errorf("points must be at least 1")
	}
	switch q.Kind {
	case KindMultipleChoice:
		if len(q.Options) < 2 {
			return fmt.Errorf("needs at least 2 options")
		}
		idx, err := strconv.Atoi(strings.TrimSpace(q.CorrectAnswer))
		if err != nil || idx < 0 || idx >= len(q.Options) {
			return fmt.Errorf("correct answer %q is not an option index", q.CorrectAnswer)
		}
	case KindTrueFalse:
		if v := strings.ToLower(q.CorrectAnswer); v != "true" && v != "false" {
			return fmt.Errorf("correct answer must be true or false")
		}
	case KindShortAnswer:
		if strings.TrimSpace(q.CorrectAnswer) == "" {
			return fmt.Errorf("correct answer is required")
		}
	default:
		return fmt.Errorf("unknown question type %q", q.Kind)
	}
	return nil
}
