package session

import (
	"fmt"

	"quizmaster/internal/domain"
)

// QuestionView is the player-facing form of a question. It never carries the
// correct answer.
type QuestionView struct {
	Number  int                 `json:"number"`
	Text    string              `json:"text"`
	Kind    domain.QuestionKind `json:"kind"`
	Options []string            `json:"options,omitempty"`
	Answer  string              `json:"answer,omitempty"`
}

// IntroView summarizes the quiz before it starts.
type IntroView struct {
	Title            string  `json:"title"`
	Description      string  `json:"description"`
	Author           string  `json:"author"`
	Rating           float64 `json:"rating"`
	Difficulty       string  `json:"difficulty"`
	Plays            int     `json:"plays"`
	QuestionCount    int     `json:"questionCount"`
	TimeLimitMinutes int     `json:"timeLimitMinutes"`
}

// View is a snapshot of the session for rendering.
type View struct {
	State      string        `json:"state"`
	Intro      *IntroView    `json:"intro,omitempty"`
	Question   *QuestionView `json:"question,omitempty"`
	Total      int           `json:"total"`
	Progress   int           `json:"progress"`
	Remaining  string        `json:"remaining,omitempty"`
	CanAdvance bool          `json:"canAdvance"`
	IsLast     bool          `json:"isLast"`
	Result     *Result       `json:"result,omitempty"`
	Band       string        `json:"band,omitempty"`
	Review     []ReviewItem  `json:"review,omitempty"`
}

// View renders the current state.
func (s *Session) View() View {
	v := View{
		State: s.state.String(),
		Total: len(s.quiz.Questions),
	}
	switch s.state {
	case Intro:
		v.Intro = &IntroView{
			Title:            s.quiz.Title,
			Description:      s.quiz.Description,
			Author:           s.quiz.Author,
			Rating:           s.quiz.Rating,
			Difficulty:       s.quiz.Difficulty,
			Plays:            s.quiz.Plays,
			QuestionCount:    len(s.quiz.Questions),
			TimeLimitMinutes: s.quiz.TimeLimitMinutes,
		}
	case Playing:
		q := s.quiz.Questions[s.current]
		v.Question = &QuestionView{
			Number:  s.current + 1,
			Text:    q.Text,
			Kind:    q.Kind,
			Options: q.Options,
			Answer:  s.answers[s.current].Text(),
		}
		v.Progress = s.Progress()
		v.Remaining = FormatRemaining(s.remaining)
		v.CanAdvance = s.CanAdvance()
		v.IsLast = s.current == len(s.quiz.Questions)-1
	case Finished:
		res := s.result
		v.Result = &res
		v.Band = Band(res.Percentage)
		if s.revealed {
			v.Review = BuildReview(s.quiz.Questions, s.answers)
		}
	}
	return v
}

// Progress is the position of the current question as a percentage.
func (s *Session) Progress() int {
	if len(s.quiz.Questions) == 0 {
		return 0
	}
	return (s.current + 1) * 100 / len(s.quiz.Questions)
}

// FormatRemaining renders seconds as m:ss.
func FormatRemaining(seconds int) string {
	if seconds == UnlimitedTime {
		return "unlimited"
	}
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

// Band buckets a percentage for display: 80 and above is high, 60 and above medium.
func Band(percentage int) string {
	switch {
	case percentage >= 80:
		return "high"
	case percentage >= 60:
		return "medium"
	default:
		return "low"
	}
}
