package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"quizmaster/internal/app"
	"quizmaster/internal/domain"
	"quizmaster/internal/session"
)

// player runs one session in the terminal. Its loop is the only goroutine
// touching the session; a reader goroutine forwards input lines.
type player struct {
	service *app.PlayService
	id      string
	sess    *session.Session
	out     io.Writer
}

func (p *player) run(ctx context.Context, in io.Reader) error {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	p.printIntro()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-p.sess.Ticks():
			p.sess.Tick()
			if p.sess.State() == session.Finished {
				fmt.Fprintln(p.out, "\nTime's up!")
				p.printResult()
				continue
			}
			if remaining, _ := p.sess.Remaining(); remaining == 60 || remaining == 30 || remaining == 10 {
				fmt.Fprintf(p.out, "\n[%s left]\n", session.FormatRemaining(remaining))
			}
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			p.service.Touch(ctx, p.id)
			done, err := p.handle(strings.TrimSpace(line))
			if err != nil {
				fmt.Fprintf(p.out, "%v\n", err)
			}
			if done {
				return nil
			}
		}
	}
}

func (p *player) handle(line string) (bool, error) {
	if line == ":q" {
		return true, nil
	}
	switch p.sess.State() {
	case session.Intro:
		if err := p.sess.Start(); err != nil {
			return false, err
		}
		if p.sess.State() == session.Finished {
			fmt.Fprintln(p.out, "This quiz has no questions.")
			p.printResult()
			return false, nil
		}
		p.printQuestion()
	case session.Playing:
		return false, p.handlePlaying(line)
	case session.Finished:
		switch strings.ToLower(line) {
		case "r":
			if err := p.sess.RevealReview(); err != nil {
				return false, err
			}
			p.printReview()
		case "a":
			fresh, err := p.service.Restart(p.id)
			if err != nil {
				return false, err
			}
			p.sess = fresh
			p.printIntro()
		case "q":
			return true, nil
		default:
			fmt.Fprintln(p.out, "Type r to review, a to play again or q to quit.")
		}
	}
	return false, nil
}

func (p *player) handlePlaying(line string) error {
	if line == "<" {
		if err := p.sess.Retreat(); err != nil {
			return err
		}
		p.printQuestion()
		return nil
	}
	if line != "" {
		q, _ := p.sess.CurrentQuestion()
		answer, ok := parseAnswer(q, line)
		if !ok {
			return errors.New("invalid input")
		}
		if err := p.sess.RecordAnswer(answer); err != nil {
			return err
		}
	}
	if !p.sess.CanAdvance() {
		return errors.New("please answer before moving on")
	}
	if err := p.sess.Advance(); err != nil {
		return err
	}
	if p.sess.State() == session.Finished {
		p.printResult()
		return nil
	}
	p.printQuestion()
	return nil
}

// parseAnswer reads letters or 1-based numbers for multiple-choice, t/f and
// yes/no for true-false and free text otherwise.
func parseAnswer(q domain.Question, line string) (domain.Answer, bool) {
	switch q.Kind {
	case domain.KindMultipleChoice:
		upper := strings.ToUpper(line)
		if len(upper) == 1 && upper[0] >= 'A' && int(upper[0]-'A') < len(q.Options) {
			return domain.ChoiceAnswer(int(upper[0] - 'A')), true
		}
		if n, err := strconv.Atoi(line); err == nil && n >= 1 && n <= len(q.Options) {
			return domain.ChoiceAnswer(n - 1), true
		}
		return domain.Answer{}, false
	case domain.KindTrueFalse:
		switch strings.ToLower(line) {
		case "t", "true", "y", "yes":
			return domain.BoolAnswer(true), true
		case "f", "false", "n", "no":
			return domain.BoolAnswer(false), true
		}
		return domain.Answer{}, false
	}
	return domain.TextAnswer(line), true
}

func (p *player) printIntro() {
	v := p.sess.View()
	intro := v.Intro
	fmt.Fprintf(p.out, "\n%s\n", intro.Title)
	if intro.Description != "" {
		fmt.Fprintf(p.out, "%s\n", intro.Description)
	}
	fmt.Fprintf(p.out, "by %s | %s | %d questions | played %d times\n", intro.Author, intro.Difficulty, intro.QuestionCount, intro.Plays)
	if intro.TimeLimitMinutes > 0 {
		fmt.Fprintf(p.out, "Time limit: %d min\n", intro.TimeLimitMinutes)
	} else {
		fmt.Fprintln(p.out, "No time limit")
	}
	fmt.Fprintln(p.out, "Press Enter to start, :q to quit.")
}

func (p *player) printQuestion() {
	v := p.sess.View()
	q := v.Question
	fmt.Fprintf(p.out, "\nQuestion %d/%d (%d%%) [%s]\n", q.Number, v.Total, v.Progress, v.Remaining)
	fmt.Fprintf(p.out, "%s\n\n", q.Text)
	switch q.Kind {
	case domain.KindMultipleChoice:
		for i, option := range q.Options {
			fmt.Fprintf(p.out, "%c. %s\n", 'A'+i, option)
		}
	case domain.KindTrueFalse:
		fmt.Fprintln(p.out, "t. True\nf. False")
	}
	if q.Answer != "" {
		fmt.Fprintf(p.out, "Current answer: %s\n", q.Answer)
	}
	fmt.Fprint(p.out, "Your answer (< back, :q quit): ")
}

func (p *player) printResult() {
	res, _ := p.sess.Result()
	fmt.Fprintf(p.out, "\nScore: %d/%d (%d%%, %s)\n", res.Score, res.TotalPossible, res.Percentage, session.Band(res.Percentage))
	fmt.Fprintf(p.out, "Correct answers: %d of %d\n", res.CorrectCount, len(res.Correct))
	fmt.Fprintln(p.out, "Type r to review, a to play again or q to quit.")
}

func (p *player) printReview() {
	items, _ := p.sess.Review()
	for i, item := range items {
		mark := "x"
		if item.Correct {
			mark = "ok"
		}
		fmt.Fprintf(p.out, "\n%d. %s [%s]\n", i+1, item.Question, mark)
		fmt.Fprintf(p.out, "   Your answer: %s\n", item.YourAnswer)
		fmt.Fprintf(p.out, "   Correct answer: %s\n", item.CorrectAnswer)
		if item.Explanation != "" {
			fmt.Fprintf(p.out, "   %s\n", item.Explanation)
		}
	}
}
