package session

import (
	"math/rand"
	"testing"

	"quizmaster/internal/domain"
)

func TestIsCorrect(t *testing.T) {
	mc := domain.Question{Kind: domain.KindMultipleChoice, Options: []string{"a", "b", "c"}, CorrectAnswer: "2", Points: 1}
	tf := domain.Question{Kind: domain.KindTrueFalse, CorrectAnswer: "false", Points: 1}
	sa := domain.Question{Kind: domain.KindShortAnswer, CorrectAnswer: "Mitochondria", Points: 1}

	cases := []struct {
		name string
		q    domain.Question
		a    domain.Answer
		want bool
	}{
		{"mc index", mc, domain.ChoiceAnswer(2), true},
		{"mc coerced text", mc, domain.TextAnswer("2"), true},
		{"mc coerced float text", mc, domain.TextAnswer("2.0"), true},
		{"mc wrong index", mc, domain.ChoiceAnswer(0), false},
		{"mc non numeric", mc, domain.TextAnswer("c"), false},
		{"mc unanswered", mc, domain.Unanswered(), false},
		{"tf bool", tf, domain.BoolAnswer(false), true},
		{"tf case insensitive", tf, domain.TextAnswer("FALSE"), true},
		{"tf wrong", tf, domain.BoolAnswer(true), false},
		{"sa case insensitive", sa, domain.TextAnswer("mitochondria"), true},
		{"sa whitespace matters", sa, domain.TextAnswer(" mitochondria"), false},
		{"sa unanswered", sa, domain.Unanswered(), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsCorrect(tc.q, tc.a); got != tc.want {
				t.Fatalf("IsCorrect = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestPercentage(t *testing.T) {
	cases := []struct {
		score, total, want int
	}{
		{0, 0, 0},
		{3, 3, 100},
		{1, 3, 33},
		{2, 3, 67},
		{1, 8, 13},
		{0, 5, 0},
	}
	for _, tc := range cases {
		if got := Percentage(tc.score, tc.total); got != tc.want {
			t.Fatalf("Percentage(%d, %d) = %d, want %d", tc.score, tc.total, got, tc.want)
		}
	}
}

func TestScoreCountsEachCorrectQuestionOnce(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))
	questions := []domain.Question{
		{Kind: domain.KindMultipleChoice, Options: []string{"a", "b", "c"}, CorrectAnswer: "1", Points: 3},
		{Kind: domain.KindTrueFalse, CorrectAnswer: "true", Points: 2},
		{Kind: domain.KindShortAnswer, CorrectAnswer: "go", Points: 5},
		{Kind: domain.KindMultipleChoice, Options: []string{"x", "y"}, CorrectAnswer: "0", Points: 1},
	}
	candidates := [][]domain.Answer{
		{domain.ChoiceAnswer(0), domain.ChoiceAnswer(1), domain.ChoiceAnswer(2), domain.Unanswered()},
		{domain.BoolAnswer(true), domain.BoolAnswer(false), domain.Unanswered()},
		{domain.TextAnswer("Go"), domain.TextAnswer("rust"), domain.Unanswered()},
		{domain.ChoiceAnswer(0), domain.ChoiceAnswer(1), domain.Unanswered()},
	}

	for round := 0; round < 200; round++ {
		answers := make([]domain.Answer, len(questions))
		want := 0
		for i := range questions {
			answers[i] = candidates[i][rnd.Intn(len(candidates[i]))]
			if IsCorrect(questions[i], answers[i]) {
				want += questions[i].Points
			}
		}
		res := Score(questions, answers)
		if res.Score != want {
			t.Fatalf("round %d: score = %d, want %d", round, res.Score, want)
		}
		if res.TotalPossible != 11 {
			t.Fatalf("total possible = %d, want 11", res.TotalPossible)
		}
		if res.Percentage < 0 || res.Percentage > 100 {
			t.Fatalf("percentage out of bounds: %d", res.Percentage)
		}
		for i, ok := range res.Correct {
			if ok != IsCorrect(questions[i], answers[i]) {
				t.Fatalf("round %d: correctness of %d inconsistent with comparator", round, i)
			}
		}
	}
}

func TestScoreShortAnswerSlice(t *testing.T) {
	questions := []domain.Question{
		{Kind: domain.KindShortAnswer, CorrectAnswer: "a", Points: 1},
		{Kind: domain.KindShortAnswer, CorrectAnswer: "b", Points: 1},
	}
	res := Score(questions, []domain.Answer{domain.TextAnswer("a")})
	if res.Score != 1 || res.Correct[1] {
		t.Fatalf("missing slots must score as unanswered, got %+v", res)
	}
}

func TestBuildReview(t *testing.T) {
	questions := []domain.Question{
		{Text: "Capital?", Kind: domain.KindMultipleChoice, Options: []string{"Paris", "Lyon"}, CorrectAnswer: "0", Points: 1, Explanation: "Paris since 508."},
		{Text: "Sky is green", Kind: domain.KindTrueFalse, CorrectAnswer: "false", Points: 1},
		{Text: "Gopher language?", Kind: domain.KindShortAnswer, CorrectAnswer: "Go", Points: 1},
		{Text: "Unanswered", Kind: domain.KindMultipleChoice, Options: []string{"x", "y"}, CorrectAnswer: "1", Points: 1},
	}
	answers := []domain.Answer{domain.ChoiceAnswer(1), domain.BoolAnswer(false), domain.TextAnswer("go"), domain.Unanswered()}

	review := BuildReview(questions, answers)
	want := []ReviewItem{
		{Question: "Capital?", Kind: domain.KindMultipleChoice, YourAnswer: "Lyon", CorrectAnswer: "Paris", Correct: false, Explanation: "Paris since 508."},
		{Question: "Sky is green", Kind: domain.KindTrueFalse, YourAnswer: "False", CorrectAnswer: "False", Correct: true},
		{Question: "Gopher language?", Kind: domain.KindShortAnswer, YourAnswer: "go", CorrectAnswer: "Go", Correct: true},
		{Question: "Unanswered", Kind: domain.KindMultipleChoice, YourAnswer: "No answer", CorrectAnswer: "y", Correct: false},
	}
	if len(review) != len(want) {
		t.Fatalf("got %d items, want %d", len(review), len(want))
	}
	for i := range want {
		if review[i] != want[i] {
			t.Fatalf("item %d = %+v, want %+v", i, review[i], want[i])
		}
	}

	res := Score(questions, answers)
	correct := 0
	for _, item := range review {
		if item.Correct {
			correct++
		}
	}
	if correct != res.CorrectCount {
		t.Fatalf("review correctness %d disagrees with score %d", correct, res.CorrectCount)
	}
}

func TestFormatRemainingAndBand(t *testing.T) {
	if got := FormatRemaining(125); got != "2:05" {
		t.Fatalf("FormatRemaining(125) = %q", got)
	}
	if got := FormatRemaining(UnlimitedTime); got != "unlimited" {
		t.Fatalf("FormatRemaining(unlimited) = %q", got)
	}
	for pct, want := range map[int]string{100: "high", 80: "high", 79: "medium", 60: "medium", 59: "low", 0: "low"} {
		if got := Band(pct); got != want {
			t.Fatalf("Band(%d) = %q, want %q", pct, got, want)
		}
	}
}
