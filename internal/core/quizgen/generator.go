// Package quizgen builds multiple-choice and true/false variants of a card
// using its deck siblings as distractors.
package quizgen

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"flashdeck-service/internal/domain"
)

// DefaultFakeCount is how many distractors a multiple-choice question carries.
const DefaultFakeCount = 3

// Generator produces randomized question variants. The random source is
// injectable so tests can pin the sampling.
type Generator struct {
	rnd *rand.Rand
}

// New returns a generator backed by rnd, or a time-seeded source when nil.
func New(rnd *rand.Rand) *Generator {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Generator{rnd: rnd}
}

// FakeAnswers returns count plausible wrong answers for correct. Real answers
// from the pool are preferred; when the pool runs short, variations of the
// correct answer fill the remainder.
func (g *Generator) FakeAnswers(correct string, pool []string, count int) []string {
	available := make([]string, 0, len(pool))
	for _, a := range pool {
		if !sameAnswer(a, correct) {
			available = append(available, a)
		}
	}

	if len(available) >= count {
		g.rnd.Shuffle(len(available), func(i, j int) {
			available[i], available[j] = available[j], available[i]
		})
		return available[:count]
	}

	fakes := append([]string{}, available...)
	attempts := 0
	for len(fakes) < count {
		variation := g.variation(correct)
		if attempts > 20 {
			variation = fmt.Sprintf("%s (alternative %d)", correct, len(fakes)+1)
		}
		attempts++
		if contains(fakes, variation) {
			continue
		}
		fakes = append(fakes, variation)
	}
	return fakes
}

// variation mutates an answer into a plausible wrong one.
func (g *Generator) variation(answer string) string {
	variations := []string{
		answer + " (incorrect)",
		"Not " + answer,
	}
	if strings.Contains(answer, "is") {
		variations = append(variations, strings.Replace(answer, "is", "is not", 1))
	} else {
		variations = append(variations, answer+" variation")
	}
	if words := strings.Fields(answer); len(words) > 1 {
		variations = append(variations, words[0])
	} else {
		variations = append(variations, answer+" alternative")
	}
	return variations[g.rnd.Intn(len(variations))]
}

// MultipleChoice builds a four-option question for card, drawing distractors
// from the sibling cards' answers.
func (g *Generator) MultipleChoice(card domain.Card, deck []domain.Card) domain.MultipleChoiceQuestion {
	pool := make([]string, 0, len(deck))
	for _, c := range deck {
		pool = append(pool, c.Answer)
	}

	options := g.FakeAnswers(card.Answer, pool, DefaultFakeCount)
	options = append(options, card.Answer)
	g.rnd.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})

	correctIndex := 0
	for i, opt := range options {
		if opt == card.Answer {
			correctIndex = i
			break
		}
	}

	return domain.MultipleChoiceQuestion{
		Question:      card.Question,
		Options:       options,
		CorrectIndex:  correctIndex,
		CorrectAnswer: card.Answer,
	}
}

// TrueFalse builds a statement that pairs the question with either its real
// answer or a negated one, each with even probability.
func (g *Generator) TrueFalse(card domain.Card) domain.TrueFalseQuestion {
	isTrue := g.rnd.Float64() < 0.5

	shown := card.Answer
	if !isTrue {
		if g.rnd.Float64() < 0.5 {
			shown = "Not " + card.Answer
		} else {
			shown = card.Answer + " (incorrect version)"
		}
	}

	return domain.TrueFalseQuestion{
		Statement:     fmt.Sprintf("%s → %s", strings.TrimRight(card.Question, "?"), shown),
		IsTrue:        isTrue,
		CorrectAnswer: card.Answer,
	}
}

func sameAnswer(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
