package quiz

import (
	"strings"
	"unicode/utf8"

	apperrors "quizly/api/internal/errors"
)

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

var validDifficulties = map[Difficulty]bool{
	DifficultyEasy:   true,
	DifficultyMedium: true,
	DifficultyHard:   true,
}

const maxTopicLength = 200

// ParseDifficulty accepts any casing; blank yields the fallback.
func ParseDifficulty(s string, fallback Difficulty) (Difficulty, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return fallback, nil
	}
	d := Difficulty(s)
	if !validDifficulties[d] {
		return "", apperrors.InvalidInput("difficulty must be one of: easy, medium, hard")
	}
	return d, nil
}

type Limits struct {
	MinQuestions      int
	MaxQuestions      int
	DefaultQuestions  int
	DefaultDifficulty Difficulty
}

func DefaultLimits() Limits {
	return Limits{
		MinQuestions:      1,
		MaxQuestions:      20,
		DefaultQuestions:  5,
		DefaultDifficulty: DifficultyEasy,
	}
}

// Request is a quiz generation request as received from clients.
type Request struct {
	Topic        string `json:"topic"`
	Difficulty   string `json:"difficulty,omitempty"`
	NumQuestions *int   `json:"numQuestions,omitempty"`
	RequestID    string `json:"requestId,omitempty"`
}

// Params is a validated Request with defaults applied.
type Params struct {
	Topic        string
	Difficulty   Difficulty
	NumQuestions int
}

func (r *Request) Validate() error {
	_, err := r.Resolve(DefaultLimits())
	return err
}

// Resolve validates the request and clamps the question count into limits.
func (r *Request) Resolve(limits Limits) (Params, error) {
	topic := strings.TrimSpace(r.Topic)
	if topic == "" {
		return Params{}, apperrors.InvalidInput("topic is required")
	}
	if utf8.RuneCountInString(topic) > maxTopicLength {
		return Params{}, apperrors.InvalidInput("topic must be at most %d characters", maxTopicLength)
	}

	difficulty, err := ParseDifficulty(r.Difficulty, limits.DefaultDifficulty)
	if err != nil {
		return Params{}, err
	}

	n := limits.DefaultQuestions
	if r.NumQuestions != nil {
		n = *r.NumQuestions
	}
	if n < limits.MinQuestions {
		n = limits.MinQuestions
	}
	if n > limits.MaxQuestions {
		n = limits.MaxQuestions
	}

	return Params{Topic: topic, Difficulty: difficulty, NumQuestions: n}, nil
}
