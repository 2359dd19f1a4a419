package models

import (
	"strings"
	"time"

	apperrors "quizly/api/internal/errors"
	"quizly/api/internal/quiz"
)

// QuizResult is one completed quiz attempt. Results are never updated.
type QuizResult struct {
	ID             string    `json:"id"`
	UserID         string    `json:"userId"`
	Topic          string    `json:"topic"`
	Difficulty     string    `json:"difficulty"`
	Score          int       `json:"score"`
	TotalQuestions int       `json:"totalQuestions"`
	CreatedAt      time.Time `json:"createdAt"`
}

// UserAggregate is the per-user rollup backing the leaderboard.
type UserAggregate struct {
	UserID         string
	TotalQuizzes   int64
	TotalScore     int64
	TotalQuestions int64
}

type LeaderboardEntry struct {
	UserID       string  `json:"userId"`
	Name         string  `json:"name"`
	TotalQuizzes int64   `json:"totalQuizzes"`
	AvgScore     float64 `json:"avgScore"`
}

type QuizStats struct {
	TotalQuizzes  int    `json:"totalQuizzes"`
	TotalAttempts int    `json:"totalAttempts"`
	LastTopic     string `json:"lastTopic"`
}

type Dashboard struct {
	Total   int          `json:"total"`
	Best    int          `json:"best"`
	Average float64      `json:"average"`
	Results []QuizResult `json:"results"`
}

// SaveResultRequest carries either a client-computed score or the questions
// and answers to score on the server.
type SaveResultRequest struct {
	Topic          string          `json:"topic"`
	Difficulty     string          `json:"difficulty,omitempty"`
	Score          *int            `json:"score,omitempty"`
	TotalQuestions int             `json:"totalQuestions,omitempty"`
	Questions      []quiz.Question `json:"questions,omitempty"`
	Answers        map[int]string  `json:"answers,omitempty"`
}

func (r *SaveResultRequest) Validate() error {
	r.Topic = strings.TrimSpace(r.Topic)
	if r.Topic == "" {
		return &ErrorResponse{Code: "missing_topic", Message: "topic is required"}
	}

	difficulty, err := quiz.ParseDifficulty(r.Difficulty, quiz.DifficultyEasy)
	if err != nil {
		return &ErrorResponse{Code: "invalid_difficulty", Message: apperrors.Convert(err).Message}
	}
	r.Difficulty = string(difficulty)

	if len(r.Questions) > 0 {
		return nil
	}

	if r.Score == nil {
		return &ErrorResponse{Code: "missing_score", Message: "score or questions with answers is required"}
	}
	if r.TotalQuestions <= 0 {
		return &ErrorResponse{Code: "invalid_total", Message: "totalQuestions must be greater than zero"}
	}
	if *r.Score < 0 || *r.Score > r.TotalQuestions {
		return &ErrorResponse{Code: "invalid_score", Message: "score must be between 0 and totalQuestions"}
	}
	return nil
}

type ScoreRequest struct {
	Questions []quiz.Question `json:"questions"`
	Answers   map[int]string  `json:"answers"`
}

func (r *ScoreRequest) Validate() error {
	if len(r.Questions) == 0 {
		return &ErrorResponse{Code: "missing_questions", Message: "questions are required"}
	}
	return nil
}
