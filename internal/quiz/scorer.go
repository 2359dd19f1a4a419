package quiz

import "strings"

// Normalize lowercases s, drops everything outside [a-z0-9 ] and trims it.
func Normalize(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == ' ' {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

// Matches reports whether a user answer equals the correct answer after
// normalization. Blank answers never match.
func Matches(userAnswer, correctAnswer string) bool {
	got := Normalize(userAnswer)
	return got != "" && got == Normalize(correctAnswer)
}

type Grade struct {
	Index         int    `json:"index"`
	UserAnswer    string `json:"userAnswer,omitempty"`
	CorrectAnswer string `json:"correctAnswer"`
	Answered      bool   `json:"answered"`
	Correct       bool   `json:"correct"`
}

type Scorecard struct {
	Score   int     `json:"score"`
	Total   int     `json:"total"`
	Results []Grade `json:"results"`
}

// Score grades answers keyed by zero-based question index.
func Score(questions []Question, answers map[int]string) Scorecard {
	card := Scorecard{
		Total:   len(questions),
		Results: make([]Grade, 0, len(questions)),
	}
	for i, q := range questions {
		answer, answered := answers[i]
		g := Grade{
			Index:         i,
			UserAnswer:    answer,
			CorrectAnswer: q.CorrectAnswer,
			Answered:      answered,
			Correct:       answered && Matches(answer, q.CorrectAnswer),
		}
		if g.Correct {
			card.Score++
		}
		card.Results = append(card.Results, g)
	}
	return card
}
