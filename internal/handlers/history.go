package handlers

import (
	"github.com/shopspring/decimal"

	"quizly/api/internal/models"
)

const noTopic = "None"

// buildStats expects results newest first.
func buildStats(results []models.QuizResult) models.QuizStats {
	stats := models.QuizStats{
		TotalQuizzes:  len(results),
		TotalAttempts: len(results),
		LastTopic:     noTopic,
	}
	if len(results) > 0 && results[0].Topic != "" {
		stats.LastTopic = results[0].Topic
	}
	return stats
}

// buildDashboard reports the best and mean raw score, the mean rounded to
// two decimals.
func buildDashboard(results []models.QuizResult) models.Dashboard {
	d := models.Dashboard{Total: len(results), Results: results}
	if len(results) == 0 {
		return d
	}

	sum := 0
	for _, r := range results {
		sum += r.Score
		if r.Score > d.Best {
			d.Best = r.Score
		}
	}
	d.Average = decimal.NewFromInt(int64(sum)).
		Div(decimal.NewFromInt(int64(len(results)))).
		Round(2).
		InexactFloat64()
	return d
}
