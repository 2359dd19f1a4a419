package repositories

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"gorm.io/gorm"

	apperrors "quizly/api/internal/errors"
	"quizly/api/internal/models"
)

// ResultRepository stores completed quiz attempts.
type ResultRepository interface {
	Create(ctx context.Context, result *models.QuizResult) error
	// ListByUser returns a user's results, newest first.
	ListByUser(ctx context.Context, userID string) ([]models.QuizResult, error)
	DeleteByUser(ctx context.Context, userID string) (int64, error)
	// Aggregate groups results per user ordered by score ratio, highest
	// first, and returns at most limit groups after skipping offset.
	Aggregate(ctx context.Context, offset, limit int) ([]models.UserAggregate, error)
	Ping(ctx context.Context) error
}

type resultRecord struct {
	ID             uint      `gorm:"primaryKey"`
	UserID         string    `gorm:"index;not null"`
	Topic          string    `gorm:"not null"`
	Difficulty     string    `gorm:"not null;default:easy"`
	Score          int       `gorm:"not null"`
	TotalQuestions int       `gorm:"not null"`
	CreatedAt      time.Time `gorm:"index"`
}

func (resultRecord) TableName() string { return "quiz_results" }

func (r resultRecord) toModel() models.QuizResult {
	return models.QuizResult{
		ID:             strconv.FormatUint(uint64(r.ID), 10),
		UserID:         r.UserID,
		Topic:          r.Topic,
		Difficulty:     r.Difficulty,
		Score:          r.Score,
		TotalQuestions: r.TotalQuestions,
		CreatedAt:      r.CreatedAt,
	}
}

// SQLResultRepository keeps results in the relational database alongside users.
type SQLResultRepository struct {
	DB *gorm.DB
}

var _ ResultRepository = (*SQLResultRepository)(nil)

func NewSQLResultRepository(db *gorm.DB) (*SQLResultRepository, error) {
	if err := db.AutoMigrate(&resultRecord{}); err != nil {
		return nil, fmt.Errorf("migrating quiz results: %w", err)
	}
	return &SQLResultRepository{DB: db}, nil
}

func (r *SQLResultRepository) Create(ctx context.Context, result *models.QuizResult) error {
	if result.CreatedAt.IsZero() {
		result.CreatedAt = time.Now().UTC()
	}
	rec := resultRecord{
		UserID:         result.UserID,
		Topic:          result.Topic,
		Difficulty:     result.Difficulty,
		Score:          result.Score,
		TotalQuestions: result.TotalQuestions,
		CreatedAt:      result.CreatedAt,
	}
	if err := r.DB.WithContext(ctx).Create(&rec).Error; err != nil {
		return apperrors.Persistence(fmt.Errorf("inserting quiz result: %w", err))
	}
	result.ID = strconv.FormatUint(uint64(rec.ID), 10)
	return nil
}

func (r *SQLResultRepository) ListByUser(ctx context.Context, userID string) ([]models.QuizResult, error) {
	var records []resultRecord
	err := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").Order("id DESC").
		Find(&records).Error
	if err != nil {
		return nil, apperrors.Persistence(fmt.Errorf("listing quiz results: %w", err))
	}

	results := make([]models.QuizResult, 0, len(records))
	for _, rec := range records {
		results = append(results, rec.toModel())
	}
	return results, nil
}

func (r *SQLResultRepository) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	res := r.DB.WithContext(ctx).Where("user_id = ?", userID).Delete(&resultRecord{})
	if res.Error != nil {
		return 0, apperrors.Persistence(fmt.Errorf("deleting quiz results: %w", res.Error))
	}
	return res.RowsAffected, nil
}

type aggregateRow struct {
	UserID         string
	TotalQuizzes   int64
	TotalScore     int64
	TotalQuestions int64
}

func (r *SQLResultRepository) Aggregate(ctx context.Context, offset, limit int) ([]models.UserAggregate, error) {
	var rows []aggregateRow
	err := r.DB.WithContext(ctx).
		Model(&resultRecord{}).
		Select("user_id, COUNT(*) AS total_quizzes, SUM(score) AS total_score, SUM(total_questions) AS total_questions").
		Group("user_id").
		Order("CASE WHEN SUM(total_questions) > 0 THEN SUM(score) * 1.0 / SUM(total_questions) ELSE 0 END DESC").
		Order("user_id").
		Offset(offset).
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, apperrors.Persistence(fmt.Errorf("aggregating quiz results: %w", err))
	}

	aggregates := make([]models.UserAggregate, 0, len(rows))
	for _, row := range rows {
		aggregates = append(aggregates, models.UserAggregate(row))
	}
	return aggregates, nil
}

func (r *SQLResultRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
