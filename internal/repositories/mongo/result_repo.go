package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	apperrors "quizly/api/internal/errors"
	"quizly/api/internal/models"
	"quizly/api/internal/repositories"
)

const DefaultCollection = "quiz_results"

type resultDocument struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	UserID         string             `bson:"user_id"`
	Topic          string             `bson:"topic"`
	Difficulty     string             `bson:"difficulty"`
	Score          int                `bson:"score"`
	TotalQuestions int                `bson:"total_questions"`
	CreatedAt      time.Time          `bson:"created_at"`
}

func (d resultDocument) toModel() models.QuizResult {
	return models.QuizResult{
		ID:             d.ID.Hex(),
		UserID:         d.UserID,
		Topic:          d.Topic,
		Difficulty:     d.Difficulty,
		Score:          d.Score,
		TotalQuestions: d.TotalQuestions,
		CreatedAt:      d.CreatedAt,
	}
}

type aggregateDocument struct {
	UserID         string `bson:"_id"`
	TotalQuizzes   int64  `bson:"total_quizzes"`
	TotalScore     int64  `bson:"total_score"`
	TotalQuestions int64  `bson:"total_questions"`
}

// ResultRepo wraps the quiz results collection
type ResultRepo struct{ col *mongo.Collection }

var _ repositories.ResultRepository = (*ResultRepo)(nil)

// NewResultRepo opens the results collection and ensures the per-user index.
func NewResultRepo(ctx context.Context, c *Client, collection string) (*ResultRepo, error) {
	db, err := c.DB()
	if err != nil {
		return nil, err
	}
	if collection == "" {
		collection = DefaultCollection
	}

	r := NewResultRepoFromCollection(db.Collection(collection))
	if _, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
	}); err != nil {
		return nil, fmt.Errorf("creating results index: %w", err)
	}
	return r, nil
}

func NewResultRepoFromCollection(col *mongo.Collection) *ResultRepo {
	return &ResultRepo{col: col}
}

func (r *ResultRepo) Create(ctx context.Context, result *models.QuizResult) error {
	if result.CreatedAt.IsZero() {
		result.CreatedAt = time.Now().UTC()
	}
	doc := resultDocument{
		ID:             primitive.NewObjectID(),
		UserID:         result.UserID,
		Topic:          result.Topic,
		Difficulty:     result.Difficulty,
		Score:          result.Score,
		TotalQuestions: result.TotalQuestions,
		CreatedAt:      result.CreatedAt,
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return apperrors.Persistence(fmt.Errorf("inserting quiz result: %w", err))
	}
	result.ID = doc.ID.Hex()
	return nil
}

func (r *ResultRepo) ListByUser(ctx context.Context, userID string) ([]models.QuizResult, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := r.col.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, apperrors.Persistence(fmt.Errorf("listing quiz results: %w", err))
	}
	defer cur.Close(ctx)

	var docs []resultDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, apperrors.Persistence(fmt.Errorf("decoding quiz results: %w", err))
	}

	results := make([]models.QuizResult, 0, len(docs))
	for _, d := range docs {
		results = append(results, d.toModel())
	}
	return results, nil
}

func (r *ResultRepo) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	res, err := r.col.DeleteMany(ctx, bson.M{"user_id": userID})
	if err != nil {
		return 0, apperrors.Persistence(fmt.Errorf("deleting quiz results: %w", err))
	}
	return res.DeletedCount, nil
}

func (r *ResultRepo) Aggregate(ctx context.Context, offset, limit int) ([]models.UserAggregate, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$user_id"},
			{Key: "total_quizzes", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "total_score", Value: bson.D{{Key: "$sum", Value: "$score"}}},
			{Key: "total_questions", Value: bson.D{{Key: "$sum", Value: "$total_questions"}}},
		}}},
		{{Key: "$addFields", Value: bson.D{
			{Key: "ratio", Value: bson.D{{Key: "$cond", Value: bson.A{
				bson.D{{Key: "$gt", Value: bson.A{"$total_questions", 0}}},
				bson.D{{Key: "$divide", Value: bson.A{"$total_score", "$total_questions"}}},
				0,
			}}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "ratio", Value: -1}, {Key: "_id", Value: 1}}}},
		{{Key: "$skip", Value: offset}},
		{{Key: "$limit", Value: limit}},
	}

	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, apperrors.Persistence(fmt.Errorf("aggregating quiz results: %w", err))
	}
	defer cur.Close(ctx)

	var docs []aggregateDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, apperrors.Persistence(fmt.Errorf("decoding aggregates: %w", err))
	}

	aggregates := make([]models.UserAggregate, 0, len(docs))
	for _, d := range docs {
		aggregates = append(aggregates, models.UserAggregate(d))
	}
	return aggregates, nil
}

func (r *ResultRepo) Ping(ctx context.Context) error {
	return r.col.Database().Client().Ping(ctx, nil)
}
