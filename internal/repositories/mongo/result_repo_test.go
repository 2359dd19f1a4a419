package mongo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	apperrors "quizly/api/internal/errors"
	"quizly/api/internal/models"
)

func TestResultRepo(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("create assigns id", func(mt *mtest.T) {
		repo := NewResultRepoFromCollection(mt.Coll)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		result := &models.QuizResult{UserID: "7", Topic: "go", Difficulty: "easy", Score: 3, TotalQuestions: 5}
		require.NoError(mt, repo.Create(context.Background(), result))
		assert.Len(mt, result.ID, 24)
		assert.False(mt, result.CreatedAt.IsZero())
	})

	mt.Run("create write error", func(mt *mtest.T) {
		repo := NewResultRepoFromCollection(mt.Coll)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{Index: 0, Code: 11000, Message: "duplicate key"}))

		err := repo.Create(context.Background(), &models.QuizResult{UserID: "7", Topic: "go", Score: 1, TotalQuestions: 1})
		assert.True(mt, apperrors.IsKind(err, apperrors.KindPersistence), "got %v", err)
	})

	mt.Run("list by user", func(mt *mtest.T) {
		repo := NewResultRepoFromCollection(mt.Coll)
		newer := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
		older := newer.Add(-24 * time.Hour)
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()

		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			bson.D{
				{Key: "_id", Value: primitive.NewObjectID()},
				{Key: "user_id", Value: "7"},
				{Key: "topic", Value: "go"},
				{Key: "difficulty", Value: "hard"},
				{Key: "score", Value: 4},
				{Key: "total_questions", Value: 5},
				{Key: "created_at", Value: newer},
			},
			bson.D{
				{Key: "_id", Value: primitive.NewObjectID()},
				{Key: "user_id", Value: "7"},
				{Key: "topic", Value: "sql"},
				{Key: "difficulty", Value: "easy"},
				{Key: "score", Value: 2},
				{Key: "total_questions", Value: 5},
				{Key: "created_at", Value: older},
			},
		))

		results, err := repo.ListByUser(context.Background(), "7")
		require.NoError(mt, err)
		require.Len(mt, results, 2)
		assert.Equal(mt, "go", results[0].Topic)
		assert.Equal(mt, 4, results[0].Score)
		assert.True(mt, results[0].CreatedAt.Equal(newer))
		assert.Equal(mt, "sql", results[1].Topic)
	})

	mt.Run("delete by user", func(mt *mtest.T) {
		repo := NewResultRepoFromCollection(mt.Coll)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 3}))

		deleted, err := repo.DeleteByUser(context.Background(), "7")
		require.NoError(mt, err)
		assert.EqualValues(mt, 3, deleted)
	})

	mt.Run("aggregate", func(mt *mtest.T) {
		repo := NewResultRepoFromCollection(mt.Coll)
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			bson.D{{Key: "_id", Value: "2"}, {Key: "total_quizzes", Value: int32(1)}, {Key: "total_score", Value: int32(9)}, {Key: "total_questions", Value: int32(10)}, {Key: "ratio", Value: 0.9}},
			bson.D{{Key: "_id", Value: "1"}, {Key: "total_quizzes", Value: int32(2)}, {Key: "total_score", Value: int32(6)}, {Key: "total_questions", Value: int32(20)}, {Key: "ratio", Value: 0.3}},
		))

		aggregates, err := repo.Aggregate(context.Background(), 5, 20)
		require.NoError(mt, err)
		require.Len(mt, aggregates, 2)
		assert.Equal(mt, models.UserAggregate{UserID: "2", TotalQuizzes: 1, TotalScore: 9, TotalQuestions: 10}, aggregates[0])
		assert.Equal(mt, models.UserAggregate{UserID: "1", TotalQuizzes: 2, TotalScore: 6, TotalQuestions: 20}, aggregates[1])

		started := mt.GetStartedEvent()
		require.NotNil(mt, started)
		assert.Equal(mt, "aggregate", started.CommandName)
		assert.EqualValues(mt, 5, started.Command.Lookup("pipeline", "3", "$skip").AsInt64())
		assert.EqualValues(mt, 20, started.Command.Lookup("pipeline", "4", "$limit").AsInt64())
	})

	mt.Run("command error", func(mt *mtest.T) {
		repo := NewResultRepoFromCollection(mt.Coll)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 13, Message: "unauthorized", Name: "Unauthorized"}))

		_, err := repo.Aggregate(context.Background(), 0, 20)
		assert.True(mt, apperrors.IsKind(err, apperrors.KindPersistence), "got %v", err)
	})
}
