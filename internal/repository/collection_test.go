package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/AnshRaj112/healthtips-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

var (
	t0 = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	t1 = t0.Add(90 * time.Second)
)

func fixedClock(ts time.Time) Option {
	return WithClock(func() time.Time { return ts })
}

func namespace(mt *mtest.T) string {
	return mt.Coll.Database().Name() + "." + mt.Coll.Name()
}

func storedTip(id primitive.ObjectID) bson.D {
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "title", Value: "Drink water"},
		{Key: "content", Value: "Eight glasses a day"},
		{Key: "category", Value: "hydration"},
		{Key: "author", Value: "Anonymous"},
		{Key: "createdAt", Value: t0},
		{Key: "updatedAt", Value: t0},
	}
}

func TestParseID(t *testing.T) {
	id := primitive.NewObjectID()

	got, err := ParseID(id.Hex())
	require.NoError(t, err)
	assert.Equal(t, id, got)
	assert.True(t, IsValidID(id.Hex()))

	for _, bad := range []string{"not-an-id", "", "507f1f77bcf86cd79943901", "507F1F77BCF86CD799439011", "507f1f77bcf86cd79943901z"} {
		_, err := ParseID(bad)
		assert.ErrorIs(t, err, ErrInvalidID, "id %q", bad)
		assert.False(t, IsValidID(bad))
	}
}

func TestCollection_FindAll(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("empty collection", func(mt *mtest.T) {
		repo := NewCollection[models.HealthTip](mt.Coll)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, namespace(mt), mtest.FirstBatch))

		tips, err := repo.FindAll(context.Background())

		require.NoError(mt, err)
		assert.NotNil(mt, tips)
		assert.Empty(mt, tips)
	})

	mt.Run("decodes documents", func(mt *mtest.T) {
		repo := NewCollection[models.HealthTip](mt.Coll)
		a, b := primitive.NewObjectID(), primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, namespace(mt), mtest.FirstBatch, storedTip(a), storedTip(b)))

		tips, err := repo.FindAll(context.Background())

		require.NoError(mt, err)
		require.Len(mt, tips, 2)
		assert.Equal(mt, a, tips[0].ID)
		assert.Equal(mt, b, tips[1].ID)
		assert.Equal(mt, "Drink water", tips[0].Title)
		assert.True(mt, t0.Equal(tips[0].CreatedAt))
	})

	mt.Run("driver error", func(mt *mtest.T) {
		repo := NewCollection[models.HealthTip](mt.Coll)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 13, Name: "Unauthorized", Message: "not authorized"}))

		_, err := repo.FindAll(context.Background())

		assert.ErrorContains(mt, err, "not authorized")
	})
}

func TestCollection_FindByID(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("found", func(mt *mtest.T) {
		repo := NewCollection[models.HealthTip](mt.Coll)
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, namespace(mt), mtest.FirstBatch, storedTip(id)))

		tip, err := repo.FindByID(context.Background(), id.Hex())

		require.NoError(mt, err)
		require.NotNil(mt, tip)
		assert.Equal(mt, id, tip.ID)
		assert.Equal(mt, "hydration", tip.Category)
	})

	mt.Run("missing", func(mt *mtest.T) {
		repo := NewCollection[models.HealthTip](mt.Coll)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, namespace(mt), mtest.FirstBatch))

		tip, err := repo.FindByID(context.Background(), primitive.NewObjectID().Hex())

		require.NoError(mt, err)
		assert.Nil(mt, tip)
	})

	mt.Run("malformed id never queries", func(mt *mtest.T) {
		repo := NewCollection[models.HealthTip](mt.Coll)

		// No mock responses: any query would fail with a driver error instead.
		_, err := repo.FindByID(context.Background(), "not-an-id")

		assert.ErrorIs(mt, err, ErrInvalidID)
	})
}

func TestCollection_Create(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("assigns id and timestamps", func(mt *mtest.T) {
		repo := NewCollection[models.Recipe](mt.Coll, fixedClock(t0.Add(123456*time.Nanosecond)))
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		clientID := primitive.NewObjectID()
		in := &models.Recipe{
			ID:          clientID,
			Title:       "Soup",
			Ingredients: []string{"tomato"},
			Steps:       []string{"boil"},
			CreatedAt:   time.Date(1999, 1, 1, 0, 0, 0, 0, time.UTC),
		}

		out, err := repo.Create(context.Background(), in)

		require.NoError(mt, err)
		assert.False(mt, out.ID.IsZero())
		assert.NotEqual(mt, clientID, out.ID)
		assert.Equal(mt, t0, out.CreatedAt, "timestamps are truncated to milliseconds")
		assert.Equal(mt, out.CreatedAt, out.UpdatedAt)
	})

	mt.Run("write error", func(mt *mtest.T) {
		repo := NewCollection[models.Recipe](mt.Coll)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{Index: 0, Code: 11000, Message: "duplicate key"}))

		_, err := repo.Create(context.Background(), &models.Recipe{Title: "Soup"})

		assert.ErrorContains(mt, err, "duplicate key")
	})
}

func TestCollection_Update(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("merges fields and refreshes updatedAt", func(mt *mtest.T) {
		repo := NewCollection[models.HealthTip](mt.Coll, fixedClock(t1))
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: storedTip(id)}))

		res, err := repo.Update(context.Background(), id.Hex(), bson.M{"title": "Drink more water"})

		require.NoError(mt, err)
		assert.True(mt, res.Matched)
		assert.True(mt, res.Changed)
		require.NotNil(mt, res.Document)
		assert.Equal(mt, id, res.Document.ID)
		assert.Equal(mt, "Drink more water", res.Document.Title)
		assert.Equal(mt, "Eight glasses a day", res.Document.Content, "fields not in the payload are unchanged")
		assert.Equal(mt, "hydration", res.Document.Category)
		assert.True(mt, t0.Equal(res.Document.CreatedAt))
		assert.True(mt, res.Document.UpdatedAt.After(res.Document.CreatedAt))
		assert.True(mt, t1.Equal(res.Document.UpdatedAt))
	})

	mt.Run("same values report no change", func(mt *mtest.T) {
		repo := NewCollection[models.HealthTip](mt.Coll, fixedClock(t1))
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: storedTip(id)}))

		res, err := repo.Update(context.Background(), id.Hex(), bson.M{"title": "Drink water", "author": "Anonymous"})

		require.NoError(mt, err)
		assert.True(mt, res.Matched)
		assert.False(mt, res.Changed)
		assert.True(mt, t1.Equal(res.Document.UpdatedAt))
	})

	mt.Run("protected keys are ignored", func(mt *mtest.T) {
		repo := NewCollection[models.HealthTip](mt.Coll, fixedClock(t1))
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: storedTip(id)}))

		res, err := repo.Update(context.Background(), id.Hex(), bson.M{
			"_id":       primitive.NewObjectID(),
			"createdAt": time.Date(1999, 1, 1, 0, 0, 0, 0, time.UTC),
		})

		require.NoError(mt, err)
		assert.Equal(mt, id, res.Document.ID)
		assert.True(mt, t0.Equal(res.Document.CreatedAt))
		assert.False(mt, res.Changed)
	})

	mt.Run("updatedAt moves past a same-millisecond write", func(mt *mtest.T) {
		repo := NewCollection[models.HealthTip](mt.Coll, fixedClock(t0.Add(400*time.Nanosecond)))
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: storedTip(id)}))

		res, err := repo.Update(context.Background(), id.Hex(), bson.M{"title": "New"})

		require.NoError(mt, err)
		assert.True(mt, t0.Equal(res.Document.CreatedAt))
		assert.True(mt, res.Document.UpdatedAt.After(res.Document.CreatedAt))
		assert.True(mt, t0.Add(time.Millisecond).Equal(res.Document.UpdatedAt))
	})

	mt.Run("clock behind stored updatedAt", func(mt *mtest.T) {
		repo := NewCollection[models.HealthTip](mt.Coll, fixedClock(t0.Add(-time.Hour)))
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: storedTip(id)}))

		res, err := repo.Update(context.Background(), id.Hex(), bson.M{"title": "New"})

		require.NoError(mt, err)
		assert.True(mt, t0.Add(time.Millisecond).Equal(res.Document.UpdatedAt))
	})

	mt.Run("sends a pipeline with literal values", func(mt *mtest.T) {
		repo := NewCollection[models.HealthTip](mt.Coll, fixedClock(t1))
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: storedTip(id)}))

		res, err := repo.Update(context.Background(), id.Hex(), bson.M{"title": "$5 smoothie"})

		require.NoError(mt, err)
		assert.Equal(mt, "$5 smoothie", res.Document.Title)

		update := mt.GetStartedEvent().Command.Lookup("update")
		require.Equal(mt, bsontype.Array, update.Type)
		stage := update.Array().Lookup("0").Document().Lookup("$set").Document()
		assert.Equal(mt, "$5 smoothie", stage.Lookup("title", "$literal").StringValue())
		_, err = stage.LookupErr("updatedAt", "$max")
		assert.NoError(mt, err)
	})

	mt.Run("unknown id", func(mt *mtest.T) {
		repo := NewCollection[models.HealthTip](mt.Coll)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}))

		res, err := repo.Update(context.Background(), primitive.NewObjectID().Hex(), bson.M{"title": "x"})

		require.NoError(mt, err)
		assert.False(mt, res.Matched)
		assert.Nil(mt, res.Document)
	})

	mt.Run("malformed id", func(mt *mtest.T) {
		repo := NewCollection[models.HealthTip](mt.Coll)

		_, err := repo.Update(context.Background(), "not-an-id", bson.M{"title": "x"})

		assert.ErrorIs(mt, err, ErrInvalidID)
	})
}

func TestCollection_Delete(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("deleted", func(mt *mtest.T) {
		repo := NewCollection[models.Recipe](mt.Coll)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}))

		deleted, err := repo.Delete(context.Background(), primitive.NewObjectID().Hex())

		require.NoError(mt, err)
		assert.True(mt, deleted)
	})

	mt.Run("nothing to delete", func(mt *mtest.T) {
		repo := NewCollection[models.Recipe](mt.Coll)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))

		deleted, err := repo.Delete(context.Background(), primitive.NewObjectID().Hex())

		require.NoError(mt, err)
		assert.False(mt, deleted)
	})

	mt.Run("malformed id", func(mt *mtest.T) {
		repo := NewCollection[models.Recipe](mt.Coll)

		_, err := repo.Delete(context.Background(), "not-an-id")

		assert.ErrorIs(mt, err, ErrInvalidID)
	})
}

func TestTypedRepositories(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("collection names", func(mt *mtest.T) {
		tips, err := NewHealthTips(dbSource{mt.DB})
		require.NoError(mt, err)
		assert.Equal(mt, "healthtips", tips.Name())

		recipes, err := NewRecipes(dbSource{mt.DB})
		require.NoError(mt, err)
		assert.Equal(mt, "recipes", recipes.Name())
	})

	mt.Run("source not ready", func(mt *mtest.T) {
		notReady := errors.New("database not initialized")

		_, err := NewHealthTips(failingSource{notReady})
		assert.ErrorIs(mt, err, notReady)

		_, err = NewRecipes(failingSource{notReady})
		assert.ErrorIs(mt, err, notReady)
	})
}

type dbSource struct{ db *mongo.Database }

func (s dbSource) Collection(name string) (*mongo.Collection, error) {
	return s.db.Collection(name), nil
}

type failingSource struct{ err error }

func (s failingSource) Collection(string) (*mongo.Collection, error) { return nil, s.err }
