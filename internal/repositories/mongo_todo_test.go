package repositories_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"go-mongo-todo/internal/models"
	"go-mongo-todo/internal/repositories"
)

// staticCollection は常に同じコレクションを返すCollectionProviderです。
type staticCollection struct {
	coll *mongo.Collection
}

func (s staticCollection) Collection(context.Context) (*mongo.Collection, error) {
	return s.coll, nil
}

// failingCollection は接続に失敗するCollectionProviderです。
type failingCollection struct {
	err error
}

func (f failingCollection) Collection(context.Context) (*mongo.Collection, error) {
	return nil, f.err
}

func namespace(mt *mtest.T) string {
	return mt.Coll.Database().Name() + "." + mt.Coll.Name()
}

func todoDoc(id primitive.ObjectID, text string, completed bool) bson.D {
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "text", Value: text},
		{Key: "completed", Value: completed},
		{Key: "created_at", Value: now},
		{Key: "updated_at", Value: now},
	}
}

// lastSetFields は直前に送られた findAndModify コマンドの $set の内容を返します。
func lastSetFields(mt *mtest.T) bson.Raw {
	mt.Helper()
	started := mt.GetStartedEvent()
	require.NotNil(mt, started)
	require.Equal(mt, "findAndModify", started.CommandName)
	set, ok := started.Command.Lookup("update", "$set").DocumentOK()
	require.True(mt, ok)
	return set
}

func TestMongoTodoRepository_Mock(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("list returns documents in cursor order", func(mt *mtest.T) {
		first, second := primitive.NewObjectID(), primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, namespace(mt), mtest.FirstBatch,
			todoDoc(first, "first", false),
			todoDoc(second, "second", true),
		))
		repo := repositories.NewMongoTodoRepository(staticCollection{mt.Coll})

		todos, err := repo.List(ctx)

		require.NoError(mt, err)
		require.Len(mt, todos, 2)
		assert.Equal(mt, first.Hex(), todos[0].ID)
		assert.Equal(mt, "first", todos[0].Text)
		assert.Equal(mt, second.Hex(), todos[1].ID)
		assert.True(mt, todos[1].Completed)
	})

	mt.Run("list on empty collection returns empty slice", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, namespace(mt), mtest.FirstBatch))
		repo := repositories.NewMongoTodoRepository(staticCollection{mt.Coll})

		todos, err := repo.List(ctx)

		require.NoError(mt, err)
		assert.NotNil(mt, todos)
		assert.Empty(mt, todos)
	})

	mt.Run("create assigns an object id", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		repo := repositories.NewMongoTodoRepository(staticCollection{mt.Coll})

		created, err := repo.Create(ctx, "buy milk", false)

		require.NoError(mt, err)
		_, err = primitive.ObjectIDFromHex(created.ID)
		assert.NoError(mt, err, "IDはObjectIDの16進表現であること")
		assert.Equal(mt, "buy milk", created.Text)
		assert.False(mt, created.Completed)
		assert.False(mt, created.CreatedAt.IsZero())
	})

	mt.Run("update sets only patched fields", func(mt *mtest.T) {
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "value", Value: todoDoc(id, "buy milk", true)},
		))
		repo := repositories.NewMongoTodoRepository(staticCollection{mt.Coll})
		done := true

		updated, err := repo.UpdateByID(ctx, id.Hex(), models.TodoPatch{Completed: &done})

		require.NoError(mt, err)
		require.NotNil(mt, updated)
		assert.Equal(mt, id.Hex(), updated.ID)
		assert.True(mt, updated.Completed)

		set := lastSetFields(mt)
		assert.True(mt, set.Lookup("completed").Boolean())
		_, err = set.LookupErr("text")
		assert.Error(mt, err, "指定していないフィールドは$setに含めないこと")
		_, err = set.LookupErr("updated_at")
		assert.NoError(mt, err)
	})

	mt.Run("update of missing document returns nil without error", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}))
		repo := repositories.NewMongoTodoRepository(staticCollection{mt.Coll})

		updated, err := repo.UpdateByID(ctx, primitive.NewObjectID().Hex(), models.TextPatch("x"))

		require.NoError(mt, err)
		assert.Nil(mt, updated)
	})

	mt.Run("empty patch returns current document without writing", func(mt *mtest.T) {
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, namespace(mt), mtest.FirstBatch,
			todoDoc(id, "unchanged", false),
		))
		repo := repositories.NewMongoTodoRepository(staticCollection{mt.Coll})

		current, err := repo.UpdateByID(ctx, id.Hex(), models.TodoPatch{})

		require.NoError(mt, err)
		require.NotNil(mt, current)
		assert.Equal(mt, "unchanged", current.Text)
		started := mt.GetStartedEvent()
		require.NotNil(mt, started)
		assert.Equal(mt, "find", started.CommandName)
	})

	mt.Run("empty patch on missing document returns nil", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, namespace(mt), mtest.FirstBatch))
		repo := repositories.NewMongoTodoRepository(staticCollection{mt.Coll})

		current, err := repo.UpdateByID(ctx, primitive.NewObjectID().Hex(), models.TodoPatch{})

		require.NoError(mt, err)
		assert.Nil(mt, current)
	})

	mt.Run("find missing document returns ErrTodoNotFound", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, namespace(mt), mtest.FirstBatch))
		repo := repositories.NewMongoTodoRepository(staticCollection{mt.Coll})

		_, err := repo.FindByID(ctx, primitive.NewObjectID().Hex())

		assert.ErrorIs(mt, err, repositories.ErrTodoNotFound)
	})

	mt.Run("delete succeeds whether or not the document exists", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}),
		)
		repo := repositories.NewMongoTodoRepository(staticCollection{mt.Coll})
		id := primitive.NewObjectID().Hex()

		assert.NoError(mt, repo.DeleteByID(ctx, id))
		assert.NoError(mt, repo.DeleteByID(ctx, id))
	})

	mt.Run("malformed ids are rejected before any command", func(mt *mtest.T) {
		repo := repositories.NewMongoTodoRepository(staticCollection{mt.Coll})

		_, err := repo.FindByID(ctx, "not-an-id")
		assert.ErrorIs(mt, err, repositories.ErrInvalidID)
		_, err = repo.UpdateByID(ctx, "not-an-id", models.TextPatch("x"))
		assert.ErrorIs(mt, err, repositories.ErrInvalidID)
		assert.ErrorIs(mt, repo.DeleteByID(ctx, "not-an-id"), repositories.ErrInvalidID)
		assert.Nil(mt, mt.GetStartedEvent())
	})

	mt.Run("server errors propagate", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    2,
			Name:    "BadValue",
			Message: "boom",
		}))
		repo := repositories.NewMongoTodoRepository(staticCollection{mt.Coll})

		_, err := repo.Create(ctx, "x", false)

		require.Error(mt, err)
		assert.Contains(mt, err.Error(), "could not insert todo")
	})
}

func TestMongoTodoRepository_ConnectionFailure(t *testing.T) {
	connErr := errors.New("could not connect to mongo")
	repo := repositories.NewMongoTodoRepository(failingCollection{err: connErr})
	ctx := context.Background()

	_, err := repo.List(ctx)
	assert.ErrorIs(t, err, connErr)
	_, err = repo.Create(ctx, "x", false)
	assert.ErrorIs(t, err, connErr)
	assert.ErrorIs(t, repo.DeleteByID(ctx, primitive.NewObjectID().Hex()), connErr)
}
