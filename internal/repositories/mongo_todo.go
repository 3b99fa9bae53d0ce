package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"go-mongo-todo/internal/models"
)

// CollectionProvider は操作のたびにコレクションを取得するためのインターフェースです。
// database.MongoConnector が実装します。
type CollectionProvider interface {
	Collection(ctx context.Context) (*mongo.Collection, error)
}

// mongoTodo はコレクションに格納されるドキュメントの形です。
type mongoTodo struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Text      string             `bson:"text"`
	Completed bool               `bson:"completed"`
	CreatedAt time.Time          `bson:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at"`
}

func (d mongoTodo) toModel() *models.Todo {
	return &models.Todo{
		ID:        d.ID.Hex(),
		Text:      d.Text,
		Completed: d.Completed,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

// MongoTodoRepository はMongoDBのコレクションを使うTodoRepositoryです。
type MongoTodoRepository struct {
	collections CollectionProvider
	now         func() time.Time
}

// NewMongoTodoRepository は新しいMongoTodoRepositoryを作成します。
func NewMongoTodoRepository(collections CollectionProvider) *MongoTodoRepository {
	return &MongoTodoRepository{collections: collections, now: mongoNow}
}

// BSONの日時はミリ秒精度なので、書き込み前に丸めておく
func mongoNow() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

func parseObjectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return oid, nil
}

// List はコレクション内のすべてのtodoを格納順に返します。
func (r *MongoTodoRepository) List(ctx context.Context) ([]models.Todo, error) {
	coll, err := r.collections.Collection(ctx)
	if err != nil {
		return nil, err
	}

	cur, err := coll.Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("could not query todos: %w", err)
	}
	var docs []mongoTodo
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("could not decode todos: %w", err)
	}

	todos := make([]models.Todo, 0, len(docs))
	for _, d := range docs {
		todos = append(todos, *d.toModel())
	}
	return todos, nil
}

// Create は新しいtodoを挿入し、採番されたIDを含むtodoを返します。
func (r *MongoTodoRepository) Create(ctx context.Context, text string, completed bool) (*models.Todo, error) {
	coll, err := r.collections.Collection(ctx)
	if err != nil {
		return nil, err
	}

	now := r.now()
	doc := mongoTodo{Text: text, Completed: completed, CreatedAt: now, UpdatedAt: now}
	res, err := coll.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("could not insert todo: %w", err)
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}
	doc.ID = oid
	return doc.toModel(), nil
}

// FindByID は指定IDのtodoを返します。存在しない場合は ErrTodoNotFound を返します。
func (r *MongoTodoRepository) FindByID(ctx context.Context, id string) (*models.Todo, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}
	coll, err := r.collections.Collection(ctx)
	if err != nil {
		return nil, err
	}

	var doc mongoTodo
	if err := coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrTodoNotFound
		}
		return nil, fmt.Errorf("could not query todo: %w", err)
	}
	return doc.toModel(), nil
}

// UpdateByID はパッチで指定されたフィールドだけを $set で更新し、更新後のtodoを返します。
// 対象が存在しない場合は (nil, nil) を返します。
func (r *MongoTodoRepository) UpdateByID(ctx context.Context, id string, patch models.TodoPatch) (*models.Todo, error) {
	if patch.IsEmpty() {
		t, err := r.FindByID(ctx, id)
		if errors.Is(err, ErrTodoNotFound) {
			return nil, nil
		}
		return t, err
	}

	oid, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}
	coll, err := r.collections.Collection(ctx)
	if err != nil {
		return nil, err
	}

	set := bson.M{"updated_at": r.now()}
	if patch.Text != nil {
		set["text"] = *patch.Text
	}
	if patch.Completed != nil {
		set["completed"] = *patch.Completed
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc mongoTodo
	err = coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("could not update todo: %w", err)
	}
	return doc.toModel(), nil
}

// DeleteByID は指定IDのtodoを削除します。存在しなくてもエラーにはなりません。
func (r *MongoTodoRepository) DeleteByID(ctx context.Context, id string) error {
	oid, err := parseObjectID(id)
	if err != nil {
		return err
	}
	coll, err := r.collections.Collection(ctx)
	if err != nil {
		return err
	}

	if _, err := coll.DeleteOne(ctx, bson.M{"_id": oid}); err != nil {
		return fmt.Errorf("could not delete todo: %w", err)
	}
	return nil
}
