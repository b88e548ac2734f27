package datastore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore maps every logical collection onto a Mongo collection of the
// same name. Batches run inside a session transaction, which needs a replica
// set deployment.
type MongoStore struct {
	client       *mongo.Client
	db           *mongo.Database
	maxBatchSize int
}

func NewMongoStore(client *mongo.Client, database string) *MongoStore {
	return &MongoStore{
		client:       client,
		db:           client.Database(database),
		maxBatchSize: DefaultMaxBatchSize,
	}
}

func CreateMongoIndexes(ctx context.Context, store *MongoStore) error {
	for _, collection := range []string{CollectionQuestions, CollectionPendingQuestions} {
		_, err := store.db.Collection(collection).Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys: bson.D{{Key: "categoryId", Value: 1}},
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *MongoStore) MaxBatchSize() int {
	return s.maxBatchSize
}

func (s *MongoStore) NewID(collection string) string {
	return newID()
}

func (s *MongoStore) Get(ctx context.Context, collection, id string) (*Doc, error) {
	raw, err := s.db.Collection(collection).FindOne(ctx, bson.M{"_id": id}).Raw()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return rawToDoc(raw)
}

func (s *MongoStore) Query(ctx context.Context, collection string, where ...Where) ([]*Doc, error) {
	filter := bson.M{}
	for _, w := range where {
		filter[w.Field] = w.Value
	}

	cur, err := s.db.Collection(collection).Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	docs := []*Doc{}
	for cur.Next(ctx) {
		doc, err := rawToDoc(cur.Current)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, cur.Err()
}

func (s *MongoStore) Add(ctx context.Context, collection string, data map[string]any) (string, error) {
	id := s.NewID(collection)
	return id, s.exec(ctx, SetOp(collection, id, data))
}

func (s *MongoStore) Set(ctx context.Context, collection, id string, data map[string]any) error {
	return s.exec(ctx, SetOp(collection, id, data))
}

func (s *MongoStore) Update(ctx context.Context, collection, id string, patch map[string]any) error {
	return s.exec(ctx, UpdateOp(collection, id, patch))
}

func (s *MongoStore) Delete(ctx context.Context, collection, id string) error {
	return s.exec(ctx, DeleteOp(collection, id))
}

func (s *MongoStore) Batch() Batch {
	return &mongoBatch{store: s}
}

func (s *MongoStore) exec(ctx context.Context, op Op) error {
	coll := s.db.Collection(op.Collection)

	switch op.Kind {
	case OpSet:
		document := bson.M{}
		for k, v := range op.Data {
			document[k] = v
		}
		document["_id"] = op.ID
		_, err := coll.ReplaceOne(ctx, bson.M{"_id": op.ID}, document, options.Replace().SetUpsert(true))
		return err

	case OpUpdate:
		res, err := coll.UpdateOne(ctx, bson.M{"_id": op.ID}, bson.M{"$set": bson.M(op.Data)})
		if err != nil {
			return err
		}
		if res.MatchedCount == 0 {
			return ErrNotFound
		}
		return nil

	case OpDelete:
		_, err := coll.DeleteOne(ctx, bson.M{"_id": op.ID})
		return err

	case OpIncrement:
		update := bson.M{"$inc": bson.M{op.Field: op.Delta}}
		if len(op.Data) > 0 {
			update["$set"] = bson.M(op.Data)
		}
		_, err := coll.UpdateOne(ctx, bson.M{"_id": op.ID}, update, options.Update().SetUpsert(true))
		return err
	}

	return fmt.Errorf("unknown op kind %d", op.Kind)
}

type mongoBatch struct {
	opList
	store *MongoStore
}

func (b *mongoBatch) Commit(ctx context.Context) error {
	if len(b.ops) == 0 {
		return nil
	}
	if len(b.ops) > b.store.maxBatchSize {
		return fmt.Errorf("batch of %d operations exceeds limit %d", len(b.ops), b.store.maxBatchSize)
	}

	session, err := b.store.client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		for i, op := range b.ops {
			if err := b.store.exec(sc, op); err != nil {
				return nil, fmt.Errorf("op %d (%s %s/%s): %w", i, op.Kind, op.Collection, op.ID, err)
			}
		}
		return nil, nil
	})
	return err
}

// rawToDoc goes through relaxed extended JSON so nested values come back as
// plain maps and slices.
func rawToDoc(raw bson.Raw) (*Doc, error) {
	b, err := bson.MarshalExtJSON(raw, false, false)
	if err != nil {
		return nil, err
	}

	var data map[string]any
	if err := json.Unmarshal(b, &data); err != nil {
		return nil, err
	}

	id := fmt.Sprint(data["_id"])
	delete(data, "_id")
	return &Doc{ID: id, Data: data}, nil
}
