package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	Irepository "session-monitor/internal/domain/interfaces/repository"
)

const objectsCollection = "objects"

// objectDocument stores one blob keyed by its object path.
type objectDocument struct {
	Key       string    `bson:"_id"`
	Data      []byte    `bson:"data"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// MongoStore implements ObjectStore on MongoDB for deployments without a GCS
// bucket. Each blob is one document in a single collection, upserted on save.
type MongoStore struct {
	mongo *mongo.Database
}

func NewMongoStore(mongo *mongo.Database) *MongoStore {
	return &MongoStore{mongo: mongo}
}

func (r *MongoStore) Save(ctx context.Context, key string, data []byte) error {
	collection := r.mongo.Collection(objectsCollection)

	doc := objectDocument{Key: key, Data: data, UpdatedAt: time.Now().UTC()}
	_, err := collection.ReplaceOne(ctx, bson.M{"_id": key}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to save object %s: %w", key, err)
	}
	return nil
}

func (r *MongoStore) Load(ctx context.Context, key string) ([]byte, error) {
	collection := r.mongo.Collection(objectsCollection)

	var doc objectDocument
	err := collection.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, Irepository.ErrObjectNotFound
		}
		return nil, fmt.Errorf("failed to load object %s: %w", key, err)
	}
	return doc.Data, nil
}

func (r *MongoStore) Exists(ctx context.Context, key string) (bool, error) {
	collection := r.mongo.Collection(objectsCollection)

	count, err := collection.CountDocuments(ctx, bson.M{"_id": key})
	if err != nil {
		return false, fmt.Errorf("failed to check object %s: %w", key, err)
	}
	return count > 0, nil
}

func (r *MongoStore) List(ctx context.Context, prefix string) ([]string, error) {
	collection := r.mongo.Collection(objectsCollection)

	filter := bson.M{"_id": bson.M{"$regex": "^" + regexp.QuoteMeta(prefix)}}
	cursor, err := collection.Find(ctx, filter, options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, fmt.Errorf("failed to list objects under %s: %w", prefix, err)
	}
	defer cursor.Close(ctx)

	var keys []string
	for cursor.Next(ctx) {
		var doc struct {
			Key string `bson:"_id"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		keys = append(keys, doc.Key)
	}
	return keys, cursor.Err()
}
