package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/mamadbah2/fleetbook/internal/domain/models"
	"github.com/mamadbah2/fleetbook/internal/repository"
)

// MongoDBRepository implements repository.Store on top of a MongoDB database.
type MongoDBRepository struct {
	client *mongo.Client
	db     *mongo.Database
	logger *zap.Logger
}

var _ repository.Store = (*MongoDBRepository)(nil)

// NewMongoDBRepository connects to MongoDB and verifies the connection.
func NewMongoDBRepository(ctx context.Context, uri string, dbName string, logger *zap.Logger) (*MongoDBRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	// Ping the database to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	logger.Info("mongodb connected", zap.String("database", dbName))

	return &MongoDBRepository{
		client: client,
		db:     client.Database(dbName),
		logger: logger,
	}, nil
}

// FindAll returns every document in collection matching filter.
func (r *MongoDBRepository) FindAll(ctx context.Context, collection string, filter repository.Filter) ([]repository.Document, error) {
	query, ok := toQuery(filter)
	if !ok {
		return []repository.Document{}, nil
	}

	cursor, err := r.db.Collection(collection).Find(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("find in %s: %w", collection, err)
	}
	defer cursor.Close(ctx)

	docs := make([]repository.Document, 0)
	for cursor.Next(ctx) {
		var doc repository.Document
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode %s document: %w", collection, err)
		}
		docs = append(docs, doc.Normalize())
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", collection, err)
	}
	return docs, nil
}

// FindOne returns the first document matching filter.
func (r *MongoDBRepository) FindOne(ctx context.Context, collection string, filter repository.Filter) (repository.Document, error) {
	query, ok := toQuery(filter)
	if !ok {
		return nil, repository.ErrNotFound
	}

	var doc repository.Document
	err := r.db.Collection(collection).FindOne(ctx, query).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find one in %s: %w", collection, err)
	}
	return doc.Normalize(), nil
}

// FindByID looks a document up by its hex object id. Malformed ids are
// reported as not found.
func (r *MongoDBRepository) FindByID(ctx context.Context, collection, id string) (repository.Document, error) {
	return r.FindOne(ctx, collection, repository.Filter{models.FieldID: repository.Eq(id)})
}

// InsertOne stores doc and returns the generated id.
func (r *MongoDBRepository) InsertOne(ctx context.Context, collection string, doc repository.Document) (string, error) {
	payload := bson.M{}
	for k, v := range doc {
		if k == models.FieldID {
			continue
		}
		payload[k] = v
	}

	res, err := r.db.Collection(collection).InsertOne(ctx, payload)
	if err != nil {
		return "", fmt.Errorf("insert into %s: %w", collection, err)
	}

	switch id := res.InsertedID.(type) {
	case primitive.ObjectID:
		return id.Hex(), nil
	default:
		return fmt.Sprint(id), nil
	}
}

// UpdateOne applies a $set of the given fields to one document.
func (r *MongoDBRepository) UpdateOne(ctx context.Context, collection, id string, set repository.Document) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return repository.ErrNotFound
	}

	fields := bson.M{}
	for k, v := range set {
		if k == models.FieldID {
			continue
		}
		fields[k] = v
	}
	if len(fields) == 0 {
		return nil
	}

	res, err := r.db.Collection(collection).UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": fields})
	if err != nil {
		return fmt.Errorf("update %s %s: %w", collection, id, err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// DeleteOne removes one document.
func (r *MongoDBRepository) DeleteOne(ctx context.Context, collection, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return repository.ErrNotFound
	}

	res, err := r.db.Collection(collection).DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete %s %s: %w", collection, id, err)
	}
	if res.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Distinct lists the unique values of field across matching documents.
func (r *MongoDBRepository) Distinct(ctx context.Context, collection, field string, filter repository.Filter) ([]any, error) {
	query, ok := toQuery(filter)
	if !ok {
		return []any{}, nil
	}

	values, err := r.db.Collection(collection).Distinct(ctx, field, query)
	if err != nil {
		return nil, fmt.Errorf("distinct %s.%s: %w", collection, field, err)
	}
	return values, nil
}

// Close closes the MongoDB connection.
func (r *MongoDBRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

// toQuery translates a repository filter into a MongoDB query document. The
// second result is false when the filter can never match, which happens when
// an _id equality carries a malformed object id.
func toQuery(filter repository.Filter) (bson.M, bool) {
	query := bson.M{}
	for field, cond := range filter {
		switch {
		case cond.IsEq():
			value := cond.Value()
			if field == models.FieldID {
				oid, ok := objectID(value)
				if !ok {
					return nil, false
				}
				value = oid
			}
			query[field] = value
		case cond.IsNe():
			value := cond.Value()
			if field == models.FieldID {
				if oid, ok := objectID(value); ok {
					value = oid
				}
			}
			query[field] = bson.M{"$ne": value}
		default:
			gte, lte := cond.Bounds()
			bounds := bson.M{}
			if gte != nil {
				bounds["$gte"] = gte
			}
			if lte != nil {
				bounds["$lte"] = lte
			}
			if len(bounds) == 0 {
				bounds["$exists"] = true
			}
			query[field] = bounds
		}
	}
	return query, true
}

func objectID(v any) (primitive.ObjectID, bool) {
	switch t := v.(type) {
	case primitive.ObjectID:
		return t, true
	case string:
		oid, err := primitive.ObjectIDFromHex(t)
		return oid, err == nil
	}
	return primitive.NilObjectID, false
}
