package mongo

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/MiteshDarda/pw-genius/internal/domain"
	"github.com/MiteshDarda/pw-genius/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const nominationCollectionName = "register_logs"

// mongoNominationRepository implements repository.NominationRepository using MongoDB.
type mongoNominationRepository struct {
	collection *mongo.Collection
}

// NewMongoNominationRepository creates a new nomination repository backed by MongoDB.
// It expects a connected *mongo.Database instance.
func NewMongoNominationRepository(db *mongo.Database) repository.NominationRepository {
	return &mongoNominationRepository{
		collection: db.Collection(nominationCollectionName),
	}
}

// Create inserts a new nomination record.
func (r *mongoNominationRepository) Create(ctx context.Context, nomination *domain.Nomination) (primitive.ObjectID, error) {
	if nomination.UserID == "" {
		return primitive.NilObjectID, errors.New("nomination requires a userId")
	}

	nomination.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	nomination.CreatedAt = now
	nomination.UpdatedAt = now
	if nomination.Status == "" {
		nomination.Status = domain.StatusPending
	}

	result, err := r.collection.InsertOne(ctx, nomination)
	if err != nil {
		// The unique userId index turns a concurrent double-submit into a
		// duplicate key error here, even when both requests passed the
		// pre-insert existence check.
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, repository.ErrDuplicateKey
		}
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}

	return insertedID, nil
}

// GetByID retrieves a nomination by its MongoDB ObjectID.
func (r *mongoNominationRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Nomination, error) {
	var nomination domain.Nomination
	filter := bson.M{"_id": id}

	err := r.collection.FindOne(ctx, filter).Decode(&nomination)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &nomination, nil
}

// GetByUserID retrieves the nomination submitted by a specific user.
func (r *mongoNominationRepository) GetByUserID(ctx context.Context, userID string) (*domain.Nomination, error) {
	var nomination domain.Nomination
	filter := bson.M{"userId": userID}

	err := r.collection.FindOne(ctx, filter).Decode(&nomination)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &nomination, nil
}

// buildFilter translates the typed filter struct into a bson document.
// Substring predicates are quoted so user input cannot inject regex syntax.
func buildFilter(filter repository.NominationFilter) bson.M {
	query := bson.M{}
	if filter.Search != "" {
		query["studentName"] = primitive.Regex{Pattern: regexp.QuoteMeta(filter.Search), Options: "i"}
	}
	if filter.Class != "" {
		query["class"] = filter.Class
	}
	if filter.Exam != "" {
		query["examName"] = primitive.Regex{Pattern: regexp.QuoteMeta(filter.Exam), Options: "i"}
	}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	return query
}

// Find returns all nominations matching the filter, in insertion order.
// Admin listings are bounded in practice, so the result is materialized.
func (r *mongoNominationRepository) Find(ctx context.Context, filter repository.NominationFilter) ([]domain.Nomination, error) {
	cursor, err := r.collection.Find(ctx, buildFilter(filter))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	nominations := []domain.Nomination{}
	if err = cursor.All(ctx, &nominations); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}

	return nominations, nil
}

// Count returns the number of nominations matching the filter.
func (r *mongoNominationRepository) Count(ctx context.Context, filter repository.NominationFilter) (int64, error) {
	return r.collection.CountDocuments(ctx, buildFilter(filter))
}

// buildStatusUpdate builds the partial $set document for a status patch.
func buildStatusUpdate(patch repository.StatusPatch) bson.M {
	set := bson.M{
		"status":    patch.Status,
		"updatedAt": time.Now().UTC(),
	}
	if patch.Remarks != nil {
		set["remarks"] = *patch.Remarks
	}
	return bson.M{"$set": set}
}

// UpdateStatus applies a status patch to one nomination and returns the updated document.
func (r *mongoNominationRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, patch repository.StatusPatch) (*domain.Nomination, error) {
	filter := bson.M{"_id": id}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated domain.Nomination
	err := r.collection.FindOneAndUpdate(ctx, filter, buildStatusUpdate(patch), opts).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &updated, nil
}

// UpdateStatusBulk applies the same status patch to every existing id in the set.
func (r *mongoNominationRepository) UpdateStatusBulk(ctx context.Context, ids []primitive.ObjectID, patch repository.StatusPatch) (repository.BulkUpdateResult, error) {
	filter := bson.M{"_id": bson.M{"$in": ids}}
	if len(patch.OnlyFrom) > 0 {
		filter["status"] = bson.M{"$in": patch.OnlyFrom}
	}

	result, err := r.collection.UpdateMany(ctx, filter, buildStatusUpdate(patch))
	if err != nil {
		return repository.BulkUpdateResult{}, err
	}

	return repository.BulkUpdateResult{
		MatchedCount:  result.MatchedCount,
		ModifiedCount: result.ModifiedCount,
	}, nil
}

// ExistingIDs returns the subset of the given ids that have a record.
func (r *mongoNominationRepository) ExistingIDs(ctx context.Context, ids []primitive.ObjectID) ([]primitive.ObjectID, error) {
	filter := bson.M{"_id": bson.M{"$in": ids}}
	opts := options.Find().SetProjection(bson.M{"_id": 1})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	existing := make([]primitive.ObjectID, 0, len(docs))
	for _, doc := range docs {
		existing = append(existing, doc.ID)
	}
	return existing, nil
}

// Delete removes a nomination record by id.
func (r *mongoNominationRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// CountCreatedSince counts nominations created at or after the given time.
func (r *mongoNominationRepository) CountCreatedSince(ctx context.Context, since time.Time) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"createdAt": bson.M{"$gte": since}})
}

// CountByClass groups nominations by class, sorted by class label ascending.
func (r *mongoNominationRepository) CountByClass(ctx context.Context) ([]repository.FieldCount, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$class"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	}
	return r.aggregateCounts(ctx, pipeline)
}

// CountByExam groups nominations by exam name, sorted by count descending.
func (r *mongoNominationRepository) CountByExam(ctx context.Context) ([]repository.FieldCount, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$examName"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}}}},
	}
	return r.aggregateCounts(ctx, pipeline)
}

func (r *mongoNominationRepository) aggregateCounts(ctx context.Context, pipeline mongo.Pipeline) ([]repository.FieldCount, error) {
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	counts := []repository.FieldCount{}
	if err = cursor.All(ctx, &counts); err != nil {
		return nil, err
	}
	return counts, nil
}

// EnsureNominationIndexes creates necessary indexes for the nominations collection.
// Call this once during application startup. The unique userId index is what
// enforces one-submission-per-user under concurrent requests.
func EnsureNominationIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "status", Value: 1}},
			Options: options.Index(),
		},
		{
			// Backs the trailing-7-day statistics query
			Keys:    bson.D{{Key: "createdAt", Value: 1}},
			Options: options.Index(),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		// Index creation failure is not fatal here; the duplicate submit
		// check still runs at the service layer.
		// log.Printf("WARN: Failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}
