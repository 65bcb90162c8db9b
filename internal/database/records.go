package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mx-space/summarizer/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type duplicateError struct{}

func (duplicateError) Error() string   { return "duplicate summary record" }
func (duplicateError) Duplicate() bool { return true }

// ErrDuplicate is wrapped by Insert when a record with the same hash exists.
var ErrDuplicate error = duplicateError{}

// RecordStore queries and appends summary records.
type RecordStore struct {
	coll *mongo.Collection
	now  func() time.Time
}

func NewRecordStore(coll *mongo.Collection) *RecordStore {
	return &RecordStore{coll: coll, now: time.Now}
}

// FindByHash returns the record whose normalized_hash or hash equals digest.
func (s *RecordStore) FindByHash(ctx context.Context, digest string) (*models.SummaryRecord, error) {
	return s.findOne(ctx, hashFilter(digest), nil)
}

// FindRecent returns the newest record of category with a word count inside [min, max].
func (s *RecordStore) FindRecent(ctx context.Context, category string, min, max int) (*models.SummaryRecord, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})
	return s.findOne(ctx, recentFilter(category, min, max), opts)
}

// SearchText runs a full-text search restricted to word counts inside [min, max].
func (s *RecordStore) SearchText(ctx context.Context, query string, min, max int) (*models.SummaryRecord, error) {
	if query == "" {
		return nil, nil
	}
	return s.findOne(ctx, textFilter(query, min, max), nil)
}

// Insert appends a record. CreatedAt and ID are filled when unset.
func (s *RecordStore) Insert(ctx context.Context, record *models.SummaryRecord) error {
	if record.CreatedAt.IsZero() {
		record.CreatedAt = s.now().UTC()
	}
	res, err := s.coll.InsertOne(ctx, record)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %s", ErrDuplicate, record.Hash)
		}
		return fmt.Errorf("insert summary record: %w", err)
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		record.ID = id
	}
	return nil
}

func (s *RecordStore) findOne(ctx context.Context, filter bson.D, opts *options.FindOneOptions) (*models.SummaryRecord, error) {
	var record models.SummaryRecord
	var res *mongo.SingleResult
	if opts != nil {
		res = s.coll.FindOne(ctx, filter, opts)
	} else {
		res = s.coll.FindOne(ctx, filter)
	}
	if err := res.Decode(&record); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("find summary record: %w", err)
	}
	return &record, nil
}

func hashFilter(digest string) bson.D {
	return bson.D{{Key: "$or", Value: bson.A{
		bson.D{{Key: "normalized_hash", Value: digest}},
		bson.D{{Key: "hash", Value: digest}},
	}}}
}

func wordCountRange(min, max int) bson.D {
	return bson.D{
		{Key: "$gte", Value: min},
		{Key: "$lte", Value: max},
	}
}

func recentFilter(category string, min, max int) bson.D {
	return bson.D{
		{Key: "category", Value: category},
		{Key: "word_count", Value: wordCountRange(min, max)},
	}
}

func textFilter(query string, min, max int) bson.D {
	return bson.D{
		{Key: "$text", Value: bson.D{{Key: "$search", Value: query}}},
		{Key: "word_count", Value: wordCountRange(min, max)},
	}
}
