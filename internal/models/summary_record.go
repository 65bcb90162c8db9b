package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SummaryRecord is a durable cache entry.
// Collection: summary_cache
type SummaryRecord struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"   json:"id"`
	Hash           string             `bson:"hash"            json:"hash"`
	NormalizedHash string             `bson:"normalized_hash" json:"normalized_hash"`
	OriginalText   string             `bson:"original_text"   json:"original_text"`
	NormalizedText string             `bson:"normalized_text" json:"normalized_text"`
	Category       string             `bson:"category"        json:"category"`
	WordCount      int                `bson:"word_count"      json:"word_count"`
	Summary        string             `bson:"summary"         json:"summary"`
	CreatedAt      time.Time          `bson:"created_at"      json:"created_at"`
}

// SummaryRecordCollection is the default collection name.
const SummaryRecordCollection = "summary_cache"
