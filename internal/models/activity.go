package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Actions recorded in the activity feed after successful mutations.
const (
	ActionTopicCreated = "topic_created"
	ActionEntryCreated = "entry_created"
	ActionEntryUpdated = "entry_updated"
	ActionEntryDeleted = "entry_deleted"
)

// ActivityEvent is a single audit record stored in MongoDB.
type ActivityEvent struct {
	ID        primitive.ObjectID `json:"id"                 bson:"_id,omitempty"`
	UserID    string             `json:"user_id"            bson:"user_id"`
	Action    string             `json:"action"             bson:"action"`
	TopicID   string             `json:"topic_id,omitempty" bson:"topic_id,omitempty"`
	EntryID   string             `json:"entry_id,omitempty" bson:"entry_id,omitempty"`
	Text      string             `json:"text,omitempty"     bson:"text,omitempty"`
	CreatedAt time.Time          `json:"created_at"         bson:"created_at"`
}
