package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/nkazmina/learning-log/backend/internal/models"
)

// ActivityStore keeps the append-only activity feed in MongoDB.
type ActivityStore struct {
	col *mongo.Collection
}

func NewActivityStore(db *mongo.Database) *ActivityStore {
	return &ActivityStore{col: db.Collection("activity")}
}

// Insert appends one activity event. The event's CreatedAt is set here.
func (s *ActivityStore) Insert(ctx context.Context, ev *models.ActivityEvent) error {
	ev.CreatedAt = time.Now()
	if _, err := s.col.InsertOne(ctx, ev); err != nil {
		return fmt.Errorf("activity insert: %w", err)
	}
	return nil
}

// ListByUser returns a user's most recent events, newest first.
func (s *ActivityStore) ListByUser(ctx context.Context, userID string, limit int64) ([]models.ActivityEvent, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit)
	cur, err := s.col.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("activity list: %w", err)
	}
	defer cur.Close(ctx)

	var events []models.ActivityEvent
	if err := cur.All(ctx, &events); err != nil {
		return nil, fmt.Errorf("activity list: %w", err)
	}
	return events, nil
}
