package services

import (
	"context"
	"sync"
	"time"

	"github.com/AnshRaj112/salvioris-journal/internal/models"
	"github.com/AnshRaj112/salvioris-journal/pkg/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const activityCollection = "activities"

// ActivityRecorder receives user activity events. Record must not block the
// request that produced the event.
type ActivityRecorder interface {
	Record(ctx context.Context, a models.Activity)
}

// NopActivity drops every event.
type NopActivity struct{}

func (NopActivity) Record(context.Context, models.Activity) {}

// MongoActivityLog writes events to MongoDB in the background.
type MongoActivityLog struct {
	col *mongo.Collection
	log logger.Logger
	wg  sync.WaitGroup
}

// NewMongoActivityLog stores events in the activities collection of db.
func NewMongoActivityLog(db *mongo.Database, log logger.Logger) *MongoActivityLog {
	if log == nil {
		log = logger.NewNop()
	}
	return &MongoActivityLog{col: db.Collection(activityCollection), log: log}
}

// EnsureIndexes configures indexes for the activities collection.
// Called on startup from main after Mongo has connected.
func (l *MongoActivityLog) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "created_at", Value: -1},
			},
			Options: options.Index().SetName("idx_user_created"),
		},
		{
			Keys:    bson.D{{Key: "kind", Value: 1}},
			Options: options.Index().SetName("idx_kind"),
		},
	}

	_, err := l.col.Indexes().CreateMany(ctx, indexes)
	return err
}

// Record saves the event asynchronously. The caller does not wait.
func (l *MongoActivityLog) Record(ctx context.Context, a models.Activity) {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	requestID := logger.RequestID(ctx)

	l.wg.Add(1)
	go func(a models.Activity) {
		defer l.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		ctx = logger.WithRequestID(ctx, requestID)

		if _, err := l.col.InsertOne(ctx, a); err != nil {
			l.log.Warn(ctx, "activity not recorded", "kind", string(a.Kind), "error", err)
		}
	}(a)
}

// Wait blocks until pending writes have finished.
func (l *MongoActivityLog) Wait() {
	l.wg.Wait()
}

// MemoryActivityLog keeps events in a slice.
type MemoryActivityLog struct {
	mu     sync.Mutex
	events []models.Activity
}

func (l *MemoryActivityLog) Record(_ context.Context, a models.Activity) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, a)
}

// Events returns a copy of the recorded events.
func (l *MemoryActivityLog) Events() []models.Activity {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]models.Activity(nil), l.events...)
}

// Kinds lists recorded event kinds in order.
func (l *MemoryActivityLog) Kinds() []models.ActivityKind {
	l.mu.Lock()
	defer l.mu.Unlock()
	kinds := make([]models.ActivityKind, 0, len(l.events))
	for _, e := range l.events {
		kinds = append(kinds, e.Kind)
	}
	return kinds
}
