// File: database/repository/slot/interface.go
package slotRepo

import (
	"context"
	"errors"
	"log"

	"curbside/database"
	"curbside/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// ErrCapacityExceeded signals that a reserve attempt lost the race for the
// bucket's last remaining unit.
var ErrCapacityExceeded = errors.New("slot capacity exceeded")

// ErrSlotNotFound signals a reserve attempt against a bucket that was never
// generated.
var ErrSlotNotFound = errors.New("slot not found")

type SlotRepository interface {
	EnsureBuckets(ctx context.Context, buckets []models.SlotBucket) error
	// ListCandidates returns buckets with remaining capacity that start
	// strictly after fromMinute; pass a negative fromMinute for a whole day.
	ListCandidates(ctx context.Context, itemPolicyID, date string, fromMinute int) ([]models.SlotBucket, error)
	GetByID(ctx context.Context, slotID string) (*models.SlotBucket, error)
	Reserve(ctx context.Context, slotID string) error
	Release(ctx context.Context, slotID string) error
}

type mongoSlotRepo struct {
	coll *mongo.Collection
}

// NewMongoSlotRepo constructs a new MongoDB SlotRepository.
func NewMongoSlotRepo() SlotRepository {
	db := database.MongoClient.Database("curbside")
	repo := &mongoSlotRepo{
		coll: db.Collection("slots"),
	}
	if err := repo.EnsureIndexes(); err != nil {
		log.Printf("slot repo: index creation failed: %v", err)
	}
	return repo
}
