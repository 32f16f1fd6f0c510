// File: database/repository/slot/crud.go
package slotRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"curbside/models"
)

// EnsureBuckets lazily materializes generated buckets. Slot IDs are
// deterministic, so the $setOnInsert upsert never clobbers reserved counts on
// buckets that already exist.
func (r *mongoSlotRepo) EnsureBuckets(ctx context.Context, buckets []models.SlotBucket) error {
	if len(buckets) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	writes := make([]mongo.WriteModel, 0, len(buckets))
	for _, b := range buckets {
		writes = append(writes, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"id": b.ID}).
			SetUpdate(bson.M{"$setOnInsert": bson.M{
				"id":               b.ID,
				"itemPolicyId":     b.ItemPolicyID,
				"date":             b.Date,
				"start":            b.Start,
				"end":              b.End,
				"capacityTotal":    b.CapacityTotal,
				"capacityReserved": 0,
				"version":          0,
			}}).
			SetUpsert(true))
	}

	if _, err := r.coll.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(false)); err != nil {
		return fmt.Errorf("failed to ensure slot buckets: %w", err)
	}
	return nil
}

func (r *mongoSlotRepo) ListCandidates(ctx context.Context, itemPolicyID, date string, fromMinute int) ([]models.SlotBucket, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"itemPolicyId": itemPolicyID,
		"date":         date,
		"start":        bson.M{"$gt": fromMinute},
		"$expr":        bson.M{"$lt": bson.A{"$capacityReserved", "$capacityTotal"}},
	}
	cursor, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "start", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch slot buckets: %w", err)
	}
	defer cursor.Close(ctx)

	var buckets []models.SlotBucket
	if err := cursor.All(ctx, &buckets); err != nil {
		return nil, fmt.Errorf("error decoding slot buckets: %w", err)
	}
	return buckets, nil
}

func (r *mongoSlotRepo) GetByID(ctx context.Context, slotID string) (*models.SlotBucket, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var bucket models.SlotBucket
	err := r.coll.FindOne(ctx, bson.M{"id": slotID}).Decode(&bucket)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrSlotNotFound
		}
		return nil, fmt.Errorf("find error: %w", err)
	}
	return &bucket, nil
}
