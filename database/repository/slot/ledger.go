// File: database/repository/slot/ledger.go
package slotRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Reserve takes one unit of capacity from the bucket. The capacity check and
// increment happen in a single conditional UpdateOne so two concurrent
// reservations against the last unit cannot both succeed.
func (r *mongoSlotRepo) Reserve(ctx context.Context, slotID string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"id":    slotID,
		"$expr": bson.M{"$lt": bson.A{"$capacityReserved", "$capacityTotal"}},
	}
	update := bson.M{
		"$inc": bson.M{
			"capacityReserved": 1,
			"version":          1,
		},
	}

	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to reserve slot %s: %w", slotID, err)
	}
	if res.MatchedCount == 0 {
		// Disambiguate a full bucket from a missing one.
		if err := r.coll.FindOne(ctx, bson.M{"id": slotID}).Err(); err != nil {
			if err == mongo.ErrNoDocuments {
				return ErrSlotNotFound
			}
			return fmt.Errorf("failed to inspect slot %s: %w", slotID, err)
		}
		return ErrCapacityExceeded
	}
	return nil
}

// Release returns one unit of capacity to the bucket. Releasing an unknown or
// already-empty bucket is a no-op, which keeps compensating releases and the
// expiry sweep safe to repeat.
func (r *mongoSlotRepo) Release(ctx context.Context, slotID string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"id":               slotID,
		"capacityReserved": bson.M{"$gt": 0},
	}
	update := bson.M{
		"$inc": bson.M{
			"capacityReserved": -1,
			"version":          1,
		},
	}

	if _, err := r.coll.UpdateOne(ctx, filter, update); err != nil {
		return fmt.Errorf("failed to release slot %s: %w", slotID, err)
	}
	return nil
}
