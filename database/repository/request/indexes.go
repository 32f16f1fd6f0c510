// FILE: database/repository/request/indexes.go
package requestRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the necessary indexes on the requests collection.
func (r *mongoRequestRepo) EnsureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_id"),
		},
		// Checkout session lookups during reconciliation.
		{
			Keys:    bson.D{{Key: "paymentReference", Value: 1}},
			Options: options.Index().SetSparse(true).SetName("payment_ref_idx"),
		},
		{
			Keys:    bson.D{{Key: "residentId", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("resident_created_idx"),
		},
		// Expiry sweep scan.
		{
			Keys:    bson.D{{Key: "paymentStatus", Value: 1}, {Key: "paymentDueAt", Value: 1}},
			Options: options.Index().SetName("payment_due_idx"),
		},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexModels)
	if err != nil {
		return fmt.Errorf("failed to create request indexes: %w", err)
	}
	return nil
}
