// File: database/repository/bill/crud.go
package billRepo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"curbside/models"
)

func (r *mongoBillRepo) Create(ctx context.Context, bill *models.Bill) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if bill.ID == "" {
		bill.ID = uuid.New().String()
	}
	bill.Status = models.BillOutstanding
	bill.CreatedAt = time.Now()

	if _, err := r.coll.InsertOne(ctx, bill); err != nil {
		return fmt.Errorf("failed to insert bill: %w", err)
	}
	return nil
}

func (r *mongoBillRepo) GetByID(ctx context.Context, id string) (*models.Bill, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var bill models.Bill
	err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&bill)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrBillNotFound
		}
		return nil, fmt.Errorf("find error: %w", err)
	}
	return &bill, nil
}

// MarkPaid is guarded on the outstanding status so a duplicated reconciliation
// cannot stamp paidAt twice.
func (r *mongoBillRepo) MarkPaid(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"id": id, "status": models.BillOutstanding}
	update := bson.M{"$set": bson.M{
		"status": models.BillPaid,
		"paidAt": time.Now(),
	}}

	if _, err := r.coll.UpdateOne(ctx, filter, update); err != nil {
		return fmt.Errorf("failed to mark bill %s paid: %w", id, err)
	}
	return nil
}

// EnsureIndexes creates the necessary indexes on the bills collection.
func (r *mongoBillRepo) EnsureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_id"),
		},
		{
			Keys:    bson.D{{Key: "residentId", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index().SetName("resident_status_idx"),
		},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexModels)
	if err != nil {
		return fmt.Errorf("failed to create bill indexes: %w", err)
	}
	return nil
}
