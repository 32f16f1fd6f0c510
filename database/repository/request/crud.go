// File: database/repository/request/crud.go
package requestRepo

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

func (r *mongoRequestRepo) Create(ctx context.Context, req *models.Request) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if req.ID == "" {
		req.ID = uuid.New().String()
	}
	now := time.Now()
	req.CreatedAt = now
	req.UpdatedAt = now

	if _, err := r.coll.InsertOne(ctx, req); err != nil {
		return fmt.Errorf("failed to insert request: %w", err)
	}
	return nil
}

func (r *mongoRequestRepo) GetByID(ctx context.Context, id string) (*models.Request, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var req models.Request
	err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&req)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrRequestNotFound
		}
		return nil, fmt.Errorf("find error: %w", err)
	}
	return &req, nil
}

func (r *mongoRequestRepo) GetByPaymentRef(ctx context.Context, sessionID string) (*models.Request, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var req models.Request
	err := r.coll.FindOne(ctx, bson.M{"paymentReference": sessionID}).Decode(&req)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrRequestNotFound
		}
		return nil, fmt.Errorf("find error: %w", err)
	}
	return &req, nil
}

func (r *mongoRequestRepo) ListByResident(ctx context.Context, residentID string) ([]models.Request, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cursor, err := r.coll.Find(ctx, bson.M{"residentId": residentID},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch requests: %w", err)
	}
	defer cursor.Close(ctx)

	var reqs []models.Request
	if err := cursor.All(ctx, &reqs); err != nil {
		return nil, fmt.Errorf("error decoding requests: %w", err)
	}
	return reqs, nil
}
