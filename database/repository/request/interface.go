// File: database/repository/request/interface.go
package requestRepo

import (
	"context"
	"errors"
	"log"
	"time"

	"curbside/database"
	"curbside/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// ErrRequestNotFound signals a lookup against a request that does not exist.
var ErrRequestNotFound = errors.New("request not found")

// PaymentOutcome is the terminal payment state applied by a conditional
// transition.
type PaymentOutcome struct {
	Status        string
	PaymentStatus string
	PaidAt        *time.Time
	ReceiptURL    string
}

type RequestRepository interface {
	Create(ctx context.Context, req *models.Request) error
	GetByID(ctx context.Context, id string) (*models.Request, error)
	GetByPaymentRef(ctx context.Context, sessionID string) (*models.Request, error)
	ListByResident(ctx context.Context, residentID string) ([]models.Request, error)
	// ResolvePayment applies the outcome only while the request is still
	// payment-pending. Returns false when another caller already resolved it.
	ResolvePayment(ctx context.Context, id string, outcome PaymentOutcome) (bool, error)
	// CancelIfUnpaid flips an unpaid request to cancelled; returns false when
	// the request was already settled or cancelled.
	CancelIfUnpaid(ctx context.Context, id string) (bool, error)
	ListExpired(ctx context.Context, now time.Time) ([]models.Request, error)
}

type mongoRequestRepo struct {
	coll *mongo.Collection
}

// NewMongoRequestRepo constructs a new MongoDB RequestRepository.
func NewMongoRequestRepo() RequestRepository {
	db := database.MongoClient.Database("curbside")
	repo := &mongoRequestRepo{
		coll: db.Collection("requests"),
	}
	if err := repo.EnsureIndexes(); err != nil {
		log.Printf("request repo: index creation failed: %v", err)
	}
	return repo
}
