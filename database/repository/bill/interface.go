// File: database/repository/bill/interface.go
package billRepo

import (
	"context"
	"errors"
	"log"

	"curbside/database"
	"curbside/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// ErrBillNotFound signals a lookup against a bill that does not exist.
var ErrBillNotFound = errors.New("bill not found")

type BillRepository interface {
	Create(ctx context.Context, bill *models.Bill) error
	GetByID(ctx context.Context, id string) (*models.Bill, error)
	// MarkPaid flips an outstanding bill to paid; repeating it is a no-op.
	MarkPaid(ctx context.Context, id string) error
}

type mongoBillRepo struct {
	coll *mongo.Collection
}

// NewMongoBillRepo constructs a new MongoDB BillRepository.
func NewMongoBillRepo() BillRepository {
	db := database.MongoClient.Database("curbside")
	repo := &mongoBillRepo{
		coll: db.Collection("bills"),
	}
	if err := repo.EnsureIndexes(); err != nil {
		log.Printf("bill repo: index creation failed: %v", err)
	}
	return repo
}
