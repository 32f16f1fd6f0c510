// File: database/repository/request/transitions.go
package requestRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"curbside/models"
)

// ResolvePayment flips a payment-pending request to its terminal state. The
// filter guards on paymentStatus so concurrent reconciliations of the same
// session resolve exactly once; MatchedCount==0 means someone else won.
func (r *mongoRequestRepo) ResolvePayment(ctx context.Context, id string, outcome PaymentOutcome) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"id":            id,
		"paymentStatus": models.PaymentPending,
	}
	set := bson.M{
		"status":        outcome.Status,
		"paymentStatus": outcome.PaymentStatus,
		"updatedAt":     time.Now(),
	}
	if outcome.PaidAt != nil {
		set["paidAt"] = *outcome.PaidAt
	}
	if outcome.ReceiptURL != "" {
		set["receiptUrl"] = outcome.ReceiptURL
	}

	res, err := r.coll.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return false, fmt.Errorf("failed to resolve payment for request %s: %w", id, err)
	}
	return res.MatchedCount > 0, nil
}

// CancelIfUnpaid cancels a request whose payment never settled. Guarded the
// same way as ResolvePayment so the sweep and a racing reconciliation cannot
// both release the slot.
func (r *mongoRequestRepo) CancelIfUnpaid(ctx context.Context, id string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"id":            id,
		"paymentStatus": models.PaymentPending,
	}
	update := bson.M{"$set": bson.M{
		"status":        models.StatusCancelled,
		"paymentStatus": models.PaymentFailed,
		"updatedAt":     time.Now(),
	}}

	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("failed to cancel request %s: %w", id, err)
	}
	return res.MatchedCount > 0, nil
}

// ListExpired returns unpaid requests whose payment deadline has passed:
// deferred bookings past paymentDueAt and pay-now bookings whose checkout
// session aged out.
func (r *mongoRequestRepo) ListExpired(ctx context.Context, now time.Time) ([]models.Request, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"paymentStatus": models.PaymentPending,
		"paymentDueAt":  bson.M{"$lt": now},
	}
	cursor, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch expired requests: %w", err)
	}
	defer cursor.Close(ctx)

	var reqs []models.Request
	if err := cursor.All(ctx, &reqs); err != nil {
		return nil, fmt.Errorf("error decoding expired requests: %w", err)
	}
	return reqs, nil
}
