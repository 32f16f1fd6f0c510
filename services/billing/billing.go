package billing

import (
	"context"
	"fmt"
	"time"

	billRepo "curbside/database/repository/bill"
	"curbside/models"

	"go.uber.org/zap"
)

// Service is the billing collaborator consumed by the booking flow.
type Service interface {
	CreateOutstandingBill(ctx context.Context, in CreateBillInput) (string, error)
	MarkBillPaid(ctx context.Context, billID string) error
}

// CreateBillInput describes the obligation recorded for a deferred booking.
type CreateBillInput struct {
	ResidentID  string
	RequestID   string
	Amount      int64 // minor currency units
	Currency    string
	Description string
	DueAt       time.Time
}

// DefaultBillingService persists bills through the bill repository.
type DefaultBillingService struct {
	Repo   billRepo.BillRepository
	Logger *zap.Logger
}

func (s *DefaultBillingService) CreateOutstandingBill(ctx context.Context, in CreateBillInput) (string, error) {
	bill := &models.Bill{
		ResidentID:  in.ResidentID,
		RequestID:   in.RequestID,
		Amount:      in.Amount,
		Currency:    in.Currency,
		Description: in.Description,
		DueAt:       in.DueAt,
	}
	if err := s.Repo.Create(ctx, bill); err != nil {
		return "", fmt.Errorf("failed to create outstanding bill: %w", err)
	}

	s.Logger.Info("Created outstanding bill",
		zap.String("billID", bill.ID),
		zap.String("requestID", in.RequestID),
		zap.Int64("amount", in.Amount))
	return bill.ID, nil
}

func (s *DefaultBillingService) MarkBillPaid(ctx context.Context, billID string) error {
	if err := s.Repo.MarkPaid(ctx, billID); err != nil {
		return fmt.Errorf("failed to mark bill paid: %w", err)
	}
	s.Logger.Info("Marked bill paid", zap.String("billID", billID))
	return nil
}
