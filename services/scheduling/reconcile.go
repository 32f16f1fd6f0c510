package scheduling

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	requestRepo "curbside/database/repository/request"
	"curbside/models"
)

// reconcileLockTTL bounds the dedupe lock around gateway polls. Correctness
// does not depend on it; the guarded status transition does the real work.
const reconcileLockTTL = 15 * time.Second

// SyncCheckoutSession reconciles a checkout session's outcome into the linked
// request. Idempotent: a session that is already resolved returns the stored
// result without re-running side effects, and the underlying transition is
// conditional on the request still being payment-pending, so the return
// redirect and a webhook racing each other settle it exactly once.
func (s *DefaultSchedulingService) SyncCheckoutSession(ctx context.Context, sessionID, residentID string) (*ReconciliationResult, error) {
	if sessionID == "" {
		return nil, NewValidationError("sessionId", "session id is required")
	}

	req, err := s.Requests.GetByPaymentRef(ctx, sessionID)
	if err != nil {
		if errors.Is(err, requestRepo.ErrRequestNotFound) {
			return nil, NewSessionNotFound(sessionID)
		}
		return nil, err
	}
	if residentID != "" && req.ResidentID != residentID {
		return nil, NewAccessDenied()
	}

	// Already resolved: return the stored outcome.
	if req.PaymentStatus != models.PaymentPending {
		return &ReconciliationResult{Request: req, PaymentStatus: req.PaymentStatus}, nil
	}

	if s.Lock != nil {
		acquired, err := s.Lock.SetNX(ctx, "reconcile:"+sessionID, "1", reconcileLockTTL).Result()
		if err == nil {
			if !acquired {
				// Another sync is in flight; report the current state and let
				// the caller poll again.
				return &ReconciliationResult{Request: req, PaymentStatus: req.PaymentStatus}, nil
			}
			// Only the holder may delete the lock; a SetNX error above means
			// we proceed unlocked and must leave any held lock alone.
			defer s.Lock.Del(context.Background(), "reconcile:"+sessionID)
		}
	}

	status, err := s.Gateway.GetSessionStatus(ctx, sessionID)
	if err != nil {
		return nil, NewPaymentProviderError(err)
	}

	switch status.PaymentStatus {
	case "success":
		paidAt := s.now()
		applied, err := s.Requests.ResolvePayment(ctx, req.ID, requestRepo.PaymentOutcome{
			Status:        models.StatusScheduled,
			PaymentStatus: models.PaymentSuccess,
			PaidAt:        &paidAt,
			ReceiptURL:    status.ReceiptURL,
		})
		if err != nil {
			return nil, err
		}
		if applied && req.BillingID != "" {
			if err := s.Billing.MarkBillPaid(ctx, req.BillingID); err != nil {
				s.Logger.Error("Failed to mark bill paid after successful checkout",
					zap.String("billID", req.BillingID), zap.Error(err))
			}
		}
		if applied {
			s.Logger.Info("Checkout reconciled: success",
				zap.String("requestID", req.ID), zap.String("sessionID", sessionID))
		}

	case "failed", "cancelled", "expired":
		terminal := models.StatusPaymentFailed
		if status.PaymentStatus != "failed" {
			terminal = models.StatusCancelled
		}
		applied, err := s.Requests.ResolvePayment(ctx, req.ID, requestRepo.PaymentOutcome{
			Status:        terminal,
			PaymentStatus: models.PaymentFailed,
		})
		if err != nil {
			return nil, err
		}
		// Release only when this call won the transition, so duplicate syncs
		// cannot free the slot twice.
		if applied {
			if err := s.Slots.Release(ctx, req.SlotID); err != nil {
				s.Logger.Error("Failed to release slot after payment failure",
					zap.String("slotID", req.SlotID), zap.Error(err))
			}
			s.Logger.Info("Checkout reconciled: not paid",
				zap.String("requestID", req.ID),
				zap.String("sessionID", sessionID),
				zap.String("outcome", status.PaymentStatus))
		}

	case "pending":
		// No mutation; the caller should retry later.
		return &ReconciliationResult{Request: req, PaymentStatus: models.PaymentPending}, nil

	default:
		// Malformed provider data must not be mistaken for a settled outcome.
		return nil, NewPaymentProviderError(fmt.Errorf("unrecognized session status %q", status.PaymentStatus))
	}

	updated, err := s.Requests.GetByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	return &ReconciliationResult{Request: updated, PaymentStatus: updated.PaymentStatus}, nil
}

// ExpireOverdue cancels unpaid requests whose deadline passed and releases
// their slots. Run periodically by the background sweep; every step is safe to
// repeat.
func (s *DefaultSchedulingService) ExpireOverdue(ctx context.Context, now time.Time) (int, error) {
	overdue, err := s.Requests.ListExpired(ctx, now)
	if err != nil {
		return 0, err
	}

	expired := 0
	for _, req := range overdue {
		cancelled, err := s.Requests.CancelIfUnpaid(ctx, req.ID)
		if err != nil {
			s.Logger.Error("Expiry sweep: cancel failed",
				zap.String("requestID", req.ID), zap.Error(err))
			continue
		}
		if !cancelled {
			// Settled or cancelled while the sweep was running.
			continue
		}
		if err := s.Slots.Release(ctx, req.SlotID); err != nil {
			s.Logger.Error("Expiry sweep: slot release failed",
				zap.String("slotID", req.SlotID), zap.Error(err))
		}
		expired++
	}

	if expired > 0 {
		s.Logger.Info("Expiry sweep released overdue reservations", zap.Int("count", expired))
	}
	return expired, nil
}
