package scheduling

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	slotRepo "curbside/database/repository/slot"
	"curbside/models"
	"curbside/services/billing"
	"curbside/services/payment"
	"curbside/services/pricing"
)

// checkoutLifetime bounds how long a pay-now reservation may be held while the
// hosted checkout session is open; matches the session's own expiry.
const checkoutLifetime = 24 * time.Hour

// ConfirmBooking reserves capacity and persists the request. Order matters:
// validate, reserve, recompute the price server-side, then branch on the
// payment choice. Every failure after the reserve succeeds releases the slot
// before returning, so a failed confirmation never leaks capacity.
func (s *DefaultSchedulingService) ConfirmBooking(ctx context.Context, in ConfirmInput) (*ConfirmResult, error) {
	now := s.now()

	// Step 1: field validation, naming the first offending field.
	pol, slot, err := s.validateConfirm(ctx, in, now)
	if err != nil {
		return nil, err
	}

	// Step 2: recompute payment; never trust a client-supplied amount.
	quote, err := pricing.Compute(*pol, in.Quantity, in.WeightPerItem, s.TaxRatePercent)
	if err != nil {
		return nil, NewValidationError("weightPerItem", err.Error())
	}
	if err := validatePaymentChoice(in.PaymentChoice, quote); err != nil {
		return nil, err
	}

	// Step 3: atomic reserve. Losing the race is SlotUnavailable, the caller
	// must re-run availability.
	if err := s.Slots.Reserve(ctx, in.SlotID); err != nil {
		if errors.Is(err, slotRepo.ErrCapacityExceeded) || errors.Is(err, slotRepo.ErrSlotNotFound) {
			return nil, NewSlotUnavailable(in.SlotID)
		}
		return nil, fmt.Errorf("reserve failed: %w", err)
	}

	result, err := s.persistBooking(ctx, in, pol, slot, quote, now)
	if err != nil {
		// Compensating release: the reservation must not outlive the failure.
		if relErr := s.Slots.Release(ctx, in.SlotID); relErr != nil {
			s.Logger.Error("Compensating release failed",
				zap.String("slotID", in.SlotID), zap.Error(relErr))
		}
		return nil, err
	}
	return result, nil
}

func (s *DefaultSchedulingService) validateConfirm(ctx context.Context, in ConfirmInput, now time.Time) (*models.ItemPolicy, *models.SlotBucket, error) {
	if in.ResidentID == "" {
		return nil, nil, NewValidationError("residentId", "resident identity is required")
	}
	if in.ContactName == "" {
		return nil, nil, NewValidationError("contactName", "contact name is required")
	}
	if in.ContactPhone == "" {
		return nil, nil, NewValidationError("contactPhone", "contact phone is required")
	}
	if in.Address == "" {
		return nil, nil, NewValidationError("address", "collection address is required")
	}
	if in.ItemPolicyID == "" {
		return nil, nil, NewValidationError("itemPolicyId", "item policy is required")
	}
	if in.Quantity < 1 {
		return nil, nil, NewValidationError("quantity", "quantity must be at least 1")
	}
	if in.WeightPerItem <= 0 {
		return nil, nil, NewValidationError("weightPerItem", "weight per item must be greater than zero")
	}
	if in.SlotID == "" {
		return nil, nil, NewValidationError("slotId", "slot is required")
	}

	pol, err := s.Policies.Get(in.ItemPolicyID)
	if err != nil {
		return nil, nil, NewValidationError("itemPolicyId", err.Error())
	}
	if !pol.Allow {
		return nil, nil, NewPolicyDisallowed(pol.ID)
	}

	slot, err := s.Slots.GetByID(ctx, in.SlotID)
	if err != nil {
		if errors.Is(err, slotRepo.ErrSlotNotFound) {
			return nil, nil, NewSlotUnavailable(in.SlotID)
		}
		return nil, nil, fmt.Errorf("slot lookup failed: %w", err)
	}
	if slot.ItemPolicyID != pol.ID {
		return nil, nil, NewValidationError("slotId", "slot belongs to a different item policy")
	}

	startAt, err := slotStartTime(slot.Date, slot.Start)
	if err != nil {
		return nil, nil, fmt.Errorf("malformed slot date %q: %w", slot.Date, err)
	}
	if !startAt.After(now) {
		return nil, nil, NewValidationError("slotId", "slot start time is in the past")
	}
	if !withinLookahead(s.SlotCfg, now, startAt) {
		return nil, nil, NewValidationError("slotId",
			fmt.Sprintf("slot must be within the next %d days", s.SlotCfg.DaysAhead))
	}
	return pol, slot, nil
}

func validatePaymentChoice(choice string, quote models.PaymentQuote) error {
	switch choice {
	case models.PayChoiceNone:
		if quote.Required {
			return NewValidationError("paymentChoice", "this booking requires payment")
		}
	case models.PayChoiceNow, models.PayChoiceLater:
		if !quote.Required {
			return NewValidationError("paymentChoice", "no payment is due for this booking")
		}
	default:
		return NewValidationError("paymentChoice", "must be one of none, payNow, payLater")
	}
	return nil
}

// persistBooking runs after a successful reserve; any error bubbles up to the
// compensating release in ConfirmBooking.
func (s *DefaultSchedulingService) persistBooking(
	ctx context.Context,
	in ConfirmInput,
	pol *models.ItemPolicy,
	slot *models.SlotBucket,
	quote models.PaymentQuote,
	now time.Time,
) (*ConfirmResult, error) {
	startAt, err := slotStartTime(slot.Date, slot.Start)
	if err != nil {
		return nil, fmt.Errorf("malformed slot date %q: %w", slot.Date, err)
	}

	req := &models.Request{
		ID:            uuid.New().String(),
		ResidentID:    in.ResidentID,
		ContactName:   in.ContactName,
		ContactPhone:  in.ContactPhone,
		Address:       in.Address,
		ItemPolicyID:  pol.ID,
		Quantity:      in.Quantity,
		WeightPerItem: in.WeightPerItem,
		SlotID:        slot.ID,
		SlotDate:      slot.Date,
		SlotStart:     slot.Start,
		PaymentAmount: quote.Amount,
	}

	var checkoutURL string
	switch in.PaymentChoice {
	case models.PayChoiceNone:
		req.Status = models.StatusScheduled
		req.PaymentStatus = models.PaymentNotRequired

	case models.PayChoiceNow:
		sess, err := s.Gateway.CreateCheckoutSession(ctx, payment.CreateSessionInput{
			RequestID:   req.ID,
			Amount:      quote.Amount,
			Currency:    s.Currency,
			Description: fmt.Sprintf("Special collection: %s x%d on %s", pol.Label, in.Quantity, slot.Date),
			SuccessURL:  s.SuccessURL,
			CancelURL:   s.CancelURL,
		})
		if err != nil {
			return nil, NewPaymentProviderError(err)
		}
		req.Status = models.StatusPendingPayment
		req.PaymentStatus = models.PaymentPending
		req.PaymentRequired = true
		req.PaymentReference = sess.SessionID
		// The reservation is held no longer than the checkout session itself,
		// and never past the slot it is for.
		dueAt := now.Add(checkoutLifetime)
		if startAt.Before(dueAt) {
			dueAt = startAt
		}
		req.PaymentDueAt = &dueAt
		checkoutURL = sess.CheckoutURL

	case models.PayChoiceLater:
		billID, err := s.Billing.CreateOutstandingBill(ctx, billing.CreateBillInput{
			ResidentID:  in.ResidentID,
			RequestID:   req.ID,
			Amount:      quote.Amount,
			Currency:    s.Currency,
			Description: fmt.Sprintf("Special collection: %s x%d on %s", pol.Label, in.Quantity, slot.Date),
			DueAt:       startAt,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create outstanding bill: %w", err)
		}
		req.Status = models.StatusScheduled
		req.PaymentStatus = models.PaymentPending
		req.PaymentRequired = true
		req.BillingID = billID
		req.PaymentDueAt = &startAt
	}

	if err := s.Requests.Create(ctx, req); err != nil {
		if req.BillingID != "" {
			s.Logger.Warn("Request persist failed after bill creation; bill is orphaned",
				zap.String("billID", req.BillingID), zap.Error(err))
		}
		return nil, fmt.Errorf("failed to persist request: %w", err)
	}

	s.Logger.Info("Booking confirmed",
		zap.String("requestID", req.ID),
		zap.String("slotID", slot.ID),
		zap.String("status", req.Status),
		zap.String("paymentStatus", req.PaymentStatus),
		zap.Int64("amount", quote.Amount))

	return &ConfirmResult{Request: req, CheckoutURL: checkoutURL}, nil
}
