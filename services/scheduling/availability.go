package scheduling

import (
	"context"
	"fmt"

	"curbside/models"
	"curbside/services/pricing"

	"go.uber.org/zap"
)

// CheckAvailability answers "which slots could this booking take, and what
// would it cost". Read-only: it materializes the day's buckets but never
// reserves. The returned quote is identical for every slot because price
// depends only on item and weight.
func (s *DefaultSchedulingService) CheckAvailability(ctx context.Context, in AvailabilityInput) (*AvailabilityResult, error) {
	if in.ItemPolicyID == "" {
		return nil, NewValidationError("itemPolicyId", "item policy is required")
	}
	if in.Quantity < 1 {
		return nil, NewValidationError("quantity", "quantity must be at least 1")
	}
	if in.WeightPerItem <= 0 {
		return nil, NewValidationError("weightPerItem", "weight per item must be greater than zero")
	}
	if in.PreferredDate.IsZero() {
		return nil, NewValidationError("preferredDate", "preferred date is required")
	}

	pol, err := s.Policies.Get(in.ItemPolicyID)
	if err != nil {
		return nil, NewValidationError("itemPolicyId", err.Error())
	}
	if !pol.Allow {
		return nil, NewPolicyDisallowed(pol.ID)
	}

	now := s.now()
	if !withinLookahead(s.SlotCfg, now, in.PreferredDate) {
		return nil, NewValidationError("preferredDate",
			fmt.Sprintf("date must be within the next %d days", s.SlotCfg.DaysAhead))
	}

	quote, err := pricing.Compute(*pol, in.Quantity, in.WeightPerItem, s.TaxRatePercent)
	if err != nil {
		return nil, NewValidationError("weightPerItem", err.Error())
	}

	buckets := buildDayBuckets(s.SlotCfg, pol.ID, in.PreferredDate)
	if len(buckets) == 0 {
		// Excluded day: no capacity, still a valid answer.
		return &AvailabilityResult{Slots: []models.SlotCandidate{}, Payment: quote}, nil
	}
	if err := s.Slots.EnsureBuckets(ctx, buckets); err != nil {
		return nil, fmt.Errorf("failed to materialize slot buckets: %w", err)
	}

	// Same-day queries only offer buckets that have not started yet, matching
	// the confirmation rule that a slot's start must still be in the future.
	fromMinute := -1
	dateStr := in.PreferredDate.Format("2006-01-02")
	if dateStr == now.Format("2006-01-02") {
		fromMinute = minuteOfDay(now)
	}

	found, err := s.Slots.ListCandidates(ctx, pol.ID, dateStr, fromMinute)
	if err != nil {
		return nil, fmt.Errorf("failed to list slot candidates: %w", err)
	}

	candidates := make([]models.SlotCandidate, 0, len(found))
	for _, b := range found {
		candidates = append(candidates, models.SlotCandidate{
			ID:        b.ID,
			Date:      b.Date,
			Start:     b.Start,
			End:       b.End,
			Remaining: b.Remaining(),
		})
	}

	s.Logger.Debug("Availability computed",
		zap.String("policy", pol.ID),
		zap.String("date", dateStr),
		zap.Int("slots", len(candidates)))

	return &AvailabilityResult{Slots: candidates, Payment: quote}, nil
}
