package scheduling

import (
	"context"
	"time"

	requestRepo "curbside/database/repository/request"
	slotRepo "curbside/database/repository/slot"
	"curbside/models"
	"curbside/services/billing"
	"curbside/services/payment"
	"curbside/services/policy"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// SchedulingService is the special-collection core: availability queries,
// capacity-safe confirmation and checkout reconciliation.
type SchedulingService interface {
	CheckAvailability(ctx context.Context, in AvailabilityInput) (*AvailabilityResult, error)
	ConfirmBooking(ctx context.Context, in ConfirmInput) (*ConfirmResult, error)
	SyncCheckoutSession(ctx context.Context, sessionID, residentID string) (*ReconciliationResult, error)
	ExpireOverdue(ctx context.Context, now time.Time) (int, error)
}

// AvailabilityInput is a read-only candidate-booking query.
type AvailabilityInput struct {
	ItemPolicyID  string    `json:"itemPolicyId"`
	Quantity      int       `json:"quantity"`
	WeightPerItem float64   `json:"weightPerItem"`
	PreferredDate time.Time `json:"preferredDate"`
}

// AvailabilityResult pairs candidate slots with a single payment quote. An
// empty slot list is a valid result, not an error.
type AvailabilityResult struct {
	Slots   []models.SlotCandidate `json:"slots"`
	Payment models.PaymentQuote    `json:"payment"`
}

// ConfirmInput carries a resident's chosen slot and payment decision.
type ConfirmInput struct {
	ResidentID    string  `json:"-"`
	ContactName   string  `json:"contactName"`
	ContactPhone  string  `json:"contactPhone"`
	Address       string  `json:"address"`
	ItemPolicyID  string  `json:"itemPolicyId"`
	Quantity      int     `json:"quantity"`
	WeightPerItem float64 `json:"weightPerItem"`
	SlotID        string  `json:"slotId"`
	PaymentChoice string  `json:"paymentChoice"` // "none", "payNow" or "payLater"
}

// ConfirmResult is the created request plus, for pay-now bookings, the hosted
// checkout URL the client must redirect to.
type ConfirmResult struct {
	Request     *models.Request `json:"request"`
	CheckoutURL string          `json:"checkoutUrl,omitempty"`
}

// ReconciliationResult reports the request state after syncing with the
// payment collaborator.
type ReconciliationResult struct {
	Request       *models.Request `json:"request"`
	PaymentStatus string          `json:"paymentStatus"`
}

// SlotConfig is the generation window for collection slots.
type SlotConfig struct {
	DaysAhead       int
	BucketMinutes   int
	DayStartMinute  int
	DayEndMinute    int
	ExcludeWeekends bool
	DefaultCapacity int
}

// SessionLocker is the subset of the redis client used to dedupe concurrent
// reconciliations of one checkout session.
type SessionLocker interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// DefaultSchedulingService implements SchedulingService.
type DefaultSchedulingService struct {
	Slots    slotRepo.SlotRepository
	Requests requestRepo.RequestRepository
	Policies policy.Provider
	Billing  billing.Service
	Gateway  payment.Gateway
	Lock     SessionLocker // optional; dedupes concurrent gateway polls
	Logger   *zap.Logger

	SlotCfg        SlotConfig
	TaxRatePercent float64
	Currency       string
	SuccessURL     string
	CancelURL      string

	// Now is overridable for tests; nil means time.Now.
	Now func() time.Time
}

func (s *DefaultSchedulingService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
