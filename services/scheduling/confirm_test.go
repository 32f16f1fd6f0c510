package scheduling

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"curbside/models"
)

func confirmInput(slotID string) ConfirmInput {
	return ConfirmInput{
		ResidentID:    "res-1",
		ContactName:   "Ada Resident",
		ContactPhone:  "+15550100",
		Address:       "12 Elm Street",
		ItemPolicyID:  "furniture",
		Quantity:      2,
		WeightPerItem: 25,
		SlotID:        slotID,
		PaymentChoice: models.PayChoiceNow,
	}
}

func TestConfirmZeroCostBooking(t *testing.T) {
	env := newTestEnv()
	slotID := env.seedSlot("garden-waste", "2026-09-02", 480, 4)

	in := confirmInput(slotID)
	in.ItemPolicyID = "garden-waste"
	in.Quantity = 1
	in.WeightPerItem = 20 // below the 30kg free threshold
	in.PaymentChoice = models.PayChoiceNone

	res, err := env.svc.ConfirmBooking(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, models.StatusScheduled, res.Request.Status)
	assert.Equal(t, models.PaymentNotRequired, res.Request.PaymentStatus)
	assert.False(t, res.Request.PaymentRequired)
	assert.Equal(t, int64(0), res.Request.PaymentAmount)
	assert.Empty(t, res.CheckoutURL)
	assert.Equal(t, 1, env.slots.reserved(slotID))
}

func TestConfirmPayNow(t *testing.T) {
	env := newTestEnv()
	slotID := env.seedSlot("furniture", "2026-09-02", 480, 4)

	res, err := env.svc.ConfirmBooking(context.Background(), confirmInput(slotID))
	require.NoError(t, err)

	req := res.Request
	assert.Equal(t, models.StatusPendingPayment, req.Status)
	assert.Equal(t, models.PaymentPending, req.PaymentStatus)
	assert.True(t, req.PaymentRequired)
	assert.Equal(t, int64(2575), req.PaymentAmount)
	assert.NotEmpty(t, req.PaymentReference)
	assert.NotEmpty(t, res.CheckoutURL)
	require.NotNil(t, req.PaymentDueAt)
	// Held no longer than the slot start (which is nearer than the session expiry).
	startAt, _ := slotStartTime("2026-09-02", 480)
	assert.Equal(t, startAt, *req.PaymentDueAt)
	assert.Equal(t, 1, env.slots.reserved(slotID))
}

func TestConfirmPayLaterCreatesBill(t *testing.T) {
	env := newTestEnv()
	slotID := env.seedSlot("furniture", "2026-09-02", 600, 4)

	in := confirmInput(slotID)
	in.PaymentChoice = models.PayChoiceLater

	res, err := env.svc.ConfirmBooking(context.Background(), in)
	require.NoError(t, err)

	req := res.Request
	assert.Equal(t, models.StatusScheduled, req.Status)
	assert.Equal(t, models.PaymentPending, req.PaymentStatus)
	assert.True(t, req.PaymentRequired)
	assert.Equal(t, "bill-1", req.BillingID)
	require.NotNil(t, req.PaymentDueAt)
	startAt, _ := slotStartTime("2026-09-02", 600)
	assert.Equal(t, startAt, *req.PaymentDueAt)

	require.Len(t, env.billing.created, 1)
	assert.Equal(t, int64(2575), env.billing.created[0].Amount)
	assert.Equal(t, req.ID, env.billing.created[0].RequestID)
	assert.Equal(t, 1, env.slots.reserved(slotID))
}

func TestConfirmValidationNamesField(t *testing.T) {
	env := newTestEnv()
	slotID := env.seedSlot("furniture", "2026-09-02", 480, 4)

	for field, mutate := range map[string]func(*ConfirmInput){
		"contactName":   func(in *ConfirmInput) { in.ContactName = "" },
		"contactPhone":  func(in *ConfirmInput) { in.ContactPhone = "" },
		"address":       func(in *ConfirmInput) { in.Address = "" },
		"quantity":      func(in *ConfirmInput) { in.Quantity = 0 },
		"weightPerItem": func(in *ConfirmInput) { in.WeightPerItem = -1 },
		"slotId":        func(in *ConfirmInput) { in.SlotID = "" },
		"paymentChoice": func(in *ConfirmInput) { in.PaymentChoice = "maybe" },
	} {
		in := confirmInput(slotID)
		mutate(&in)
		_, err := env.svc.ConfirmBooking(context.Background(), in)
		require.Error(t, err, field)
		require.Equal(t, CodeValidation, CodeOf(err), field)
		assert.Equal(t, field, err.(*Error).Field)
	}

	// Nothing reserved by failed validations.
	assert.Equal(t, 0, env.slots.reserved(slotID))
}

func TestConfirmRejectsNoneWhenPaymentDue(t *testing.T) {
	env := newTestEnv()
	slotID := env.seedSlot("furniture", "2026-09-02", 480, 4)

	in := confirmInput(slotID)
	in.PaymentChoice = models.PayChoiceNone

	_, err := env.svc.ConfirmBooking(context.Background(), in)
	require.Error(t, err)
	assert.Equal(t, CodeValidation, CodeOf(err))
}

func TestConfirmPastSlotRejected(t *testing.T) {
	env := newTestEnv()
	slotID := env.seedSlot("furniture", "2026-08-31", 480, 4) // yesterday

	_, err := env.svc.ConfirmBooking(context.Background(), confirmInput(slotID))
	require.Error(t, err)
	assert.Equal(t, CodeValidation, CodeOf(err))
}

func TestConfirmFullSlotIsSlotUnavailable(t *testing.T) {
	env := newTestEnv()
	slotID := env.seedSlot("furniture", "2026-09-02", 480, 1)
	require.NoError(t, env.slots.Reserve(context.Background(), slotID))

	_, err := env.svc.ConfirmBooking(context.Background(), confirmInput(slotID))
	require.Error(t, err)
	assert.Equal(t, CodeSlotUnavailable, CodeOf(err))
}

func TestConfirmUnknownSlotIsSlotUnavailable(t *testing.T) {
	env := newTestEnv()

	_, err := env.svc.ConfirmBooking(context.Background(), confirmInput("furniture:2026-09-02:0480"))
	require.Error(t, err)
	assert.Equal(t, CodeSlotUnavailable, CodeOf(err))
}

func TestConfirmGatewayFailureReleasesSlot(t *testing.T) {
	env := newTestEnv()
	slotID := env.seedSlot("furniture", "2026-09-02", 480, 4)
	env.gateway.createErr = errors.New("provider unreachable")

	_, err := env.svc.ConfirmBooking(context.Background(), confirmInput(slotID))
	require.Error(t, err)
	assert.Equal(t, CodePaymentProvider, CodeOf(err))
	assert.Equal(t, 0, env.slots.reserved(slotID))
}

func TestConfirmPersistFailureReleasesSlot(t *testing.T) {
	env := newTestEnv()
	slotID := env.seedSlot("furniture", "2026-09-02", 480, 4)
	env.requests.createErr = errors.New("write concern failed")

	_, err := env.svc.ConfirmBooking(context.Background(), confirmInput(slotID))
	require.Error(t, err)
	assert.Equal(t, 0, env.slots.reserved(slotID))
}

func TestConfirmBillingFailureReleasesSlot(t *testing.T) {
	env := newTestEnv()
	slotID := env.seedSlot("furniture", "2026-09-02", 480, 4)
	env.billing.createErr = errors.New("billing down")

	in := confirmInput(slotID)
	in.PaymentChoice = models.PayChoiceLater

	_, err := env.svc.ConfirmBooking(context.Background(), in)
	require.Error(t, err)
	assert.Equal(t, 0, env.slots.reserved(slotID))
}

func TestConfirmLastSlotRace(t *testing.T) {
	env := newTestEnv()
	slotID := env.seedSlot("furniture", "2026-09-02", 480, 1)

	var wg sync.WaitGroup
	results := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.svc.ConfirmBooking(context.Background(), confirmInput(slotID))
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var won, lost int
	for err := range results {
		if err == nil {
			won++
		} else {
			assert.Equal(t, CodeSlotUnavailable, CodeOf(err))
			lost++
		}
	}
	assert.Equal(t, 1, won)
	assert.Equal(t, 1, lost)
	assert.Equal(t, 1, env.slots.reserved(slotID))
}

func TestCapacityInvariantUnderConcurrency(t *testing.T) {
	env := newTestEnv()
	const capacity = 5
	slotID := env.seedSlot("furniture", "2026-09-02", 480, capacity)

	var wg sync.WaitGroup
	succeeded := make(chan struct{}, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := env.slots.Reserve(context.Background(), slotID); err == nil {
				succeeded <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(succeeded)

	assert.Len(t, succeeded, capacity)
	assert.Equal(t, capacity, env.slots.reserved(slotID))
}

func TestReleaseIsIdempotent(t *testing.T) {
	env := newTestEnv()
	slotID := env.seedSlot("furniture", "2026-09-02", 480, 2)
	require.NoError(t, env.slots.Reserve(context.Background(), slotID))

	require.NoError(t, env.slots.Release(context.Background(), slotID))
	require.NoError(t, env.slots.Release(context.Background(), slotID))
	require.NoError(t, env.slots.Release(context.Background(), "no-such-slot"))
	assert.Equal(t, 0, env.slots.reserved(slotID))
}

func TestConfirmSchedulesWithinDueWindow(t *testing.T) {
	env := newTestEnv()
	// Far-future slot inside the look-ahead window: the pay-now hold caps at
	// the checkout session lifetime rather than the slot start.
	slotID := env.seedSlot("furniture", "2026-09-10", 480, 4)

	res, err := env.svc.ConfirmBooking(context.Background(), confirmInput(slotID))
	require.NoError(t, err)
	require.NotNil(t, res.Request.PaymentDueAt)
	assert.Equal(t, testNow.Add(24*time.Hour), *res.Request.PaymentDueAt)
}
