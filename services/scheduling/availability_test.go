package scheduling

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckAvailabilityReturnsSlotsAndQuote(t *testing.T) {
	env := newTestEnv()

	res, err := env.svc.CheckAvailability(context.Background(), AvailabilityInput{
		ItemPolicyID:  "furniture",
		Quantity:      2,
		WeightPerItem: 25,
		PreferredDate: testNow.AddDate(0, 0, 1),
	})
	require.NoError(t, err)

	require.Len(t, res.Slots, 4)
	for _, s := range res.Slots {
		assert.Equal(t, "2026-09-02", s.Date)
		assert.Equal(t, 4, s.Remaining)
	}
	assert.True(t, res.Payment.Required)
	assert.Equal(t, int64(2575), res.Payment.Amount)
}

func TestCheckAvailabilitySameDaySkipsStartedBuckets(t *testing.T) {
	env := newTestEnv()

	// testNow is 9:00 AM; the 8-10 bucket is already underway and must not be
	// offered, since confirmation rejects any slot whose start has passed.
	res, err := env.svc.CheckAvailability(context.Background(), AvailabilityInput{
		ItemPolicyID:  "furniture",
		Quantity:      1,
		WeightPerItem: 10,
		PreferredDate: testNow,
	})
	require.NoError(t, err)
	require.Len(t, res.Slots, 3)
	for _, s := range res.Slots {
		assert.Greater(t, s.Start, 540)
	}
}

func TestCheckAvailabilitySameDaySlotsAreConfirmable(t *testing.T) {
	env := newTestEnv()

	res, err := env.svc.CheckAvailability(context.Background(), AvailabilityInput{
		ItemPolicyID:  "furniture",
		Quantity:      2,
		WeightPerItem: 25,
		PreferredDate: testNow,
	})
	require.NoError(t, err)
	require.NotEmpty(t, res.Slots)

	// Every slot the query offers must survive the confirmation checks.
	for _, s := range res.Slots {
		in := confirmInput(s.ID)
		_, err := env.svc.ConfirmBooking(context.Background(), in)
		require.NoError(t, err, s.ID)
	}
}

func TestCheckAvailabilityWeekendIsEmptyNotError(t *testing.T) {
	env := newTestEnv()

	res, err := env.svc.CheckAvailability(context.Background(), AvailabilityInput{
		ItemPolicyID:  "furniture",
		Quantity:      1,
		WeightPerItem: 10,
		PreferredDate: testNow.AddDate(0, 0, 4), // Saturday
	})
	require.NoError(t, err)
	assert.Empty(t, res.Slots)
	assert.True(t, res.Payment.Required)
}

func TestCheckAvailabilityDisallowedPolicy(t *testing.T) {
	env := newTestEnv()

	_, err := env.svc.CheckAvailability(context.Background(), AvailabilityInput{
		ItemPolicyID:  "hazardous",
		Quantity:      1,
		WeightPerItem: 10,
		PreferredDate: testNow.AddDate(0, 0, 1),
	})
	require.Error(t, err)
	assert.Equal(t, CodePolicyDisallowed, CodeOf(err))
}

func TestCheckAvailabilityBeyondLookahead(t *testing.T) {
	env := newTestEnv()

	_, err := env.svc.CheckAvailability(context.Background(), AvailabilityInput{
		ItemPolicyID:  "furniture",
		Quantity:      1,
		WeightPerItem: 10,
		PreferredDate: testNow.AddDate(0, 0, 30),
	})
	require.Error(t, err)
	assert.Equal(t, CodeValidation, CodeOf(err))
}

func TestCheckAvailabilityValidation(t *testing.T) {
	env := newTestEnv()
	base := AvailabilityInput{
		ItemPolicyID:  "furniture",
		Quantity:      1,
		WeightPerItem: 10,
		PreferredDate: testNow.AddDate(0, 0, 1),
	}

	for name, mutate := range map[string]func(*AvailabilityInput){
		"missing policy": func(in *AvailabilityInput) { in.ItemPolicyID = "" },
		"unknown policy": func(in *AvailabilityInput) { in.ItemPolicyID = "nope" },
		"zero quantity":  func(in *AvailabilityInput) { in.Quantity = 0 },
		"zero weight":    func(in *AvailabilityInput) { in.WeightPerItem = 0 },
		"zero date":      func(in *AvailabilityInput) { in.PreferredDate = time.Time{} },
	} {
		in := base
		mutate(&in)
		_, err := env.svc.CheckAvailability(context.Background(), in)
		assert.Equal(t, CodeValidation, CodeOf(err), name)
	}
}

func TestCheckAvailabilityNeverReserves(t *testing.T) {
	env := newTestEnv()

	for i := 0; i < 3; i++ {
		_, err := env.svc.CheckAvailability(context.Background(), AvailabilityInput{
			ItemPolicyID:  "furniture",
			Quantity:      1,
			WeightPerItem: 10,
			PreferredDate: testNow.AddDate(0, 0, 1),
		})
		require.NoError(t, err)
	}

	for id := range env.slots.slots {
		assert.Equal(t, 0, env.slots.reserved(id))
	}
}
