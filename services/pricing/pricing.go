package pricing

import (
	"fmt"
	"math"

	"curbside/models"
)

// Compute derives the full payment breakdown for a candidate booking from the
// item policy and the declared load. Pure: no I/O, same inputs always produce
// the same quote.
func Compute(policy models.ItemPolicy, quantity int, weightPerItem float64, taxRatePercent float64) (models.PaymentQuote, error) {
	if quantity < 1 {
		return models.PaymentQuote{}, fmt.Errorf("quantity must be at least 1, got %d", quantity)
	}
	if weightPerItem < 0 || math.IsNaN(weightPerItem) || math.IsInf(weightPerItem, 0) {
		return models.PaymentQuote{}, fmt.Errorf("weight per item must be a non-negative finite number, got %v", weightPerItem)
	}
	if taxRatePercent < 0 || math.IsNaN(taxRatePercent) || math.IsInf(taxRatePercent, 0) {
		return models.PaymentQuote{}, fmt.Errorf("tax rate must be a non-negative finite percentage, got %v", taxRatePercent)
	}

	totalWeight := float64(quantity) * weightPerItem

	baseCharge := policy.BaseFee
	billableWeight := math.Max(0, totalWeight-policy.FreeWeightThreshold)
	weightCharge := int64(math.Round(billableWeight * float64(policy.PerKgRate)))
	taxCharge := int64(math.Round(float64(baseCharge+weightCharge) * taxRatePercent / 100))
	amount := baseCharge + weightCharge + taxCharge

	return models.PaymentQuote{
		Required:      amount > 0,
		BaseCharge:    baseCharge,
		WeightCharge:  weightCharge,
		TaxCharge:     taxCharge,
		Amount:        amount,
		AmountMajor:   models.MajorUnits(amount),
		TotalWeightKg: totalWeight,
	}, nil
}
