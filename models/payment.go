package models

import (
	"fmt"
	"time"
)

// PaymentQuote is the calculator's breakdown for one candidate booking. All
// charges are minor currency units; AmountMajor is the display form for the
// boundary.
type PaymentQuote struct {
	Required      bool    `json:"required"`
	BaseCharge    int64   `json:"baseCharge"`
	WeightCharge  int64   `json:"weightCharge"`
	TaxCharge     int64   `json:"taxCharge"`
	Amount        int64   `json:"amount"`
	AmountMajor   string  `json:"amountMajor"`
	TotalWeightKg float64 `json:"totalWeightKg"`
}

// MajorUnits renders a minor-unit amount as decimal major units, e.g. 2575 ->
// "25.75".
func MajorUnits(minor int64) string {
	return fmt.Sprintf("%d.%02d", minor/100, minor%100)
}

// CheckoutSession mirrors the subset of the external checkout session the core
// cares about. The session itself is owned by the payment collaborator.
type CheckoutSession struct {
	SessionID   string `json:"sessionId"`
	CheckoutURL string `json:"checkoutUrl"`
	Amount      int64  `json:"amount"` // minor currency units
	Currency    string `json:"currency"`
}

// SessionStatus is the payment collaborator's view of a checkout session.
type SessionStatus struct {
	PaymentStatus string // "success", "pending", "failed", "cancelled", "expired"
	AmountTotal   int64
	ReceiptURL    string
}

// Bill is an outstanding obligation created for a deferred-payment booking.
type Bill struct {
	ID          string     `bson:"id" json:"id"`
	ResidentID  string     `bson:"residentId" json:"residentId"`
	RequestID   string     `bson:"requestId" json:"requestId"`
	Amount      int64      `bson:"amount" json:"amount"` // minor currency units
	Currency    string     `bson:"currency" json:"currency"`
	Description string     `bson:"description" json:"description"`
	Status      string     `bson:"status" json:"status"` // "outstanding" or "paid"
	DueAt       time.Time  `bson:"dueAt" json:"dueAt"`
	PaidAt      *time.Time `bson:"paidAt,omitempty" json:"paidAt,omitempty"`
	CreatedAt   time.Time  `bson:"createdAt" json:"createdAt"`
}

// Bill status values.
const (
	BillOutstanding = "outstanding"
	BillPaid        = "paid"
)
