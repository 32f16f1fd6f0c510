package models

import "time"

// Request status values.
const (
	StatusScheduled      = "scheduled"
	StatusCancelled      = "cancelled"
	StatusPendingPayment = "pending-payment"
	StatusPaymentFailed  = "payment-failed"
)

// Payment status values.
const (
	PaymentSuccess     = "success"
	PaymentPending     = "pending"
	PaymentFailed      = "failed"
	PaymentNotRequired = "not-required"
)

// Payment choice values accepted at confirmation.
const (
	PayChoiceNone  = "none"
	PayChoiceNow   = "payNow"
	PayChoiceLater = "payLater"
)

// Request represents a resident's special-collection booking. A request in
// StatusPendingPayment holds its slot only until PaymentDueAt.
type Request struct {
	ID                string     `bson:"id" json:"id"`
	ResidentID        string     `bson:"residentId" json:"residentId"`
	ContactName       string     `bson:"contactName" json:"contactName"`
	ContactPhone      string     `bson:"contactPhone" json:"contactPhone"`
	Address           string     `bson:"address" json:"address"`
	ItemPolicyID      string     `bson:"itemPolicyId" json:"itemPolicyId"`
	Quantity          int        `bson:"quantity" json:"quantity"`
	WeightPerItem     float64    `bson:"weightPerItem" json:"weightPerItem"` // declared kg per item
	SlotID            string     `bson:"slotId" json:"slotId"`
	SlotDate          string     `bson:"slotDate" json:"slotDate"`
	SlotStart         int        `bson:"slotStart" json:"slotStart"`
	Status            string     `bson:"status" json:"status"`
	PaymentStatus     string     `bson:"paymentStatus" json:"paymentStatus"`
	PaymentRequired   bool       `bson:"paymentRequired" json:"paymentRequired"`
	PaymentAmount     int64      `bson:"paymentAmount" json:"paymentAmount"` // minor currency units
	PaymentReference  string     `bson:"paymentReference,omitempty" json:"paymentReference,omitempty"`
	PaymentDueAt      *time.Time `bson:"paymentDueAt,omitempty" json:"paymentDueAt,omitempty"`
	PaidAt            *time.Time `bson:"paidAt,omitempty" json:"paidAt,omitempty"`
	ReceiptURL        string     `bson:"receiptUrl,omitempty" json:"receiptUrl,omitempty"`
	BillingID         string     `bson:"billingId,omitempty" json:"billingId,omitempty"`
	CreatedAt         time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt         time.Time  `bson:"updatedAt" json:"updatedAt"`
}
