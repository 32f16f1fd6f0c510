package models

import "fmt"

// SlotBucket represents a fixed collection window on a given day with finite
// capacity for one item policy.
type SlotBucket struct {
	ID               string `bson:"id" json:"id"`
	ItemPolicyID     string `bson:"itemPolicyId" json:"itemPolicyId"`
	Date             string `bson:"date" json:"date"`   // "2006-01-02"
	Start            int    `bson:"start" json:"start"` // minutes from midnight (e.g., 480 for 8:00 AM)
	End              int    `bson:"end" json:"end"`     // minutes from midnight
	CapacityTotal    int    `bson:"capacityTotal" json:"capacityTotal"`
	CapacityReserved int    `bson:"capacityReserved" json:"capacityReserved"`
	Version          int    `bson:"version" json:"version"`
}

// Remaining returns the number of unreserved units in the bucket.
func (s SlotBucket) Remaining() int {
	return s.CapacityTotal - s.CapacityReserved
}

// SlotID derives the deterministic bucket identity from its coordinates, which
// keeps lazy upserts idempotent.
func SlotID(policyID, date string, start int) string {
	return fmt.Sprintf("%s:%s:%04d", policyID, date, start)
}

// SlotCandidate is a bucket as presented to the caller of an availability
// query, with reserved counts collapsed into the remaining figure.
type SlotCandidate struct {
	ID        string `json:"id"`
	Date      string `json:"date"`
	Start     int    `json:"start"`
	End       int    `json:"end"`
	Remaining int    `json:"remaining"`
}
