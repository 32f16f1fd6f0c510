package models

// ItemPolicy describes whether and how one category of bulky/special waste may
// be booked, and how a booking for it is priced. Loaded once at startup and
// never mutated by requests.
type ItemPolicy struct {
	ID                  string  `bson:"id" json:"id"`
	Label               string  `bson:"label" json:"label"`
	Allow               bool    `bson:"allow" json:"allow"`
	BaseFee             int64   `bson:"baseFee" json:"baseFee"`                         // minor currency units
	PerKgRate           int64   `bson:"perKgRate" json:"perKgRate"`                     // minor units per kg above the free threshold
	FreeWeightThreshold float64 `bson:"freeWeightThreshold" json:"freeWeightThreshold"` // kg carried free of weight surcharge
	Description         string  `bson:"description,omitempty" json:"description,omitempty"`
}
