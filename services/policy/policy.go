package policy

import (
	"fmt"
	"sort"

	"curbside/models"

	"github.com/spf13/viper"
)

// Provider hands out item-policy configuration. Policies are immutable after
// startup.
type Provider interface {
	Get(id string) (*models.ItemPolicy, error)
	List() []models.ItemPolicy
}

type staticProvider struct {
	policies map[string]models.ItemPolicy
}

// NewFromConfig loads item policies from the "itemPolicies" key of the config
// file, falling back to the built-in municipal defaults when none are
// configured.
func NewFromConfig() (Provider, error) {
	var configured []models.ItemPolicy
	if err := viper.UnmarshalKey("itemPolicies", &configured); err != nil {
		return nil, fmt.Errorf("failed to parse itemPolicies config: %w", err)
	}
	if len(configured) == 0 {
		configured = defaultPolicies()
	}

	byID := make(map[string]models.ItemPolicy, len(configured))
	for _, p := range configured {
		if p.ID == "" {
			return nil, fmt.Errorf("item policy with empty id in config")
		}
		byID[p.ID] = p
	}
	return &staticProvider{policies: byID}, nil
}

// NewStatic builds a provider from an explicit policy list. Used in tests and
// by callers that source policies elsewhere.
func NewStatic(policies []models.ItemPolicy) Provider {
	byID := make(map[string]models.ItemPolicy, len(policies))
	for _, p := range policies {
		byID[p.ID] = p
	}
	return &staticProvider{policies: byID}
}

func (s *staticProvider) Get(id string) (*models.ItemPolicy, error) {
	p, ok := s.policies[id]
	if !ok {
		return nil, fmt.Errorf("unknown item policy %q", id)
	}
	return &p, nil
}

func (s *staticProvider) List() []models.ItemPolicy {
	out := make([]models.ItemPolicy, 0, len(s.policies))
	for _, p := range s.policies {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func defaultPolicies() []models.ItemPolicy {
	return []models.ItemPolicy{
		{
			ID:                  "furniture",
			Label:               "Furniture & large household items",
			Allow:               true,
			BaseFee:             1500,
			PerKgRate:           20,
			FreeWeightThreshold: 0,
			Description:         "Sofas, mattresses, wardrobes and similar bulky items.",
		},
		{
			ID:                  "appliance",
			Label:               "White goods & appliances",
			Allow:               true,
			BaseFee:             2000,
			PerKgRate:           15,
			FreeWeightThreshold: 10,
			Description:         "Fridges, washing machines, ovens.",
		},
		{
			ID:                  "garden-waste",
			Label:               "Bagged garden waste",
			Allow:               true,
			BaseFee:             0,
			PerKgRate:           10,
			FreeWeightThreshold: 30,
			Description:         "First 30kg collected free of charge.",
		},
		{
			ID:          "hazardous",
			Label:       "Hazardous materials",
			Allow:       false,
			Description: "Not bookable online; contact the depot directly.",
		},
	}
}
