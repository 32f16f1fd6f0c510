package payment

import (
	"context"

	"curbside/models"
)

// Gateway is the external checkout collaborator. The core never inspects
// provider-specific types; everything crosses this boundary as models.
type Gateway interface {
	CreateCheckoutSession(ctx context.Context, in CreateSessionInput) (*models.CheckoutSession, error)
	GetSessionStatus(ctx context.Context, sessionID string) (*models.SessionStatus, error)
}

// CreateSessionInput carries everything the provider needs to host a checkout.
type CreateSessionInput struct {
	RequestID   string
	Amount      int64 // minor currency units
	Currency    string
	Description string
	SuccessURL  string
	CancelURL   string
}
