package payment

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v76"
	checkoutSession "github.com/stripe/stripe-go/v76/checkout/session"
	"go.uber.org/zap"

	"curbside/models"
)

// StripeGateway implements Gateway on Stripe Checkout. stripe.Key is set once
// at startup from config.
type StripeGateway struct {
	logger *zap.Logger
}

// NewStripeGateway constructs a StripeGateway.
func NewStripeGateway(logger *zap.Logger) *StripeGateway {
	return &StripeGateway{logger: logger}
}

func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, in CreateSessionInput) (*models.CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Params:            stripe.Params{Context: ctx},
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(in.SuccessURL),
		CancelURL:         stripe.String(in.CancelURL),
		ClientReferenceID: stripe.String(in.RequestID),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(in.Currency),
					UnitAmount: stripe.Int64(in.Amount),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(in.Description),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
	}

	sess, err := checkoutSession.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe checkout session create failed: %w", err)
	}

	g.logger.Info("Created checkout session",
		zap.String("sessionID", sess.ID),
		zap.String("requestID", in.RequestID),
		zap.Int64("amount", in.Amount))

	return &models.CheckoutSession{
		SessionID:   sess.ID,
		CheckoutURL: sess.URL,
		Amount:      in.Amount,
		Currency:    in.Currency,
	}, nil
}

func (g *StripeGateway) GetSessionStatus(ctx context.Context, sessionID string) (*models.SessionStatus, error) {
	params := &stripe.CheckoutSessionParams{Params: stripe.Params{Context: ctx}}
	params.AddExpand("payment_intent.latest_charge")

	sess, err := checkoutSession.Get(sessionID, params)
	if err != nil {
		return nil, fmt.Errorf("stripe checkout session fetch failed: %w", err)
	}

	status := &models.SessionStatus{
		AmountTotal: sess.AmountTotal,
	}
	if sess.PaymentIntent != nil && sess.PaymentIntent.LatestCharge != nil {
		status.ReceiptURL = sess.PaymentIntent.LatestCharge.ReceiptURL
	}

	switch {
	case sess.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid:
		status.PaymentStatus = "success"
	case sess.Status == stripe.CheckoutSessionStatusExpired:
		status.PaymentStatus = "expired"
	case sess.Status == stripe.CheckoutSessionStatusComplete:
		// Completed but unpaid: an async payment method still settling.
		status.PaymentStatus = "pending"
	default:
		status.PaymentStatus = "pending"
	}
	return status, nil
}
