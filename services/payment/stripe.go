package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/checkout/session"
	"github.com/stripe/stripe-go/v76/webhook"

	"stayops/models"
)

// StripeGateway creates checkout sessions and resolves them back into
// payment events. The booking correlation is carried as explicit metadata
// fields on the session, end-to-end; nothing is ever derived from the shape
// of the session id.
type StripeGateway struct{}

// CreateCheckoutSession starts a hosted checkout for the given booking intent
// and returns the redirect URL plus the session id (the payment attempt id).
func (g *StripeGateway) CreateCheckoutSession(_ context.Context, input CheckoutInput) (url, sessionID string, err error) {
	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(input.Currency),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(input.ServiceID),
					},
					UnitAmount: stripe.Int64(int64(input.Amount * 100)),
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(input.SuccessURL),
		CancelURL:  stripe.String(input.CancelURL),
	}
	params.AddMetadata("guestId", input.GuestID)
	params.AddMetadata("serviceId", input.ServiceID)
	params.AddMetadata("resourceId", input.ResourceID)
	params.AddMetadata("bookingId", input.BookingID)
	params.AddMetadata("date", input.Date)
	params.AddMetadata("start", strconv.Itoa(input.Start))
	params.AddMetadata("end", strconv.Itoa(input.End))
	params.AddMetadata("partySize", strconv.Itoa(input.PartySize))

	sess, err := session.New(params)
	if err != nil {
		return "", "", fmt.Errorf("failed to create checkout session: %w", err)
	}
	return sess.URL, sess.ID, nil
}

// eventFromSession rebuilds the payment event from session metadata.
func eventFromSession(sess *stripe.CheckoutSession) (*models.PaymentEvent, error) {
	meta := sess.Metadata
	if meta["serviceId"] == "" && meta["bookingId"] == "" {
		return nil, fmt.Errorf("checkout session %s carries no booking correlation metadata", sess.ID)
	}

	start, _ := strconv.Atoi(meta["start"])
	end, _ := strconv.Atoi(meta["end"])
	partySize, _ := strconv.Atoi(meta["partySize"])

	outcome := models.OutcomeFailed
	if sess.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid {
		outcome = models.OutcomeSucceeded
	}

	return &models.PaymentEvent{
		AttemptID:  sess.ID,
		BookingID:  meta["bookingId"],
		GuestID:    meta["guestId"],
		ServiceID:  meta["serviceId"],
		ResourceID: meta["resourceId"],
		Date:       meta["date"],
		Start:      start,
		End:        end,
		PartySize:  partySize,
		Amount:     float64(sess.AmountTotal) / 100,
		Currency:   string(sess.Currency),
		Outcome:    outcome,
	}, nil
}

// VerifySession is the client-redirect fallback path: retrieve the session
// from the processor and require it to be paid before building the event.
func (g *StripeGateway) VerifySession(_ context.Context, sessionID string) (*models.PaymentEvent, error) {
	sess, err := session.Get(sessionID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve checkout session %s: %w", sessionID, err)
	}
	if sess.PaymentStatus != stripe.CheckoutSessionPaymentStatusPaid {
		return nil, &FailureError{AttemptID: sessionID}
	}
	return eventFromSession(sess)
}

// ParseWebhookEvent verifies the webhook signature and converts a
// checkout.session.completed event into a payment event. The second return
// is false for event types this core does not consume.
func (g *StripeGateway) ParseWebhookEvent(payload []byte, sigHeader, secret string) (*models.PaymentEvent, bool, error) {
	event, err := webhook.ConstructEvent(payload, sigHeader, secret)
	if err != nil {
		return nil, false, fmt.Errorf("webhook signature verification failed: %w", err)
	}
	if event.Type != "checkout.session.completed" {
		return nil, false, nil
	}

	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		return nil, false, fmt.Errorf("failed to parse checkout session payload: %w", err)
	}
	pe, err := eventFromSession(&sess)
	if err != nil {
		return nil, false, err
	}
	return pe, true, nil
}
