package stripe

import (
	stripeapi "github.com/stripe/stripe-go/v81"
	stripeclient "github.com/stripe/stripe-go/v81/client"
	stripewebhook "github.com/stripe/stripe-go/v81/webhook"
)

// Client wraps the Stripe API client. The underlying API handle is owned by
// the client instead of the package-level singleton, so different clients
// (and tests) can carry different credentials.
type Client struct {
	config *Config
	api    *stripeclient.API
}

// NewClient creates a new Stripe client with the given configuration
func NewClient(config *Config) *Client {
	api := &stripeclient.API{}
	api.Init(config.APIKey, nil)

	return &Client{
		config: config,
		api:    api,
	}
}

// ValidateWebhookEvent validates and parses a webhook event
func (c *Client) ValidateWebhookEvent(payload []byte, signatureHeader string) (*stripeapi.Event, error) {
	event, err := stripewebhook.ConstructEvent(payload, signatureHeader, c.config.WebhookSecret)
	if err != nil {
		return nil, NewStripeError("webhook_validation", "webhook signature validation failed", err)
	}
	return &event, nil
}

// CreateCheckoutSession creates a new one-off payment checkout session for a
// course. The course is modelled as an inline price (PriceData) so no product
// needs to exist on the Stripe side, and the purchase coordinates are stored
// in the session metadata for the webhook handlers.
// Overview of stripe checkout mechanics: https://docs.stripe.com/checkout/quickstart
// API description https://docs.stripe.com/api/checkout/sessions
func (c *Client) CreateCheckoutSession(params *CheckoutSessionParams) (*stripeapi.CheckoutSession, error) {
	priceData := &stripeapi.CheckoutSessionLineItemPriceDataParams{
		Currency: stripeapi.String(c.config.Currency),
		ProductData: &stripeapi.CheckoutSessionLineItemPriceDataProductDataParams{
			Name: stripeapi.String(params.CourseTitle),
		},
		UnitAmount: stripeapi.Int64(params.UnitAmount),
	}
	if params.Thumbnail != "" {
		priceData.ProductData.Images = stripeapi.StringSlice([]string{params.Thumbnail})
	}

	checkoutParams := &stripeapi.CheckoutSessionParams{
		// One-off payment mode, a course is bought exactly once
		Mode: stripeapi.String(string(stripeapi.CheckoutSessionModePayment)),
		LineItems: []*stripeapi.CheckoutSessionLineItemParams{
			{
				PriceData: priceData,
				Quantity:  stripeapi.Int64(1),
			},
		},
		PaymentMethodTypes: stripeapi.StringSlice([]string{"card"}),
		// The redirect URLs bring the user back to the course pages
		SuccessURL: stripeapi.String(params.SuccessURL),
		CancelURL:  stripeapi.String(params.CancelURL),
		ShippingAddressCollection: &stripeapi.CheckoutSessionShippingAddressCollectionParams{
			AllowedCountries: stripeapi.StringSlice(c.config.ShippingCountries),
		},
	}
	// We store in the metadata the purchase coordinates so the webhook
	// handlers can trace the session back to its course and user
	checkoutParams.Metadata = map[string]string{
		"courseId": params.CourseID,
		"userId":   params.UserID,
	}

	session, err := c.api.CheckoutSessions.New(checkoutParams)
	if err != nil {
		return nil, NewStripeError("api_call_failed", "failed to create checkout session", err)
	}

	return session, nil
}

// CheckoutSessionParams holds parameters for creating a checkout session
type CheckoutSessionParams struct {
	CourseID    string
	CourseTitle string
	Thumbnail   string
	UnitAmount  int64
	UserID      string
	SuccessURL  string
	CancelURL   string
}
