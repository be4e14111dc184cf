package stripe

// Defaults applied by NewService when the corresponding Config field is left
// empty.
const (
	DefaultCurrency        = "usd"
	DefaultExchangeDivisor = 3.32
	DefaultWebAppURL       = "http://localhost:5173"
)

// DefaultShippingCountries restricts the countries the checkout form accepts
// shipping addresses from.
var DefaultShippingCountries = []string{"IN"}

// Config holds the complete Stripe configuration.
type Config struct {
	// APIKey is the Stripe secret key used to create checkout sessions.
	APIKey string
	// WebhookSecret is the signing secret used to verify webhook payloads.
	WebhookSecret string
	// Currency is the ISO currency code used for checkout line items.
	Currency string
	// ExchangeDivisor converts course prices (stored in the platform
	// currency) into the checkout currency before computing the minor-unit
	// amount: minorUnits = round((price / ExchangeDivisor) * 100).
	ExchangeDivisor float64
	// WebAppURL is the base URL of the frontend, used to build the success
	// and cancel redirect URLs of checkout sessions.
	WebAppURL string
	// ShippingCountries restricts the allowed shipping address countries.
	ShippingCountries []string
}

// withDefaults returns a copy of the config with the empty fields filled with
// the package defaults.
func (c Config) withDefaults() Config {
	if c.Currency == "" {
		c.Currency = DefaultCurrency
	}
	if c.ExchangeDivisor <= 0 {
		c.ExchangeDivisor = DefaultExchangeDivisor
	}
	if c.WebAppURL == "" {
		c.WebAppURL = DefaultWebAppURL
	}
	if len(c.ShippingCountries) == 0 {
		c.ShippingCountries = DefaultShippingCountries
	}
	return c
}
