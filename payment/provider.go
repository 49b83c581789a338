package payment

import "fmt"

// Capture is what a provider reports back for a payment attempt.
type Capture struct {
	ID         string  // provider transaction/intent id
	Status     string  // raw provider status, stored on the order as-is
	Completed  bool    // normalized "funds captured" marker
	PayerEmail string
	Amount     float64
	OrderRef   string // order correlation carried in provider metadata, if any
}

// Provider is the common capability set of both payment gateways: reserve
// funds for an amount, then confirm (or observe) the transfer.
type Provider interface {
	CreateIntent(orderRef string, amount float64) (string, error)
	CaptureIntent(externalID string) (Capture, error)
}

// Method names accepted on a user profile and stored on orders.
const (
	MethodPayPal = "PayPal"
	MethodStripe = "Stripe"
)

// ForMethod selects the adapter for the payment method tag stored on an order.
func ForMethod(method string) (Provider, error) {
	switch method {
	case MethodPayPal:
		return NewPayPalFromEnv()
	case MethodStripe:
		return NewStripeFromEnv()
	default:
		return nil, fmt.Errorf("unsupported payment method %q", method)
	}
}
