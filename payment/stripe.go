package payment

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
)

// StripeStatusSucceeded is Stripe's terminal status for a paid intent.
const StripeStatusSucceeded = "succeeded"

// Stripe creates payment intents tagged with the local order ref and later
// queries their status. Capture is implicit: the hosted checkout confirms the
// intent and we only observe the result, we never actively capture.
type Stripe struct {
	BaseURL   string
	SecretKey string
	Client    *http.Client
}

func NewStripeFromEnv() (*Stripe, error) {
	s := &Stripe{
		BaseURL:   os.Getenv("STRIPE_API_URL"),
		SecretKey: os.Getenv("STRIPE_SECRET_KEY"),
		Client:    http.DefaultClient,
	}
	if s.BaseURL == "" {
		s.BaseURL = "https://api.stripe.com"
	}
	if s.SecretKey == "" {
		return nil, fmt.Errorf("stripe configuration missing")
	}
	return s, nil
}

// CreateIntent creates a payment intent carrying the order ref in metadata so
// the redirect callback can be correlated back to the local order.
func (s *Stripe) CreateIntent(orderRef string, amount float64) (string, error) {
	form := url.Values{}
	form.Set("amount", strconv.FormatInt(int64(amount*100+0.5), 10)) // cents
	form.Set("currency", "usd")
	form.Set("metadata[order_ref]", orderRef)
	form.Set("automatic_payment_methods[enabled]", "true")

	req, err := http.NewRequest("POST", s.BaseURL+"/v1/payment_intents", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+s.SecretKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	body, err := s.do(req)
	if err != nil {
		return "", err
	}

	var created struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &created); err != nil {
		return "", fmt.Errorf("failed to parse stripe intent response: %v", err)
	}
	if created.ID == "" {
		return "", fmt.Errorf("stripe returned empty intent id")
	}
	return created.ID, nil
}

// CaptureIntent retrieves the intent and reports its current status.
func (s *Stripe) CaptureIntent(externalID string) (Capture, error) {
	req, err := http.NewRequest("GET", s.BaseURL+"/v1/payment_intents/"+externalID, nil)
	if err != nil {
		return Capture{}, err
	}
	req.Header.Set("Authorization", "Bearer "+s.SecretKey)

	body, err := s.do(req)
	if err != nil {
		return Capture{}, err
	}

	var intent struct {
		ID             string `json:"id"`
		Status         string `json:"status"`
		AmountReceived int64  `json:"amount_received"`
		ReceiptEmail   string `json:"receipt_email"`
		Metadata       struct {
			OrderRef string `json:"order_ref"`
		} `json:"metadata"`
	}
	if err := json.Unmarshal(body, &intent); err != nil {
		return Capture{}, fmt.Errorf("failed to parse stripe intent response: %v", err)
	}

	return Capture{
		ID:         intent.ID,
		Status:     intent.Status,
		Completed:  intent.Status == StripeStatusSucceeded,
		PayerEmail: intent.ReceiptEmail,
		Amount:     float64(intent.AmountReceived) / 100,
		OrderRef:   intent.Metadata.OrderRef,
	}, nil
}

func (s *Stripe) do(req *http.Request) ([]byte, error) {
	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach stripe: %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("stripe API error (%d): %s", resp.StatusCode, string(body))
	}
	return body, nil
}
